// Package lint runs named health checks over a catalog file. Checks run in
// order and the chain stops at the first failing check, since later checks
// work on the catalog the earlier ones proved buildable. Advisory checks
// report findings without failing or stopping the run.
package lint

import (
	"time"

	"github.com/papapumpkin/syllabus/internal/catalog"
)

// Subject is what a chain checks. Catalog is nil until the build check has
// run.
type Subject struct {
	File    *catalog.File
	Catalog *catalog.Catalog
}

// Result contains the outcome of a chain run.
type Result struct {
	Passed bool          `json:"passed"` // true if no blocking check failed
	Checks []CheckResult `json:"checks"`
}

// CheckResult is the outcome of a single check.
type CheckResult struct {
	Name     string        `json:"name"`
	Passed   bool          `json:"passed"`
	Advisory bool          `json:"advisory,omitempty"`
	Findings []string      `json:"findings,omitempty"`
	Elapsed  time.Duration `json:"elapsed"`
}

// FirstFailure returns the first failing blocking check, or nil if none
// failed.
func (r *Result) FirstFailure() *CheckResult {
	for i := range r.Checks {
		if !r.Checks[i].Passed && !r.Checks[i].Advisory {
			return &r.Checks[i]
		}
	}
	return nil
}

// Warnings returns the number of advisory checks with findings.
func (r *Result) Warnings() int {
	n := 0
	for _, c := range r.Checks {
		if c.Advisory && !c.Passed {
			n++
		}
	}
	return n
}
