// Package ui renders planning results and catalog diagnostics for the
// terminal. Status lines go to stderr; Printer.Out can be redirected.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/diagnose"
	"github.com/papapumpkin/syllabus/internal/graph"
	"github.com/papapumpkin/syllabus/internal/planner"
)

// Printer writes human-readable output.
type Printer struct {
	Out io.Writer
}

// New returns a Printer writing to stderr.
func New() *Printer {
	return &Printer{Out: os.Stderr}
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.Out, format, args...)
}

// Error prints an error line.
func (p *Printer) Error(msg string) {
	p.printf("%s %s\n", styleDanger.Render("error:"), msg)
}

// Info prints a de-emphasized status line.
func (p *Printer) Info(msg string) {
	p.printf("%s\n", styleMuted.Render(msg))
}

// Warn prints a warning line.
func (p *Printer) Warn(msg string) {
	p.printf("%s %s\n", styleWarning.Render(iconWarning), msg)
}

// Paths prints the ranked paths found for goal.
func (p *Printer) Paths(goal []string, paths []planner.Path) {
	if len(paths) == 0 {
		p.NoPath(goal)
		return
	}
	p.printf("%s %s\n", styleHeading.Render("learning paths for"), strings.Join(goal, ", "))
	for i := range paths {
		path := &paths[i]
		p.printf("\n%s %s %s\n",
			styleHeading.Render(fmt.Sprintf("#%d", i+1)),
			styleCost.Render(fmt.Sprintf("cost %.2f", path.Cost)),
			styleMuted.Render(fmt.Sprintf("(%d step%s)", path.Len(), pluralS(path.Len()))))
		p.printf("%s", PathTree(path))
	}
}

// NoPath reports that goal cannot be reached.
func (p *Printer) NoPath(goal []string) {
	p.printf("%s no learning path reaches %s\n",
		styleDanger.Render(iconFailed), strings.Join(goal, ", "))
}

// AlreadyKnown reports that the goal needs no units.
func (p *Printer) AlreadyKnown(goal []string) {
	p.printf("%s %s is already known\n",
		styleSuccess.Render(iconDone), strings.Join(goal, ", "))
}

// PathTree renders a path as numbered steps. Composite steps list their
// sub-path indented beneath them.
func PathTree(path *planner.Path) string {
	var b strings.Builder
	writeSteps(&b, path, "  ")
	return b.String()
}

func writeSteps(b *strings.Builder, path *planner.Path, indent string) {
	for i, st := range path.Steps {
		name := styleUnit.Render(st.Unit)
		if st.Sub != nil {
			name = styleComposite.Render(st.Unit)
		}
		fmt.Fprintf(b, "%s%d. %s %s\n", indent, i+1, name,
			styleMuted.Render(fmt.Sprintf("(%.2f)", st.Cost)))
		if st.Sub != nil {
			writeSteps(b, st.Sub, indent+"   ")
		}
	}
}

// ValidateResult prints the outcome of catalog validation.
func (p *Printer) ValidateResult(name string, skills, units int, errs []catalog.ValidationError) {
	if len(errs) == 0 {
		p.printf("%s catalog %q: %d skill%s, %d unit%s, no errors\n",
			styleSuccess.Render(iconDone), name, skills, pluralS(skills), units, pluralS(units))
		return
	}
	p.printf("%s catalog %q: %d error%s:\n",
		styleDanger.Render(iconFailed), name, len(errs), pluralS(len(errs)))
	for i := range errs {
		p.printf("  %s %s %s\n",
			styleDanger.Render(iconBullet), errs[i].Error(),
			styleMuted.Render("["+string(errs[i].Category)+"]"))
	}
}

// Cycles prints dependency cycles and the skills they corrupt.
func (p *Printer) Cycles(cycles [][]graph.Ref, corrupted []string) {
	if len(cycles) == 0 {
		p.printf("%s no cycles\n", styleSuccess.Render(iconDone))
		return
	}
	p.printf("%s %d cycle%s:\n", styleDanger.Render(iconCycle), len(cycles), pluralS(len(cycles)))
	for _, cyc := range cycles {
		names := make([]string, len(cyc))
		for i, r := range cyc {
			names[i] = r.String()
		}
		p.printf("  %s %s\n", styleDanger.Render(iconBullet), strings.Join(names, ", "))
	}
	if len(corrupted) > 0 {
		p.printf("%s corrupted ancestors: %s\n",
			styleWarning.Render(iconWarning), strings.Join(corrupted, ", "))
	}
}

// Missing prints the result of a missing-skill trace.
func (p *Printer) Missing(m diagnose.Missing, found bool) {
	if !found {
		p.printf("%s every goal skill is obtainable\n", styleSuccess.Render(iconDone))
		return
	}
	p.printf("%s missing skill %s\n", styleDanger.Render(iconFailed), styleWarning.Render(m.Skill))
	names := make([]string, len(m.Trace))
	for i, r := range m.Trace {
		names[i] = r.String()
	}
	p.printf("  %s %s\n", styleMuted.Render("trace:"), strings.Join(names, " → "))
}

// Reloaded reports a catalog reload triggered by a file change.
func (p *Printer) Reloaded(file string) {
	p.printf("%s %s\n", styleHeading.Render("catalog reloaded:"), file)
}

func pluralS(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
