package catalog

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/papapumpkin/syllabus/internal/expr"
	"github.com/papapumpkin/syllabus/internal/skill"
)

// File is the on-disk catalog document. TOML and YAML share one shape:
//
//	[[skills]]
//	id = "css"
//	repository = "web"
//	nested = ["selectors", "layout"]
//
//	[[units]]
//	id = "css-intro"
//	requires = ["html"]
//	teaches = ["selectors"]
type File struct {
	Skills []SkillSpec `toml:"skills" yaml:"skills"`
	Units  []UnitSpec  `toml:"units" yaml:"units"`
}

// SkillSpec is one skill entry of a catalog file.
type SkillSpec struct {
	ID         string   `toml:"id" yaml:"id"`
	Repository string   `toml:"repository" yaml:"repository"`
	Nested     []string `toml:"nested" yaml:"nested"`
}

// UnitSpec is one unit entry of a catalog file. Requires is a flat list of
// skills that must all be known; RequiresExpr is a serialized expression.
// At most one of them may be set.
type UnitSpec struct {
	ID           string           `toml:"id" yaml:"id"`
	Kind         string           `toml:"kind" yaml:"kind"`
	Requires     []string         `toml:"requires" yaml:"requires"`
	RequiresExpr string           `toml:"requires_expr" yaml:"requires_expr"`
	Teaches      []string         `toml:"teaches" yaml:"teaches"`
	Suggested    []SuggestionSpec `toml:"suggested" yaml:"suggested"`
	MediaTime    int              `toml:"media_time" yaml:"media_time"` // seconds
	WordCount    int              `toml:"word_count" yaml:"word_count"`
	Selectors    []SelectorSpec   `toml:"selectors" yaml:"selectors"`
}

// SuggestionSpec is a weighted soft prerequisite. A zero weight means 1.
type SuggestionSpec struct {
	Skill  string  `toml:"skill" yaml:"skill"`
	Weight float64 `toml:"weight" yaml:"weight"`
}

// SelectorSpec narrows the units a composite may use.
type SelectorSpec struct {
	Repository string   `toml:"repository" yaml:"repository"`
	Prefix     string   `toml:"prefix" yaml:"prefix"`
	Units      []string `toml:"units" yaml:"units"`
}

// Load reads and builds the catalog at path.
func Load(path string) (*Catalog, error) {
	f, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return f.Build()
}

// LoadFile reads a catalog file, choosing the decoder by extension
// (.toml, .yaml, .yml).
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	f, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return f, nil
}

// Decode parses catalog data in the given format ("toml", "yaml", "yml",
// with or without a leading dot).
func Decode(data []byte, format string) (*File, error) {
	var f File
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, err
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return &f, nil
}

// Build converts the file into a Catalog. It fails on the first entry that
// cannot be represented; Validate reports every problem instead.
func (f *File) Build() (*Catalog, error) {
	skills := make([]skill.Skill, len(f.Skills))
	for i, s := range f.Skills {
		skills[i] = skill.Skill{
			ID:             s.ID,
			RepositoryID:   s.Repository,
			NestedSkillIDs: s.Nested,
		}
	}

	units := make([]Unit, len(f.Units))
	for i, spec := range f.Units {
		u, err := spec.unit()
		if err != nil {
			return nil, fmt.Errorf("unit %q: %w", spec.ID, err)
		}
		units[i] = u
	}
	return New(skills, units)
}

// unit converts a spec into a Unit.
func (s UnitSpec) unit() (Unit, error) {
	kind, err := ParseKind(s.Kind)
	if err != nil {
		return Unit{}, err
	}
	requires, err := s.requirements()
	if err != nil {
		return Unit{}, err
	}

	u := Unit{
		ID:        s.ID,
		Kind:      kind,
		Requires:  requires,
		Teaches:   s.Teaches,
		MediaTime: time.Duration(s.MediaTime) * time.Second,
		WordCount: s.WordCount,
	}
	for _, sg := range s.Suggested {
		w := sg.Weight
		if w == 0 {
			w = 1
		}
		u.Suggested = append(u.Suggested, Suggestion{SkillID: sg.Skill, Weight: w})
	}
	for _, sel := range s.Selectors {
		u.Selectors = append(u.Selectors, Selector{
			RepositoryID: sel.Repository,
			Prefix:       sel.Prefix,
			UnitIDs:      sel.Units,
		})
	}
	return u, nil
}

// requirements returns the canonical precondition: a flat list becomes a
// conjunction of variables.
func (s UnitSpec) requirements() (expr.Expr, error) {
	if s.RequiresExpr != "" {
		if len(s.Requires) > 0 {
			return nil, ErrConflictingRequires
		}
		return expr.Parse(s.RequiresExpr)
	}
	return expr.AllOf(s.Requires...), nil
}
