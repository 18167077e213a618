package catalog

import "fmt"

// Validate checks a catalog file for structural correctness: required
// fields, unique ids, known skill references, parseable expressions and
// sane numeric bounds. It reports every problem found.
func Validate(f *File) []ValidationError {
	var errs []ValidationError

	skills := make(map[string]bool, len(f.Skills))
	for _, s := range f.Skills {
		if s.ID == "" {
			errs = append(errs, ValidationError{
				Category: ValCatMissingField,
				Field:    "skills.id",
				Err:      fmt.Errorf("%w: skill id", ErrMissingField),
			})
			continue
		}
		if skills[s.ID] {
			errs = append(errs, ValidationError{
				Category: ValCatDuplicateID,
				SkillID:  s.ID,
				Err:      fmt.Errorf("%w: skill %q defined more than once", ErrDuplicateID, s.ID),
			})
		}
		skills[s.ID] = true
	}

	unknown := func(ids []string, unitID, skillID, field string) {
		for _, id := range ids {
			if skills[id] {
				continue
			}
			errs = append(errs, ValidationError{
				Category: ValCatUnknownSkill,
				UnitID:   unitID,
				SkillID:  skillID,
				Field:    field,
				Err:      fmt.Errorf("%w: %q in %s", ErrUnknownSkill, id, field),
			})
		}
	}

	for _, s := range f.Skills {
		if s.ID != "" {
			unknown(s.Nested, "", s.ID, "nested")
		}
	}

	units := make(map[string]bool, len(f.Units))
	for _, spec := range f.Units {
		if spec.ID == "" {
			errs = append(errs, ValidationError{
				Category: ValCatMissingField,
				Field:    "units.id",
				Err:      fmt.Errorf("%w: unit id", ErrMissingField),
			})
			continue
		}
		if units[spec.ID] {
			errs = append(errs, ValidationError{
				Category: ValCatDuplicateID,
				UnitID:   spec.ID,
				Err:      fmt.Errorf("%w: unit %q defined more than once", ErrDuplicateID, spec.ID),
			})
		}
		units[spec.ID] = true
		unitErrs := validateUnit(spec, unknown)
		errs = append(errs, unitErrs...)
	}
	return errs
}

// validateUnit checks one unit spec. unknown records references to
// undefined skills.
func validateUnit(spec UnitSpec, unknown func(ids []string, unitID, skillID, field string)) []ValidationError {
	var errs []ValidationError
	add := func(cat ValidationCategory, field string, err error) {
		errs = append(errs, ValidationError{Category: cat, UnitID: spec.ID, Field: field, Err: err})
	}

	kind, err := ParseKind(spec.Kind)
	if err != nil {
		add(ValCatInvalidKind, "kind", err)
	}

	if requires, err := spec.requirements(); err != nil {
		add(ValCatExpression, "requires_expr", err)
	} else {
		unknown(requires.Skills(), spec.ID, "", "requires")
	}

	if len(spec.Teaches) == 0 {
		add(ValCatNoTeachingGoals, "teaches", ErrNoTeachingGoals)
	}
	unknown(spec.Teaches, spec.ID, "", "teaches")

	for _, sg := range spec.Suggested {
		unknown([]string{sg.Skill}, spec.ID, "", "suggested")
		if sg.Weight < 0 {
			add(ValCatBoundsViolation, "suggested.weight",
				fmt.Errorf("suggestion weight must be >= 0, got %g", sg.Weight))
		}
	}

	if spec.MediaTime < 0 {
		add(ValCatBoundsViolation, "media_time", fmt.Errorf("media_time must be >= 0, got %d", spec.MediaTime))
	}
	if spec.WordCount < 0 {
		add(ValCatBoundsViolation, "word_count", fmt.Errorf("word_count must be >= 0, got %d", spec.WordCount))
	}
	if len(spec.Selectors) > 0 && kind != KindComposite {
		add(ValCatSelectorOnPlain, "selectors", fmt.Errorf("selectors are only meaningful on composite units"))
	}
	return errs
}
