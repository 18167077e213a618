package catalog

import "errors"

// Sentinel errors for catalog loading and validation.
var (
	// ErrDuplicateID indicates two skills or two units share an id.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrMissingField indicates a required field (e.g. id) is empty.
	ErrMissingField = errors.New("required field missing")
	// ErrInvalidKind indicates an unrecognized unit kind.
	ErrInvalidKind = errors.New("invalid unit kind")
	// ErrUnknownSkill indicates a reference to a skill id the catalog does not define.
	ErrUnknownSkill = errors.New("unknown skill")
	// ErrConflictingRequires indicates a unit sets both requires and requires_expr.
	ErrConflictingRequires = errors.New("requires and requires_expr are mutually exclusive")
	// ErrUnsupportedFormat indicates a catalog file extension with no decoder.
	ErrUnsupportedFormat = errors.New("unsupported catalog format")
	// ErrNoTeachingGoals indicates a unit that teaches nothing.
	ErrNoTeachingGoals = errors.New("unit teaches no skills")
)

// ValidationCategory classifies a validation error for programmatic handling.
type ValidationCategory string

const (
	// ValCatMissingField indicates a required field is empty.
	ValCatMissingField ValidationCategory = "missing_field"
	// ValCatDuplicateID indicates two or more skills or units share an id.
	ValCatDuplicateID ValidationCategory = "duplicate_id"
	// ValCatUnknownSkill indicates a reference to an undefined skill.
	ValCatUnknownSkill ValidationCategory = "unknown_skill"
	// ValCatInvalidKind indicates an unrecognized unit kind.
	ValCatInvalidKind ValidationCategory = "invalid_kind"
	// ValCatExpression indicates a precondition expression that does not parse.
	ValCatExpression ValidationCategory = "expression"
	// ValCatBoundsViolation indicates a numeric field is out of valid range.
	ValCatBoundsViolation ValidationCategory = "bounds_violation"
	// ValCatNoTeachingGoals indicates a unit that teaches nothing.
	ValCatNoTeachingGoals ValidationCategory = "no_teaching_goals"
	// ValCatSelectorOnPlain indicates selectors declared on a plain unit.
	ValCatSelectorOnPlain ValidationCategory = "selector_on_plain"
)

// ValidationError records a catalog problem with source context.
type ValidationError struct {
	Category ValidationCategory // Machine-readable category for programmatic handling
	SkillID  string
	UnitID   string
	Field    string
	Err      error
}

// Error returns a human-readable string including the offending skill or unit.
func (e *ValidationError) Error() string {
	switch {
	case e.UnitID != "":
		return "unit " + e.UnitID + ": " + e.Err.Error()
	case e.SkillID != "":
		return "skill " + e.SkillID + ": " + e.Err.Error()
	default:
		return e.Err.Error()
	}
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
