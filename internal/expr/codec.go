package expr

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for expression parsing.
var (
	// ErrUnknownOperator indicates an operator name that is not an expression variant.
	ErrUnknownOperator = errors.New("unknown operator")
	// ErrMalformed indicates input that is not a well-formed expression document.
	ErrMalformed = errors.New("malformed expression")
)

// ParseError records where parsing failed. Path is a dotted operand path
// such as "operands.1.operands.0"; it is empty for the root.
type ParseError struct {
	Path string
	Err  error
}

// Error returns the failure with its operand path.
func (e *ParseError) Error() string {
	if e.Path == "" {
		return "expr: " + e.Err.Error()
	}
	return "expr: at " + e.Path + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// wire is the serialized shape of every variant:
// {"operator": ..., "min": ..., "operands": [...]}.
type wire struct {
	Operator Operator          `json:"operator"`
	Min      *int              `json:"min,omitempty"`
	Operands []json.RawMessage `json:"operands"`
}

// Format serializes e. Variant names and operand order are preserved, so
// Parse(Format(e)) reproduces e. A nil expression formats as Empty.
func Format(e Expr) string {
	if e == nil {
		e = Empty{}
	}
	data, err := json.Marshal(toWire(e))
	if err != nil {
		// Only strings, ints and nested raw JSON are marshalled.
		panic(fmt.Sprintf("expr: format: %v", err))
	}
	return string(data)
}

// Parse deserializes an expression produced by Format.
func Parse(s string) (Expr, error) {
	e, err := parseRaw(json.RawMessage(s), "")
	if err != nil {
		return nil, err
	}
	return e, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// static fixtures.
func MustParse(s string) Expr {
	e, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return e
}

func toWire(e Expr) wire {
	w := wire{Operator: e.Operator(), Operands: []json.RawMessage{}}
	switch v := e.(type) {
	case Variable:
		id, _ := json.Marshal(v.SkillID)
		w.Operands = append(w.Operands, id)
	case And:
		w.Operands = appendTerms(w.Operands, v.Terms)
	case Or:
		w.Operands = appendTerms(w.Operands, v.Terms)
	case NOf:
		n := v.Min
		w.Min = &n
		w.Operands = appendTerms(w.Operands, v.Terms)
	}
	return w
}

func appendTerms(dst []json.RawMessage, terms []Expr) []json.RawMessage {
	for _, t := range terms {
		dst = append(dst, json.RawMessage(Format(t)))
	}
	return dst
}

func parseRaw(raw json.RawMessage, path string) (Expr, error) {
	var w wire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}

	switch w.Operator {
	case OpEmpty:
		if len(w.Operands) != 0 {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("%w: empty takes no operands", ErrMalformed)}
		}
		return Empty{}, nil

	case OpVariable:
		if len(w.Operands) != 1 {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("%w: variable takes exactly one operand, got %d", ErrMalformed, len(w.Operands))}
		}
		var id string
		if err := json.Unmarshal(w.Operands[0], &id); err != nil || id == "" {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("%w: variable operand must be a non-empty skill id", ErrMalformed)}
		}
		return Variable{SkillID: id}, nil

	case OpAnd, OpOr, OpNOf:
		terms, err := parseTerms(w.Operands, path)
		if err != nil {
			return nil, err
		}
		switch w.Operator {
		case OpAnd:
			return And{Terms: terms}, nil
		case OpOr:
			return Or{Terms: terms}, nil
		}
		if w.Min == nil {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("%w: nof requires min", ErrMalformed)}
		}
		if *w.Min < 0 {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("%w: nof min must be >= 0, got %d", ErrMalformed, *w.Min)}
		}
		return NOf{Min: *w.Min, Terms: terms}, nil

	default:
		return nil, &ParseError{Path: path, Err: fmt.Errorf("%w: %q", ErrUnknownOperator, w.Operator)}
	}
}

func parseTerms(operands []json.RawMessage, path string) ([]Expr, error) {
	var terms []Expr
	for i, op := range operands {
		child := fmt.Sprintf("operands.%d", i)
		if path != "" {
			child = path + "." + child
		}
		t, err := parseRaw(op, child)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, nil
}
