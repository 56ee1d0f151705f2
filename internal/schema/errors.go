package schema

import (
	"strings"

	"botFleet/internal/constraint"
)

// ValidationError aggregates every constraint violation found in one
// validation pass. Validators never stop at the first problem: callers
// get the complete list so all of them can be reported at once.
type ValidationError struct {
	Violations []constraint.Violation `json:"violations"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(v *constraint.Violation) {
	if v != nil {
		e.Violations = append(e.Violations, *v)
	}
}

// HasField reports whether any violation names the given field path.
func (e *ValidationError) HasField(field string) bool {
	for _, v := range e.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationError) orNil() *ValidationError {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}
