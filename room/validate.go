package room

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// messageInput is the typed shape every user-facing message create/edit
// must satisfy. Status is engine-generated only, so it is not a valid kind
// here.
type messageInput struct {
	To   string `validate:"required"`
	Text string `validate:"required"`
	Kind string `validate:"required,oneof=message private_message"`
}

func validateMessage(in messageInput) error {
	if err := validate.Struct(in); err != nil {
		return asValidationError(err)
	}
	return nil
}

// validateName applies the configurable name rules. The charset and length
// bounds follow the original registration schema; only non-emptiness is
// load-bearing for the engine itself.
func validateName(name string, minLen, maxLen int) error {
	tag := fmt.Sprintf("required,alphanum,min=%d,max=%d", minLen, maxLen)
	if err := validate.Var(name, tag); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &ValidationError{Violations: []FieldViolation{{Field: "name", Rule: verrs[0].Tag()}}}
		}
		return &ValidationError{Violations: []FieldViolation{{Field: "name", Rule: "invalid"}}}
	}
	return nil
}

func asValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Violations: []FieldViolation{{Field: "input", Rule: "invalid"}}}
	}
	violations := make([]FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, FieldViolation{Field: fe.Field(), Rule: fe.Tag()})
	}
	return &ValidationError{Violations: violations}
}
