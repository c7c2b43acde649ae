package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator validates structs using `validate` tags.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (va *Validator) Validate(obj interface{}) error {
	if err := va.v.Struct(obj); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
