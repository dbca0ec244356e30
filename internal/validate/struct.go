package validate

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var structs = validator.New()

// Struct checks a record against its `validate` tags.
func Struct(s any) error {
	if err := structs.Struct(s); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
