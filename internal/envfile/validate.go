package envfile

import "fmt"

// FieldError describes a single invalid variable reported by a Validator.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validator is the seam for the schema-validation library. Implementations
// receive the parsed variable mapping and return field-level errors; an
// empty slice means the mapping is valid. The sync engine runs a Validator
// before push when one is configured.
type Validator interface {
	Validate(vars map[string]string) []FieldError
}
