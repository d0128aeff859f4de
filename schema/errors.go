package schema

import (
	"fmt"
	"reflect"
)

// NotSchemaError is returned when a type handed to the schema layer is not a
// struct embedding Base.
type NotSchemaError struct {
	Type reflect.Type
}

// Error returns the error message for NotSchemaError.
func (e *NotSchemaError) Error() string {
	if e.Type == nil {
		return "nil type is not a schema"
	}
	if e.Type.Kind() != reflect.Struct {
		return fmt.Sprintf("type %s is not a struct", e.Type)
	}
	return fmt.Sprintf("type %s does not embed schema.Base", e.Type.Name())
}
