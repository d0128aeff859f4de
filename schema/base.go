// Package schema provides reflection-based schema metadata for Go structs.
//
// A struct becomes a schema by embedding Base. Its exported fields are
// introspected into Info/FieldInfo metadata, with external snake_case keys
// and nesting semantics controlled by the 'morph' struct tag. A global
// registry maps registered schema types to their metadata and external
// source names.
package schema

// Schema is the marker interface for schema-backed struct types.
// Structs become schemas by embedding the Base type. Pointers to schema
// structs satisfy it; the cast machinery stamps the source name onto
// materialized structs through it.
type Schema interface {
	schema()
	// SourceName returns the external source (table) name for the schema.
	SourceName() string
	// SetSourceName assigns the external source name to the instance.
	SetSourceName(source string)
}

// Base is an embeddable base type for all schema-backed structs.
// It provides the internal state and methods required to satisfy the
// Schema interface.
//
// Example usage:
//
//	type Person struct {
//	    schema.Base
//	    Name  string `morph:"name,required"`
//	    Email *string
//	}
type Base struct {
	source string
}

func (Base) schema() {}

// SourceName returns the external source name assigned to the instance.
func (b *Base) SourceName() string { return b.source }

// SetSourceName assigns the external source name to the instance.
func (b *Base) SetSourceName(source string) { b.source = source }

// NotLoaded is a placeholder value standing in for an association that was
// never fetched from its source. Projection helpers emit it for nil
// association fields so callers can tell "not loaded" apart from "no value",
// and the filter helpers can drop it on request.
type NotLoaded struct {
	// Field is the external key of the association that is not loaded.
	Field string
}
