package schema

import (
	"fmt"
	"reflect"
	"time"
)

// ValueKind classifies the castable value category of a schema field.
type ValueKind int

const (
	// KindString is a text field.
	KindString ValueKind = iota
	// KindInteger covers all Go integer widths.
	KindInteger
	// KindFloat covers float32 and float64.
	KindFloat
	// KindBool is a boolean field.
	KindBool
	// KindDatetime is a time.Time field.
	KindDatetime
	// KindBytes is a raw []byte field.
	KindBytes
	// KindMap is an untyped map[string]any field, passed through as-is.
	KindMap
	// KindSchema is a nested schema-backed struct (embed or association).
	KindSchema
	// KindAny is an untyped any field, passed through as-is.
	KindAny
)

// String returns the lowercase name of the value kind.
func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "boolean"
	case KindDatetime:
		return "datetime"
	case KindBytes:
		return "bytes"
	case KindMap:
		return "map"
	case KindSchema:
		return "schema"
	default:
		return "any"
	}
}

// FieldInfo contains metadata about a single field in a schema struct,
// mapping it to an external key.
type FieldInfo struct {
	// Tag is the parsed 'morph' struct tag.
	Tag FieldTag
	// Key is the external key name (tag name, or snake_case of FieldName).
	Key string
	// FieldName is the name of the field in the Go struct.
	FieldName string
	// FieldIndex is the 0-based index of the field in the Go struct.
	FieldIndex int
	// FieldType is the reflection type of the field.
	FieldType reflect.Type
	// IsPointer is true if the field is a pointer, used for optional values.
	IsPointer bool
	// IsSlice is true if the field is a slice of values or nested schemas.
	IsSlice bool
	// ElemType is the base element type for slices and pointers.
	ElemType reflect.Type
	// Kind is the castable value category of the field.
	Kind ValueKind
	// SchemaType is the bare struct type of a nested schema field.
	SchemaType reflect.Type
}

// IsEmbed reports whether the field is an embedded nested schema.
func (f FieldInfo) IsEmbed() bool {
	return f.Kind == KindSchema && !f.Tag.Assoc
}

// IsAssoc reports whether the field is an association to another schema.
func (f FieldInfo) IsAssoc() bool {
	return f.Kind == KindSchema && f.Tag.Assoc
}

// Info contains comprehensive metadata about a schema-backed struct,
// including its external source name and per-field mapping data.
type Info struct {
	// GoType is the reflection type of the Go struct backing the schema.
	GoType reflect.Type
	// Source is the external source (table) name.
	Source string
	// Fields is a list of metadata for each declared field, in struct order.
	Fields []FieldInfo
}

// FieldByName retrieves FieldInfo by the Go struct field name.
func (s *Info) FieldByName(name string) (FieldInfo, bool) {
	for _, f := range s.Fields {
		if f.FieldName == name {
			return f, true
		}
	}
	return FieldInfo{}, false
}

// FieldByKey retrieves FieldInfo by the external key name.
func (s *Info) FieldByKey(key string) (FieldInfo, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldInfo{}, false
}

// Keys returns the external key names of all declared fields, in struct order.
func (s *Info) Keys() []string {
	keys := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}

// SchemaFields returns the subset of fields that are nested schemas
// (embeds and associations).
func (s *Info) SchemaFields() []FieldInfo {
	var nested []FieldInfo
	for _, f := range s.Fields {
		if f.Kind == KindSchema {
			nested = append(nested, f)
		}
	}
	return nested
}

// RequiredKeys returns the external keys of fields tagged required.
func (s *Info) RequiredKeys() []string {
	var keys []string
	for _, f := range s.Fields {
		if f.Tag.Required {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// ExtractInfo analyzes a Go struct type and extracts its schema metadata.
// The struct must embed schema.Base to be a valid schema.
func ExtractInfo(t reflect.Type) (*Info, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || !embedsBase(t) {
		return nil, &NotSchemaError{Type: t}
	}

	info := &Info{
		GoType: t,
		Source: SourceName(t.Name()),
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// The embedded Base field may carry a source override.
		if field.Anonymous {
			if field.Type == reflect.TypeOf(Base{}) {
				tag, err := ParseTag(field.Tag.Get("morph"))
				if err != nil {
					return nil, fmt.Errorf("field %s: %w", field.Name, err)
				}
				if tag.Source != "" {
					info.Source = tag.Source
				}
			}
			continue
		}

		// Skip unexported fields
		if !field.IsExported() {
			continue
		}

		tag, err := ParseTag(field.Tag.Get("morph"))
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		if tag.Skip {
			continue
		}

		info.Fields = append(info.Fields, buildFieldInfo(field, i, tag))
	}

	return info, nil
}

func buildFieldInfo(field reflect.StructField, index int, tag FieldTag) FieldInfo {
	fi := FieldInfo{
		Tag:        tag,
		FieldName:  field.Name,
		FieldIndex: index,
		FieldType:  field.Type,
		Key:        tag.Name,
	}
	if fi.Key == "" {
		fi.Key = KeyName(field.Name)
	}

	ft := field.Type
	if ft.Kind() == reflect.Ptr {
		fi.IsPointer = true
		fi.ElemType = ft.Elem()
		ft = ft.Elem()
	}
	// []byte is a scalar bytes value, not a multi-valued field.
	if ft.Kind() == reflect.Slice && ft.Elem().Kind() != reflect.Uint8 {
		fi.IsSlice = true
		fi.ElemType = ft.Elem()
		ft = ft.Elem()
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
	}

	fi.Kind = valueKind(ft, tag)
	if fi.Kind == KindSchema {
		fi.SchemaType = ft
	}
	return fi
}

// embedsBase reports whether the struct type has schema.Base as an
// anonymous field.
func embedsBase(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous && field.Type == reflect.TypeOf(Base{}) {
			return true
		}
	}
	return false
}

// valueKind maps a bare Go type to its castable value kind.
func valueKind(t reflect.Type, tag FieldTag) ValueKind {
	switch t.Kind() {
	case reflect.String:
		return KindString
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindInteger
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return KindBytes
		}
		return KindAny
	case reflect.Map:
		if t.Key().Kind() == reflect.String {
			return KindMap
		}
		return KindAny
	case reflect.Struct:
		if t == reflect.TypeOf(time.Time{}) {
			return KindDatetime
		}
		if embedsBase(t) || tag.Embed || tag.Assoc {
			return KindSchema
		}
		return KindAny
	default:
		return KindAny
	}
}
