// Package changeset tracks and validates mutations to schema-backed structs.
//
// A Changeset is built by casting loosely-typed parameters (maps decoded from
// JSON, database rows, other structs) against a schema's declared fields.
// Values are coerced to the field types; coercion failures mark the changeset
// invalid instead of aborting, so every problem in the input is reported at
// once. Nested schemas are cast recursively via CastEmbed and CastAssoc, and
// their validity propagates to the parent.
package changeset

import (
	"fmt"
	"reflect"

	"github.com/SamHutchings/structmorph/schema"
)

// Changeset represents a tracked, validated mutation to a schema-backed struct.
type Changeset struct {
	// Schema is the metadata of the struct being mutated.
	Schema *schema.Info
	// Data is a pointer to the struct the changes apply on top of.
	Data any
	// Params holds the key-normalized input parameters.
	Params map[string]any
	// Changes maps external keys to coerced values. Nested schema fields
	// hold *Changeset or []*Changeset.
	Changes map[string]any
	// Errors collects cast and validation failures.
	Errors []FieldError
	// Valid is false once any error has been recorded here or in a nested
	// changeset stored in Changes.
	Valid bool

	// depth is how many nested casts deep this changeset sits, checked
	// against MaxCastDepth when casting embeds and assocs.
	depth int
}

// Cast builds a changeset by coercing params into the permitted fields of
// data's schema. data must be a non-nil pointer to a struct embedding
// schema.Base. Param keys are normalized to snake_case before matching, so
// lowerCamel JSON keys find their fields. Keys outside the permitted list are
// ignored. Fields of nested schema kind are not cast here; use CastEmbed or
// CastAssoc.
//
// A coercion failure adds a field error ("is invalid") and marks the
// changeset invalid; it never aborts the cast.
func Cast(data any, params map[string]any, permitted []string) (*Changeset, error) {
	return castAtDepth(data, params, permitted, 0)
}

func castAtDepth(data any, params map[string]any, permitted []string, depth int) (*Changeset, error) {
	info, err := resolveSchema(data)
	if err != nil {
		return nil, err
	}

	cs := &Changeset{
		Schema:  info,
		Data:    data,
		Params:  normalizeParams(params),
		Changes: make(map[string]any),
		Valid:   true,
		depth:   depth,
	}

	for _, key := range permitted {
		fi, ok := info.FieldByKey(key)
		if !ok {
			return nil, &UnknownFieldError{Field: key, Schema: info.Source}
		}
		if fi.Kind == schema.KindSchema {
			continue
		}

		val, present := cs.Params[key]
		if !present {
			continue
		}
		if val == nil {
			cs.Changes[key] = nil
			continue
		}

		coerced, err := coerceValue(val, fi)
		if err != nil {
			cs.addError(FieldError{Field: key, Message: "is invalid", Validation: "cast"})
			continue
		}
		cs.Changes[key] = coerced
	}

	return cs, nil
}

// CastAll builds a changeset casting every declared field of data's schema,
// recursing into nested schema fields with CastAll as the child caster. This
// is the default changeset for a schema with no hand-written cast rules.
func CastAll(data any, params map[string]any) (*Changeset, error) {
	return castAllAtDepth(data, params, 0)
}

func castAllAtDepth(data any, params map[string]any, depth int) (*Changeset, error) {
	info, err := resolveSchema(data)
	if err != nil {
		return nil, err
	}

	var plain []string
	for _, fi := range info.Fields {
		if fi.Kind != schema.KindSchema {
			plain = append(plain, fi.Key)
		}
	}

	cs, err := castAtDepth(data, params, plain, depth)
	if err != nil {
		return nil, err
	}

	for _, fi := range info.SchemaFields() {
		if _, present := cs.Params[fi.Key]; !present {
			continue
		}
		if fi.IsAssoc() {
			cs.CastAssoc(fi.Key)
		} else {
			cs.CastEmbed(fi.Key)
		}
	}

	return cs, nil
}

// GetChange returns the coerced change for key, reporting whether the key
// was changed at all. A stored nil change returns (nil, true).
func (cs *Changeset) GetChange(key string) (any, bool) {
	val, ok := cs.Changes[key]
	return val, ok
}

// GetField returns the change for key if present, falling back to the value
// currently held by the underlying data struct.
func (cs *Changeset) GetField(key string) any {
	if val, ok := cs.Changes[key]; ok {
		return val
	}
	fi, ok := cs.Schema.FieldByKey(key)
	if !ok {
		return nil
	}

	v := reflect.ValueOf(cs.Data).Elem().Field(fi.FieldIndex)
	if fi.IsPointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	return v.Interface()
}

// PutChange stores value as the change for key without coercion. The key
// must name a declared field.
func (cs *Changeset) PutChange(key string, value any) *Changeset {
	if _, ok := cs.Schema.FieldByKey(key); !ok {
		panic(fmt.Sprintf("changeset: schema %q has no field %q", cs.Schema.Source, key))
	}
	cs.Changes[key] = value
	return cs
}

// AddError records a validation error against key and marks the changeset
// invalid.
func (cs *Changeset) AddError(key, message string) *Changeset {
	cs.addError(FieldError{Field: key, Message: message, Validation: "custom"})
	return cs
}

func (cs *Changeset) addError(fe FieldError) {
	cs.Errors = append(cs.Errors, fe)
	cs.Valid = false
}

// resolveSchema checks that data is a usable target and returns its schema
// metadata, extracting and caching it on first use.
func resolveSchema(data any) (*schema.Info, error) {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return nil, fmt.Errorf("changeset: data must be a non-nil pointer to struct, got %T", data)
	}
	if v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("changeset: data must point to a struct, got %s", v.Elem().Kind())
	}
	return schema.InfoFor(v.Elem().Type())
}

// normalizeParams rewrites param keys to their canonical snake_case form.
// A key already in canonical form wins over an alias for the same field.
func normalizeParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for key, val := range params {
		norm := schema.NormalizeKey(key)
		if norm == key {
			out[norm] = val
			continue
		}
		if _, taken := out[norm]; !taken {
			out[norm] = val
		}
	}
	return out
}
