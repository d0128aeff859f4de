// Package morph casts loosely-typed external data into schema-backed structs.
//
// Input can be a map decoded from JSON or msgpack, another struct, or a
// database row; every function here is a thin orchestration over the schema
// introspection in package schema and the cast/validation engine in package
// changeset. Nothing is stateful: each call is a pure in-memory
// transformation.
package morph

import (
	"fmt"
	"reflect"

	"github.com/SamHutchings/structmorph/changeset"
	"github.com/SamHutchings/structmorph/schema"
)

// Cast converts data into a newly allocated *T, coercing values to the
// schema's field types and recursing into embedded and associated schemas.
// data may be a map[string]any, a map[string]string, a T, a *T, or any other
// struct whose snake_cased field names line up with T's keys.
//
// On cast or validation failure the returned error is an
// *changeset.InvalidChangesetError carrying the full changeset.
func Cast[T any](data any, opts ...Option) (*T, error) {
	cs, err := NewChangeset[T](data, opts...)
	if err != nil {
		return nil, err
	}
	return IntoStruct[T](cs)
}

// Update casts data on top of an existing struct: fields present in data are
// replaced, everything else keeps target's current values. target is not
// modified; the updated struct is returned.
func Update[T any](target *T, data any, opts ...Option) (*T, error) {
	if target == nil {
		return nil, fmt.Errorf("morph: target must not be nil")
	}
	cs, err := ChangesetFrom(target, data, opts...)
	if err != nil {
		return nil, err
	}
	return IntoStruct[T](cs)
}

// NewChangeset builds the default changeset for T from data: every declared
// field is cast, embeds and assocs recursively. The changeset is returned
// even when invalid so callers can add validations or inspect errors.
func NewChangeset[T any](data any, opts ...Option) (*changeset.Changeset, error) {
	return ChangesetFrom(new(T), data, opts...)
}

// ChangesetFrom builds the default changeset casting data on top of an
// existing schema struct pointer.
func ChangesetFrom(target any, data any, opts ...Option) (*changeset.Changeset, error) {
	cfg := castConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	params, err := paramsFrom(data)
	if err != nil {
		return nil, err
	}

	if len(cfg.only) > 0 {
		tree, err := newPathTree(cfg.only)
		if err != nil {
			return nil, err
		}
		params = tree.filterParams(params)
	}

	return changeset.CastAll(target, params)
}

// IntoStruct applies a changeset built for T and returns the resulting
// struct. Invalid changesets return *changeset.InvalidChangesetError.
func IntoStruct[T any](cs *changeset.Changeset) (*T, error) {
	applied, err := cs.Apply()
	if err != nil {
		return nil, err
	}
	out, ok := applied.(*T)
	if !ok {
		return nil, fmt.Errorf("morph: changeset is for %s, not %T", cs.Schema.GoType, out)
	}
	return out, nil
}

// paramsFrom widens the accepted input shapes to a map[string]any.
func paramsFrom(data any) (map[string]any, error) {
	switch d := data.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return d, nil
	case map[string]string:
		out := make(map[string]any, len(d))
		for k, v := range d {
			out[k] = v
		}
		return out, nil
	}

	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return map[string]any{}, nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("morph: cannot cast from %T", data)
	}

	if info, ok := schema.LookupType(v.Type()); ok {
		return projectStruct(v, info, projectionConfig{}), nil
	}
	if info, err := schema.InfoFor(v.Type()); err == nil {
		return projectStruct(v, info, projectionConfig{}), nil
	}
	return plainStructParams(v), nil
}

// plainStructParams projects a non-schema struct into params by snake_casing
// its exported field names. Nested structs are projected recursively.
func plainStructParams(v reflect.Value) map[string]any {
	t := v.Type()
	out := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || field.Anonymous {
			continue
		}
		out[schema.KeyName(field.Name)] = plainValue(v.Field(i))
	}
	return out
}

func plainValue(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return nil
		}
		return plainValue(v.Elem())
	case reflect.Struct:
		if isTime(v.Type()) {
			return v.Interface()
		}
		return plainStructParams(v)
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Interface()
		}
		elems := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			elems[i] = plainValue(v.Index(i))
		}
		return elems
	default:
		return v.Interface()
	}
}
