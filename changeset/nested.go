package changeset

import (
	"fmt"
	"reflect"

	"github.com/SamHutchings/structmorph/schema"
)

// MaxCastDepth caps how deep embeds and assocs are cast recursively. Input
// deeper than this, such as a params map containing itself, adds an
// "is invalid" error instead of recursing without bound.
const MaxCastDepth = 32

// Caster builds a child changeset for a nested schema struct. data is a
// pointer to a fresh instance of the nested type.
type Caster func(data any, params map[string]any) (*Changeset, error)

// CastOption configures nested casting.
type CastOption func(*castConfig)

type castConfig struct {
	required bool
	caster   Caster
}

// Required makes the nested field mandatory: a missing or nil param adds a
// "can't be blank" error.
func Required() CastOption {
	return func(c *castConfig) { c.required = true }
}

// With replaces the default CastAll child caster.
func With(caster Caster) CastOption {
	return func(c *castConfig) { c.caster = caster }
}

// CastEmbed casts the param under an embedded schema field into a child
// changeset (or a slice of them for multi-valued embeds), storing it in
// Changes. An invalid child marks this changeset invalid; the child's errors
// stay on the child and surface through TraverseErrors.
//
// CastEmbed panics if key does not name a nested schema field; that is a
// programming error, not a data error.
func (cs *Changeset) CastEmbed(key string, opts ...CastOption) *Changeset {
	return cs.castNested(key, opts)
}

// CastAssoc casts the param under an association field. Identical mechanics
// to CastEmbed; the distinction matters to projection and filtering, not to
// casting.
func (cs *Changeset) CastAssoc(key string, opts ...CastOption) *Changeset {
	return cs.castNested(key, opts)
}

func (cs *Changeset) castNested(key string, opts []CastOption) *Changeset {
	fi, ok := cs.Schema.FieldByKey(key)
	if !ok || fi.Kind != schema.KindSchema {
		panic(fmt.Sprintf("changeset: schema %q has no nested schema field %q", cs.Schema.Source, key))
	}

	cfg := castConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.caster == nil {
		childDepth := cs.depth + 1
		cfg.caster = func(data any, params map[string]any) (*Changeset, error) {
			return castAllAtDepth(data, params, childDepth)
		}
	}

	raw, present := cs.Params[key]
	if !present || raw == nil {
		if cfg.required {
			cs.addError(FieldError{Field: key, Message: "can't be blank", Validation: "required"})
		} else if present {
			cs.Changes[key] = nil
		}
		return cs
	}

	if cs.depth >= MaxCastDepth {
		cs.addError(FieldError{Field: key, Message: "is invalid", Validation: "cast"})
		return cs
	}

	if fi.IsSlice {
		cs.castNestedSlice(fi, raw, cfg)
		return cs
	}

	childParams, ok := asParams(raw)
	if !ok {
		cs.addError(FieldError{Field: key, Message: "is invalid", Validation: "cast"})
		return cs
	}

	child, err := cs.castChild(fi, childParams, cfg)
	if err != nil {
		cs.addError(FieldError{Field: fi.Key, Message: "is invalid", Validation: "cast"})
		return cs
	}
	cs.Changes[fi.Key] = child
	if !child.Valid {
		cs.Valid = false
	}
	return cs
}

func (cs *Changeset) castNestedSlice(fi schema.FieldInfo, raw any, cfg castConfig) {
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice {
		cs.addError(FieldError{Field: fi.Key, Message: "is invalid", Validation: "cast"})
		return
	}

	children := make([]*Changeset, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		childParams, ok := asParams(rv.Index(i).Interface())
		if !ok {
			cs.addError(FieldError{Field: fi.Key, Message: "is invalid", Validation: "cast"})
			return
		}
		child, err := cs.castChild(fi, childParams, cfg)
		if err != nil {
			cs.addError(FieldError{Field: fi.Key, Message: "is invalid", Validation: "cast"})
			return
		}
		if !child.Valid {
			cs.Valid = false
		}
		children = append(children, child)
	}
	cs.Changes[fi.Key] = children
}

func (cs *Changeset) castChild(fi schema.FieldInfo, params map[string]any, cfg castConfig) (*Changeset, error) {
	childPtr := reflect.New(fi.SchemaType)

	// Cast on top of existing nested data when the parent holds some.
	parent := reflect.ValueOf(cs.Data).Elem()
	if !fi.IsSlice {
		existing := parent.Field(fi.FieldIndex)
		if fi.IsPointer {
			if !existing.IsNil() {
				childPtr.Elem().Set(existing.Elem())
			}
		} else if existing.Kind() == reflect.Struct {
			childPtr.Elem().Set(existing)
		}
	}

	return cfg.caster(childPtr.Interface(), params)
}

// asParams widens the accepted nested param shapes to map[string]any.
func asParams(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, true
	default:
		return nil, false
	}
}

// NestedChangeset returns the child changeset stored under key, if any.
func (cs *Changeset) NestedChangeset(key string) (*Changeset, bool) {
	child, ok := cs.Changes[key].(*Changeset)
	return child, ok
}

// NestedChangesets returns the child changeset slice stored under key, if any.
func (cs *Changeset) NestedChangesets(key string) ([]*Changeset, bool) {
	children, ok := cs.Changes[key].([]*Changeset)
	return children, ok
}
