package morph

import (
	"fmt"
	"reflect"
	"time"

	"github.com/SamHutchings/structmorph/schema"
)

// timestampKeys are the conventional timestamp field keys dropped by
// ExcludeTimestamps.
var timestampKeys = map[string]bool{
	"inserted_at": true,
	"updated_at":  true,
	"created_at":  true,
}

// MapOption configures the struct-to-map projection.
type MapOption func(*projectionConfig)

type projectionConfig struct {
	excludeTimestamps bool
	excludeID         bool
	exclude           map[string]bool
	markNotLoaded     bool
}

// ExcludeTimestamps drops the inserted_at, updated_at, and created_at keys
// from the projection.
func ExcludeTimestamps() MapOption {
	return func(c *projectionConfig) { c.excludeTimestamps = true }
}

// ExcludeID drops the id key from the projection.
func ExcludeID() MapOption {
	return func(c *projectionConfig) { c.excludeID = true }
}

// ExcludeFields drops the given external keys from the projection.
func ExcludeFields(keys ...string) MapOption {
	return func(c *projectionConfig) {
		if c.exclude == nil {
			c.exclude = make(map[string]bool)
		}
		for _, key := range keys {
			c.exclude[schema.NormalizeKey(key)] = true
		}
	}
}

// ToMap projects a schema struct into a plain map keyed by external field
// keys. Embedded schemas become nested maps, slices of schemas become slices
// of maps. Nil association fields are represented by a schema.NotLoaded
// placeholder so callers can tell them apart from cleared values; the filter
// helpers can drop those on request.
func ToMap(v any, opts ...MapOption) (map[string]any, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, fmt.Errorf("morph: cannot project nil %T", v)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("morph: cannot project %T into a map", v)
	}

	info, err := schema.InfoFor(rv.Type())
	if err != nil {
		return nil, err
	}

	cfg := projectionConfig{markNotLoaded: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return projectStruct(rv, info, cfg), nil
}

func projectStruct(v reflect.Value, info *schema.Info, cfg projectionConfig) map[string]any {
	out := make(map[string]any, len(info.Fields))
	for _, fi := range info.Fields {
		if cfg.excludeTimestamps && timestampKeys[fi.Key] {
			continue
		}
		if cfg.excludeID && fi.Key == "id" {
			continue
		}
		if cfg.exclude[fi.Key] {
			continue
		}
		out[fi.Key] = projectField(v.Field(fi.FieldIndex), fi, cfg)
	}
	return out
}

func projectField(field reflect.Value, fi schema.FieldInfo, cfg projectionConfig) any {
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			if cfg.markNotLoaded && fi.IsAssoc() {
				return schema.NotLoaded{Field: fi.Key}
			}
			return nil
		}
		field = field.Elem()
	}

	if fi.Kind == schema.KindSchema {
		if fi.IsSlice {
			if field.IsNil() {
				if cfg.markNotLoaded && fi.IsAssoc() {
					return schema.NotLoaded{Field: fi.Key}
				}
				return nil
			}
			elems := make([]any, field.Len())
			for i := 0; i < field.Len(); i++ {
				elems[i] = projectNested(field.Index(i), fi, cfg)
			}
			return elems
		}
		return projectNested(field, fi, cfg)
	}

	return field.Interface()
}

func projectNested(v reflect.Value, fi schema.FieldInfo, cfg projectionConfig) any {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	childInfo, err := schema.InfoFor(v.Type())
	if err != nil {
		// Nested value is not itself a schema struct; keep it untouched.
		return v.Interface()
	}
	// Exclusion options apply to the top level only.
	childCfg := projectionConfig{markNotLoaded: cfg.markNotLoaded}
	return projectStruct(v, childInfo, childCfg)
}

func isTime(t reflect.Type) bool {
	return t == reflect.TypeOf(time.Time{})
}
