package morph

import (
	"reflect"
	"time"

	"github.com/SamHutchings/structmorph/schema"
)

// FilterOption configures the schema-field filters.
type FilterOption func(*filterConfig)

type filterConfig struct {
	dropNotLoaded bool
	dropStructs   bool
}

// FilterNotLoaded drops keys whose value is a schema.NotLoaded placeholder.
func FilterNotLoaded() FilterOption {
	return func(c *filterConfig) { c.dropNotLoaded = true }
}

// FilterStructs drops keys whose value is still a typed struct rather than
// plain map data. time.Time values are scalars and are kept.
func FilterStructs() FilterOption {
	return func(c *filterConfig) { c.dropStructs = true }
}

// FilterBySchemaFields returns a copy of data holding only the keys that are
// declared fields of T's schema. Keys are matched after snake_case
// normalization and emitted in canonical form. Values are kept untouched;
// use DeepFilterBySchemaFields to recurse into nested schemas.
func FilterBySchemaFields[T any](data map[string]any, opts ...FilterOption) (map[string]any, error) {
	info, err := infoForType[T]()
	if err != nil {
		return nil, err
	}

	cfg := filterConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return filterMap(info, data, cfg, false), nil
}

// DeepFilterBySchemaFields filters data down to T's schema fields like
// FilterBySchemaFields, and additionally recurses into embed and assoc
// fields, filtering their nested maps (and slices of maps) against the
// nested schema's own fields.
func DeepFilterBySchemaFields[T any](data map[string]any, opts ...FilterOption) (map[string]any, error) {
	info, err := infoForType[T]()
	if err != nil {
		return nil, err
	}

	cfg := filterConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return filterMap(info, data, cfg, true), nil
}

func infoForType[T any]() (*schema.Info, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return schema.InfoFor(t)
}

func filterMap(info *schema.Info, data map[string]any, cfg filterConfig, deep bool) map[string]any {
	out := make(map[string]any)
	for key, val := range data {
		fi, ok := info.FieldByKey(schema.NormalizeKey(key))
		if !ok {
			continue
		}
		if cfg.dropNotLoaded {
			if _, notLoaded := val.(schema.NotLoaded); notLoaded {
				continue
			}
		}
		if cfg.dropStructs && isStructValue(val) {
			continue
		}
		if deep && fi.Kind == schema.KindSchema {
			out[fi.Key] = filterNested(fi, val, cfg)
			continue
		}
		out[fi.Key] = val
	}
	return out
}

func isStructValue(val any) bool {
	if _, ok := val.(time.Time); ok {
		return false
	}
	rv := reflect.ValueOf(val)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	return rv.Kind() == reflect.Struct
}

func filterNested(fi schema.FieldInfo, val any, cfg filterConfig) any {
	childInfo, err := schema.InfoFor(fi.SchemaType)
	if err != nil {
		return val
	}

	switch v := val.(type) {
	case map[string]any:
		return filterMap(childInfo, v, cfg, true)
	case []any:
		elems := make([]any, len(v))
		for i, e := range v {
			if m, ok := e.(map[string]any); ok {
				elems[i] = filterMap(childInfo, m, cfg, true)
			} else {
				elems[i] = e
			}
		}
		return elems
	case []map[string]any:
		elems := make([]any, len(v))
		for i, m := range v {
			elems[i] = filterMap(childInfo, m, cfg, true)
		}
		return elems
	default:
		// Already-typed values (structs, NotLoaded survivors) stay as-is.
		return val
	}
}
