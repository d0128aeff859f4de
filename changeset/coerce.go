package changeset

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/SamHutchings/structmorph/schema"
)

// coerceValue coerces a raw param value into the type declared by fi. Scalar
// results carry the bare (non-pointer) field type; Apply wraps pointers.
func coerceValue(val any, fi schema.FieldInfo) (any, error) {
	if fi.IsSlice {
		return coerceSlice(val, fi)
	}
	return coerceScalar(val, fi.Kind, bareType(fi))
}

// bareType is the field type with pointer indirection stripped.
func bareType(fi schema.FieldInfo) reflect.Type {
	t := fi.FieldType
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func coerceSlice(val any, fi schema.FieldInfo) (any, error) {
	sliceType := fi.FieldType
	if sliceType.Kind() == reflect.Ptr {
		sliceType = sliceType.Elem()
	}
	elemType := sliceType.Elem()
	elemPtr := elemType.Kind() == reflect.Ptr
	baseType := elemType
	if elemPtr {
		baseType = baseType.Elem()
	}

	rv := reflect.ValueOf(val)
	if rv.Kind() != reflect.Slice {
		// Single value -> wrap in a one-element slice
		coerced, err := coerceScalar(val, fi.Kind, baseType)
		if err != nil {
			return nil, err
		}
		slice := reflect.MakeSlice(sliceType, 1, 1)
		setSliceElem(slice.Index(0), coerced, elemPtr, baseType)
		return slice.Interface(), nil
	}

	slice := reflect.MakeSlice(sliceType, rv.Len(), rv.Len())
	for i := 0; i < rv.Len(); i++ {
		coerced, err := coerceScalar(rv.Index(i).Interface(), fi.Kind, baseType)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		setSliceElem(slice.Index(i), coerced, elemPtr, baseType)
	}
	return slice.Interface(), nil
}

func setSliceElem(dst reflect.Value, coerced any, elemPtr bool, baseType reflect.Type) {
	if elemPtr {
		ptr := reflect.New(baseType)
		ptr.Elem().Set(reflect.ValueOf(coerced))
		dst.Set(ptr)
		return
	}
	dst.Set(reflect.ValueOf(coerced))
}

func coerceScalar(val any, kind schema.ValueKind, targetType reflect.Type) (any, error) {
	switch kind {
	case schema.KindString:
		return coerceToString(val, targetType)
	case schema.KindInteger:
		return coerceToInt(val, targetType)
	case schema.KindFloat:
		return coerceToFloat(val, targetType)
	case schema.KindBool:
		return coerceToBool(val)
	case schema.KindDatetime:
		return coerceToTime(val)
	case schema.KindBytes:
		return coerceToBytes(val)
	case schema.KindMap:
		return coerceToMap(val, targetType)
	default:
		return val, nil
	}
}

// coerceToString accepts strings and []byte only. Numbers are not silently
// stringified; that would mask malformed input.
func coerceToString(val any, targetType reflect.Type) (any, error) {
	var s string
	switch v := val.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return nil, fmt.Errorf("cannot coerce %T to string", val)
	}
	return convertTo(s, targetType)
}

func coerceToInt(val any, targetType reflect.Type) (any, error) {
	var i64 int64
	switch v := val.(type) {
	case int:
		i64 = int64(v)
	case int8:
		i64 = int64(v)
	case int16:
		i64 = int64(v)
	case int32:
		i64 = int64(v)
	case int64:
		i64 = v
	case uint:
		i64 = int64(v)
	case uint8:
		i64 = int64(v)
	case uint16:
		i64 = int64(v)
	case uint32:
		i64 = int64(v)
	case uint64:
		i64 = int64(v)
	case float32:
		if float32(int64(v)) != v {
			return nil, fmt.Errorf("float %v is not an integer", v)
		}
		i64 = int64(v)
	case float64:
		// JSON numbers arrive as float64; accept only whole values.
		if float64(int64(v)) != v {
			return nil, fmt.Errorf("float %v is not an integer", v)
		}
		i64 = int64(v)
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as integer", v)
		}
		i64 = parsed
	default:
		return nil, fmt.Errorf("cannot coerce %T to integer", val)
	}
	return convertTo(i64, targetType)
}

func coerceToFloat(val any, targetType reflect.Type) (any, error) {
	var f64 float64
	switch v := val.(type) {
	case float64:
		f64 = v
	case float32:
		f64 = float64(v)
	case int:
		f64 = float64(v)
	case int32:
		f64 = float64(v)
	case int64:
		f64 = float64(v)
	case uint64:
		f64 = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as float", v)
		}
		f64 = parsed
	default:
		return nil, fmt.Errorf("cannot coerce %T to float", val)
	}
	return convertTo(f64, targetType)
}

func coerceToBool(val any) (any, error) {
	switch v := val.(type) {
	case bool:
		return v, nil
	case int, int64:
		// SQLite stores booleans as 0/1 integers.
		i := reflect.ValueOf(v).Int()
		if i == 0 {
			return false, nil
		}
		if i == 1 {
			return true, nil
		}
		return nil, fmt.Errorf("cannot coerce %d to boolean", i)
	case string:
		switch v {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, fmt.Errorf("cannot parse %q as boolean", v)
	default:
		return nil, fmt.Errorf("cannot coerce %T to boolean", val)
	}
}

func coerceToTime(val any) (any, error) {
	switch v := val.(type) {
	case time.Time:
		return v, nil
	case string:
		// Try common formats
		for _, layout := range []string{
			time.RFC3339Nano,
			time.RFC3339,
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"2006-01-02",
		} {
			t, err := time.Parse(layout, v)
			if err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("cannot parse time string: %q", v)
	default:
		return nil, fmt.Errorf("cannot coerce %T to time.Time", val)
	}
}

func coerceToBytes(val any) (any, error) {
	switch v := val.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("cannot coerce %T to bytes", val)
	}
}

func coerceToMap(val any, targetType reflect.Type) (any, error) {
	rv := reflect.ValueOf(val)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("cannot coerce %T to map", val)
	}
	if rv.Type() == targetType {
		return val, nil
	}
	if rv.Type().ConvertibleTo(targetType) {
		return rv.Convert(targetType).Interface(), nil
	}
	return nil, fmt.Errorf("cannot coerce %s to %s", rv.Type(), targetType)
}

// convertTo converts a canonical coerced value to the declared field type,
// covering named types and narrower numeric widths. Values that do not fit
// the target width are rejected; reflect.Value.Convert would silently
// truncate or wrap them.
func convertTo(v any, t reflect.Type) (any, error) {
	rv := reflect.ValueOf(v)
	if rv.Type() == t {
		return v, nil
	}
	if !rv.Type().ConvertibleTo(t) {
		return nil, fmt.Errorf("cannot convert %T to %s", v, t)
	}

	dst := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if dst.OverflowInt(rv.Int()) {
			return nil, fmt.Errorf("value %d overflows %s", rv.Int(), t)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i := rv.Int()
		if i < 0 || dst.OverflowUint(uint64(i)) {
			return nil, fmt.Errorf("value %d overflows %s", i, t)
		}
	case reflect.Float32, reflect.Float64:
		if dst.OverflowFloat(rv.Float()) {
			return nil, fmt.Errorf("value %v overflows %s", rv.Float(), t)
		}
	}
	return rv.Convert(t).Interface(), nil
}
