package changeset

import (
	"fmt"
	"reflect"
)

// ValidateRequired adds a "can't be blank" error for every listed key whose
// value (change or underlying data) is nil or an empty string.
func (cs *Changeset) ValidateRequired(keys ...string) *Changeset {
	for _, key := range keys {
		val := cs.GetField(key)
		if isBlank(val) {
			cs.addError(FieldError{Field: key, Message: "can't be blank", Validation: "required"})
		}
	}
	return cs
}

func isBlank(val any) bool {
	if val == nil {
		return true
	}
	if s, ok := val.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(val)
	if rv.Kind() == reflect.String {
		return rv.String() == ""
	}
	return false
}

// ValidateChange runs fn against the change stored under key, recording any
// returned errors. fn is not called when the key has no change.
func (cs *Changeset) ValidateChange(key string, fn func(key string, value any) []FieldError) *Changeset {
	change, ok := cs.GetChange(key)
	if !ok {
		return cs
	}
	for _, fe := range fn(key, change) {
		cs.addError(fe)
	}
	return cs
}

// ValidateInclusion checks that the change under key equals one of the
// allowed values.
func (cs *Changeset) ValidateInclusion(key string, allowed ...any) *Changeset {
	change, ok := cs.GetChange(key)
	if !ok || change == nil {
		return cs
	}
	for _, candidate := range allowed {
		if reflect.DeepEqual(change, candidate) {
			return cs
		}
	}
	cs.addError(FieldError{Field: key, Message: "is invalid", Validation: "inclusion"})
	return cs
}

// ValidateNumber checks that a numeric change under key lies within
// [min, max]. Use math.Inf bounds to leave a side open.
func (cs *Changeset) ValidateNumber(key string, min, max float64) *Changeset {
	change, ok := cs.GetChange(key)
	if !ok || change == nil {
		return cs
	}

	f, ok := toFloat(change)
	if !ok {
		cs.addError(FieldError{Field: key, Message: "is invalid", Validation: "number"})
		return cs
	}
	if f < min {
		cs.addError(FieldError{
			Field:      key,
			Message:    fmt.Sprintf("must be greater than or equal to %v", min),
			Validation: "number",
		})
	}
	if f > max {
		cs.addError(FieldError{
			Field:      key,
			Message:    fmt.Sprintf("must be less than or equal to %v", max),
			Validation: "number",
		})
	}
	return cs
}

func toFloat(val any) (float64, bool) {
	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// ValidateLength checks that a string or slice change under key has a length
// within [min, max]. Use -1 to leave a side open.
func (cs *Changeset) ValidateLength(key string, min, max int) *Changeset {
	change, ok := cs.GetChange(key)
	if !ok || change == nil {
		return cs
	}

	rv := reflect.ValueOf(change)
	var n int
	switch rv.Kind() {
	case reflect.String:
		n = len([]rune(rv.String()))
	case reflect.Slice:
		n = rv.Len()
	default:
		cs.addError(FieldError{Field: key, Message: "is invalid", Validation: "length"})
		return cs
	}

	if min >= 0 && n < min {
		cs.addError(FieldError{
			Field:      key,
			Message:    fmt.Sprintf("should be at least %d item(s)", min),
			Validation: "length",
		})
	}
	if max >= 0 && n > max {
		cs.addError(FieldError{
			Field:      key,
			Message:    fmt.Sprintf("should be at most %d item(s)", max),
			Validation: "length",
		})
	}
	return cs
}
