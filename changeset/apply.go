package changeset

import (
	"fmt"
	"reflect"

	"github.com/SamHutchings/structmorph/schema"
)

// Apply materializes the changeset into a new struct: a copy of Data with
// every change written through, recursing into nested changesets. It returns
// a pointer to the new struct, or InvalidChangesetError if the changeset (or
// any nested changeset) failed casting or validation.
func (cs *Changeset) Apply() (any, error) {
	if !cs.Valid {
		return nil, &InvalidChangesetError{Changeset: cs}
	}

	out := reflect.New(cs.Schema.GoType)
	out.Elem().Set(reflect.ValueOf(cs.Data).Elem())

	for key, change := range cs.Changes {
		fi, ok := cs.Schema.FieldByKey(key)
		if !ok {
			return nil, &UnknownFieldError{Field: key, Schema: cs.Schema.Source}
		}
		field := out.Elem().Field(fi.FieldIndex)

		if change == nil {
			field.Set(reflect.Zero(fi.FieldType))
			continue
		}

		var err error
		switch c := change.(type) {
		case *Changeset:
			err = applyNested(field, fi, c)
		case []*Changeset:
			err = applyNestedSlice(field, fi, c)
		default:
			err = applyScalar(field, fi, change)
		}
		if err != nil {
			return nil, fmt.Errorf("applying %s: %w", key, err)
		}
	}

	result := out.Interface()
	if s, ok := result.(schema.Schema); ok {
		s.SetSourceName(cs.Schema.Source)
	}
	return result, nil
}

// ApplyTo applies the changeset and writes the result into target, which
// must be a pointer to the changeset's schema struct type.
func (cs *Changeset) ApplyTo(target any) error {
	applied, err := cs.Apply()
	if err != nil {
		return err
	}

	tv := reflect.ValueOf(target)
	if tv.Kind() != reflect.Ptr || tv.IsNil() {
		return fmt.Errorf("changeset: target must be a non-nil pointer, got %T", target)
	}
	if tv.Elem().Type() != cs.Schema.GoType {
		return fmt.Errorf("changeset: target is %s, changeset is for %s",
			tv.Elem().Type(), cs.Schema.GoType)
	}

	tv.Elem().Set(reflect.ValueOf(applied).Elem())
	return nil
}

func applyNested(field reflect.Value, fi schema.FieldInfo, child *Changeset) error {
	applied, err := child.Apply()
	if err != nil {
		return err
	}
	av := reflect.ValueOf(applied) // pointer to the nested struct

	if fi.IsPointer {
		field.Set(av)
		return nil
	}
	field.Set(av.Elem())
	return nil
}

func applyNestedSlice(field reflect.Value, fi schema.FieldInfo, children []*Changeset) error {
	sliceType := fi.FieldType
	elemPtr := sliceType.Elem().Kind() == reflect.Ptr

	slice := reflect.MakeSlice(sliceType, len(children), len(children))
	for i, child := range children {
		applied, err := child.Apply()
		if err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
		av := reflect.ValueOf(applied)
		if elemPtr {
			slice.Index(i).Set(av)
		} else {
			slice.Index(i).Set(av.Elem())
		}
	}
	field.Set(slice)
	return nil
}

func applyScalar(field reflect.Value, fi schema.FieldInfo, change any) error {
	cv := reflect.ValueOf(change)

	if field.Kind() == reflect.Ptr {
		elem := field.Type().Elem()
		if !cv.Type().AssignableTo(elem) {
			return fmt.Errorf("cannot assign %T to %s", change, fi.FieldType)
		}
		ptr := reflect.New(elem)
		ptr.Elem().Set(cv)
		field.Set(ptr)
		return nil
	}

	if !cv.Type().AssignableTo(field.Type()) {
		return fmt.Errorf("cannot assign %T to %s", change, field.Type())
	}
	field.Set(cv)
	return nil
}
