package changeset

import (
	"fmt"
	"strings"
)

// FieldError describes a single cast or validation failure on one field.
type FieldError struct {
	// Field is the external key of the offending field.
	Field string
	// Message is the human-readable failure message, e.g. "is invalid".
	Message string
	// Validation names the check that produced the error, e.g. "cast",
	// "required", "inclusion".
	Validation string
}

// Error returns the error message for FieldError.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// InvalidChangesetError is returned when Apply is called on a changeset that
// failed casting or validation. The full changeset is attached so callers can
// traverse nested errors.
type InvalidChangesetError struct {
	Changeset *Changeset
}

// Error returns a summary of all top-level field errors.
func (e *InvalidChangesetError) Error() string {
	if len(e.Changeset.Errors) == 0 {
		return "changeset is invalid"
	}
	msgs := make([]string, 0, len(e.Changeset.Errors))
	for _, fe := range e.Changeset.Errors {
		msgs = append(msgs, fe.Error())
	}
	return "changeset is invalid: " + strings.Join(msgs, "; ")
}

// UnknownFieldError is returned when a permitted field name does not exist
// on the schema being cast.
type UnknownFieldError struct {
	Field  string
	Schema string
}

// Error returns the error message for UnknownFieldError.
func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("schema %q has no field %q", e.Schema, e.Field)
}

// NotAChangesetError is returned when a nested validation path does not
// resolve to a nested changeset.
type NotAChangesetError struct {
	Path string
}

// Error returns the error message for NotAChangesetError.
func (e *NotAChangesetError) Error() string {
	return fmt.Sprintf("no nested changeset at path %q", e.Path)
}

// TraverseErrors walks the changeset and all nested changesets in its
// changes, building a map from external keys to error output. Plain fields
// map to a []string of formatted messages; nested changesets map to nested
// maps; nested changeset slices map to a []any aligned with the cast input,
// holding an empty map for valid elements.
func TraverseErrors(cs *Changeset, format func(FieldError) string) map[string]any {
	out := make(map[string]any)

	for _, fe := range cs.Errors {
		msgs, _ := out[fe.Field].([]string)
		out[fe.Field] = append(msgs, format(fe))
	}

	for key, change := range cs.Changes {
		switch c := change.(type) {
		case *Changeset:
			if m := TraverseErrors(c, format); len(m) > 0 {
				out[key] = m
			}
		case []*Changeset:
			elems := make([]any, len(c))
			nonEmpty := false
			for i, child := range c {
				m := TraverseErrors(child, format)
				if len(m) > 0 {
					nonEmpty = true
				}
				elems[i] = m
			}
			if nonEmpty {
				out[key] = elems
			}
		}
	}

	return out
}

// ErrorMap returns the traversed error map using the default message format.
func (cs *Changeset) ErrorMap() map[string]any {
	return TraverseErrors(cs, func(fe FieldError) string { return fe.Message })
}
