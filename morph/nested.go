package morph

import (
	"github.com/SamHutchings/structmorph/changeset"
)

// ValidateNested walks a dot path of nested changesets inside cs and applies
// fn to the changeset at the end of the path. When the path lands on a slice
// of changesets, fn is applied to every element. Invalidity introduced by fn
// propagates up through every ancestor, so the root changeset ends up
// invalid whenever the nested validation fails.
//
// The path must resolve to a nested changeset produced by a previous cast;
// otherwise *changeset.NotAChangesetError is returned.
func ValidateNested(cs *changeset.Changeset, path string, fn func(*changeset.Changeset) *changeset.Changeset) (*changeset.Changeset, error) {
	segs, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	if err := validateAt(cs, segs, path, fn); err != nil {
		return nil, err
	}
	return cs, nil
}

func validateAt(cs *changeset.Changeset, segs []string, path string, fn func(*changeset.Changeset) *changeset.Changeset) error {
	key := segs[0]

	switch child := cs.Changes[key].(type) {
	case *changeset.Changeset:
		if err := descend(child, segs, path, fn); err != nil {
			return err
		}
		cs.Changes[key] = child
		if !child.Valid {
			cs.Valid = false
		}
		return nil

	case []*changeset.Changeset:
		for _, c := range child {
			if err := descend(c, segs, path, fn); err != nil {
				return err
			}
			if !c.Valid {
				cs.Valid = false
			}
		}
		return nil

	default:
		return &changeset.NotAChangesetError{Path: path}
	}
}

func descend(child *changeset.Changeset, segs []string, path string, fn func(*changeset.Changeset) *changeset.Changeset) error {
	if len(segs) == 1 {
		res := fn(child)
		if res != nil && res != child {
			*child = *res
		}
		return nil
	}
	return validateAt(child, segs[1:], path, fn)
}
