package schema

import (
	"fmt"
	"strings"
)

// FieldTag contains the structured representation of a parsed `morph` struct tag.
type FieldTag struct {
	// Name is the external key name for the field.
	Name string
	// Required marks the field as mandatory during casting.
	Required bool
	// Embed forces the field to be treated as an embedded schema.
	Embed bool
	// Assoc marks the field as an association rather than an embed.
	Assoc bool
	// Source provides an explicit override for the schema source name.
	// Only meaningful on the embedded Base field.
	Source string
	// Skip indicates the field should be ignored entirely.
	Skip bool
}

// ParseTag parses the content of a `morph` struct tag into a FieldTag
// structure. It supports a leading key name plus the options required,
// embed, assoc, and source:name.
func ParseTag(tag string) (FieldTag, error) {
	if tag == "" || tag == "-" {
		return FieldTag{Skip: tag == "-"}, nil
	}

	parts := strings.Split(tag, ",")
	ft := FieldTag{}

	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if i == 0 && !strings.Contains(part, ":") &&
			part != "required" && part != "embed" && part != "assoc" && part != "-" {
			ft.Name = part
			continue
		}

		switch {
		case part == "required":
			ft.Required = true
		case part == "embed":
			ft.Embed = true
		case part == "assoc":
			ft.Assoc = true
		case part == "-":
			ft.Skip = true
		case strings.HasPrefix(part, "source:"):
			ft.Source = strings.TrimPrefix(part, "source:")
		default:
			if i == 0 {
				ft.Name = part
			} else {
				return FieldTag{}, fmt.Errorf("unknown tag option: %q", part)
			}
		}
	}

	if ft.Embed && ft.Assoc {
		return FieldTag{}, fmt.Errorf("field cannot be both embed and assoc")
	}

	return ft, nil
}
