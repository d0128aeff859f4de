package morph

import (
	"testing"
	"time"

	"github.com/SamHutchings/structmorph/schema"
)

func TestFilterBySchemaFields(t *testing.T) {
	schema.ClearRegistry()

	got, err := FilterBySchemaFields[User](map[string]any{
		"first_name": "Ada",
		"email":      "ada@example.com",
		"password":   "hunter2",
		"csrf_token": "abc",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got["first_name"] != "Ada" || got["email"] != "ada@example.com" {
		t.Errorf("kept keys: got %v", got)
	}
	for _, key := range []string{"password", "csrf_token"} {
		if _, present := got[key]; present {
			t.Errorf("%s should be dropped", key)
		}
	}
}

func TestFilterBySchemaFields_NormalizesKeys(t *testing.T) {
	schema.ClearRegistry()

	got, err := FilterBySchemaFields[User](map[string]any{"firstName": "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["first_name"] != "Ada" {
		t.Errorf("expected canonical key first_name, got %v", got)
	}
}

func TestFilterBySchemaFields_ShallowKeepsNestedValues(t *testing.T) {
	schema.ClearRegistry()

	got, err := FilterBySchemaFields[User](map[string]any{
		"profile": map[string]any{"bio": "x", "stray": true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	profile := got["profile"].(map[string]any)
	if _, present := profile["stray"]; !present {
		t.Error("shallow filter must leave nested maps untouched")
	}
}

func TestDeepFilterBySchemaFields(t *testing.T) {
	schema.ClearRegistry()

	got, err := DeepFilterBySchemaFields[User](map[string]any{
		"first_name": "Ada",
		"profile": map[string]any{
			"bio":   "mathematician",
			"stray": true,
		},
		"posts": []any{
			map[string]any{"title": "Notes", "stray": 1},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	profile := got["profile"].(map[string]any)
	if profile["bio"] != "mathematician" {
		t.Errorf("profile: got %v", profile)
	}
	if _, present := profile["stray"]; present {
		t.Error("deep filter should drop nested stray keys")
	}

	posts := got["posts"].([]any)
	post := posts[0].(map[string]any)
	if post["title"] != "Notes" {
		t.Errorf("post: got %v", post)
	}
	if _, present := post["stray"]; present {
		t.Error("deep filter should drop stray keys in slice elements")
	}
}

func TestFilterNotLoaded(t *testing.T) {
	schema.ClearRegistry()

	got, err := FilterBySchemaFields[User](map[string]any{
		"first_name": "Ada",
		"posts":      schema.NotLoaded{Field: "posts"},
	}, FilterNotLoaded())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, present := got["posts"]; present {
		t.Error("NotLoaded value should be dropped")
	}
	if got["first_name"] != "Ada" {
		t.Errorf("got %v", got)
	}
}

func TestFilterStructs(t *testing.T) {
	schema.ClearRegistry()

	got, err := FilterBySchemaFields[User](map[string]any{
		"first_name":  "Ada",
		"inserted_at": time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		"profile":     Profile{Bio: "x"},
		"posts":       schema.NotLoaded{Field: "posts"},
	}, FilterStructs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, present := got["profile"]; present {
		t.Error("typed struct value should be dropped")
	}
	if _, present := got["posts"]; present {
		t.Error("NotLoaded is a struct and should be dropped")
	}
	if _, present := got["inserted_at"]; !present {
		t.Error("time.Time values are scalars and should be kept")
	}
	if got["first_name"] != "Ada" {
		t.Errorf("got %v", got)
	}
}

func TestFilter_RoundTripWithToMap(t *testing.T) {
	schema.ClearRegistry()

	m, err := ToMap(&User{FirstName: "Ada"})
	if err != nil {
		t.Fatalf("ToMap: %v", err)
	}

	got, err := FilterBySchemaFields[User](m, FilterNotLoaded())
	if err != nil {
		t.Fatalf("FilterBySchemaFields: %v", err)
	}
	if _, present := got["posts"]; present {
		t.Error("unloaded assoc should be dropped from the projection")
	}
}

func TestFilterBySchemaFields_NotASchema(t *testing.T) {
	schema.ClearRegistry()

	type plain struct{ X int }
	if _, err := FilterBySchemaFields[plain](map[string]any{"x": 1}); err == nil {
		t.Error("expected error for non-schema type")
	}
}
