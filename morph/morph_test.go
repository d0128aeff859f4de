package morph

import (
	"errors"
	"testing"
	"time"

	"github.com/SamHutchings/structmorph/changeset"
	"github.com/SamHutchings/structmorph/schema"
)

// Shared fixtures for the morph package tests.

type Profile struct {
	schema.Base
	Bio string
	Age int
}

type Post struct {
	schema.Base
	Title string
	Likes int64
}

type User struct {
	schema.Base `morph:"source:users"`
	ID          int64
	FirstName   string
	Email       *string
	InsertedAt  time.Time
	UpdatedAt   time.Time
	Profile     Profile
	Posts       []*Post `morph:"posts,assoc"`
}

func TestCast_FromMap(t *testing.T) {
	schema.ClearRegistry()

	user, err := Cast[User](map[string]any{
		"id":         float64(1),
		"first_name": "Ada",
		"email":      "ada@example.com",
		"profile": map[string]any{
			"bio": "mathematician",
			"age": 36,
		},
		"posts": []any{
			map[string]any{"title": "Notes", "likes": 2},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.ID != 1 || user.FirstName != "Ada" {
		t.Errorf("user: got %+v", user)
	}
	if user.Email == nil || *user.Email != "ada@example.com" {
		t.Errorf("Email: got %v", user.Email)
	}
	if user.Profile.Bio != "mathematician" || user.Profile.Age != 36 {
		t.Errorf("Profile: got %+v", user.Profile)
	}
	if len(user.Posts) != 1 || user.Posts[0].Title != "Notes" {
		t.Errorf("Posts: got %+v", user.Posts)
	}
}

func TestCast_FromCamelCaseKeys(t *testing.T) {
	schema.ClearRegistry()

	user, err := Cast[User](map[string]any{"firstName": "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.FirstName != "Ada" {
		t.Errorf("FirstName: got %q", user.FirstName)
	}
}

func TestCast_InvalidData(t *testing.T) {
	schema.ClearRegistry()

	_, err := Cast[User](map[string]any{"id": "not-an-id"})
	if err == nil {
		t.Fatal("expected error")
	}
	var invalid *changeset.InvalidChangesetError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidChangesetError, got %T", err)
	}
	errs := invalid.Changeset.ErrorMap()
	if _, ok := errs["id"]; !ok {
		t.Errorf("error map should report id: %v", errs)
	}
}

func TestCast_FromSchemaStruct(t *testing.T) {
	schema.ClearRegistry()

	src := &User{FirstName: "Ada", Profile: Profile{Bio: "x", Age: 1}}
	user, err := Cast[User](src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.FirstName != "Ada" || user.Profile.Bio != "x" {
		t.Errorf("got %+v", user)
	}
	if user == src {
		t.Error("cast should allocate a new struct")
	}
}

func TestCast_FromPlainStruct(t *testing.T) {
	schema.ClearRegistry()

	type signupForm struct {
		FirstName string
		Email     string
	}
	user, err := Cast[User](signupForm{FirstName: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.FirstName != "Ada" {
		t.Errorf("FirstName: got %q", user.FirstName)
	}
	if user.Email == nil || *user.Email != "ada@example.com" {
		t.Errorf("Email: got %v", user.Email)
	}
}

func TestCast_FromNil(t *testing.T) {
	schema.ClearRegistry()

	user, err := Cast[User](nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.FirstName != "" {
		t.Errorf("expected zero struct, got %+v", user)
	}
}

func TestCast_FromUnsupportedInput(t *testing.T) {
	schema.ClearRegistry()

	if _, err := Cast[User](42); err == nil {
		t.Error("expected error for unsupported input")
	}
}

func TestUpdate(t *testing.T) {
	schema.ClearRegistry()

	existing := &User{ID: 1, FirstName: "Ada", Email: ptr("old@example.com")}
	updated, err := Update(existing, map[string]any{"email": "new@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Email == nil || *updated.Email != "new@example.com" {
		t.Errorf("Email: got %v", updated.Email)
	}
	if updated.ID != 1 || updated.FirstName != "Ada" {
		t.Errorf("untouched fields should survive: %+v", updated)
	}
	if *existing.Email != "old@example.com" {
		t.Error("Update must not mutate its target")
	}
}

func TestUpdate_NilTarget(t *testing.T) {
	schema.ClearRegistry()

	if _, err := Update[User](nil, map[string]any{}); err == nil {
		t.Error("expected error for nil target")
	}
}

func TestNewChangeset(t *testing.T) {
	schema.ClearRegistry()

	cs, err := NewChangeset[User](map[string]any{"first_name": "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cs.Valid {
		t.Fatalf("expected valid changeset, errors: %v", cs.Errors)
	}

	cs.ValidateRequired("email")
	if cs.Valid {
		t.Fatal("expected invalid after ValidateRequired")
	}

	if _, err := IntoStruct[User](cs); err == nil {
		t.Error("IntoStruct should fail on invalid changeset")
	}
}

func TestIntoStruct_WrongType(t *testing.T) {
	schema.ClearRegistry()

	cs, err := NewChangeset[User](map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := IntoStruct[Post](cs); err == nil {
		t.Error("expected error for mismatched struct type")
	}
}

func TestCast_Only(t *testing.T) {
	schema.ClearRegistry()

	user, err := Cast[User](map[string]any{
		"first_name": "Ada",
		"email":      "ada@example.com",
	}, Only("first_name"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.FirstName != "Ada" {
		t.Errorf("FirstName: got %q", user.FirstName)
	}
	if user.Email != nil {
		t.Error("email was not whitelisted")
	}
}

func TestCast_OnlyNestedPath(t *testing.T) {
	schema.ClearRegistry()

	user, err := Cast[User](map[string]any{
		"first_name": "Ada",
		"profile": map[string]any{
			"bio": "mathematician",
			"age": 36,
		},
	}, Only("profile.bio"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.FirstName != "" {
		t.Error("first_name was not whitelisted")
	}
	if user.Profile.Bio != "mathematician" {
		t.Errorf("Profile.Bio: got %q", user.Profile.Bio)
	}
	if user.Profile.Age != 0 {
		t.Error("profile.age was not whitelisted")
	}
}

func TestCast_OnlyBadPath(t *testing.T) {
	schema.ClearRegistry()

	if _, err := Cast[User](map[string]any{}, Only("a..b")); err == nil {
		t.Error("expected parse error for malformed path")
	}
}

func ptr[T any](v T) *T { return &v }
