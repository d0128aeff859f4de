package sqlsource

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/SamHutchings/structmorph/schema"
)

type Account struct {
	schema.Base
	ID     int64
	Name   string
	Email  *string
	Active bool
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	schema.ClearRegistry()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE accounts (
			id     INTEGER PRIMARY KEY,
			name   TEXT NOT NULL,
			email  TEXT,
			active INTEGER NOT NULL DEFAULT 0
		)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}

	_, err = db.Exec(`
		INSERT INTO accounts (id, name, email, active) VALUES
			(1, 'Ada', 'ada@example.com', 1),
			(2, 'Grace', NULL, 0)`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	return db
}

func TestQueryMaps(t *testing.T) {
	db := openTestDB(t)

	records, err := QueryMaps(context.Background(), db,
		"SELECT id, name, email, active FROM accounts ORDER BY id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records: got %d", len(records))
	}

	first := records[0]
	if first["id"] != int64(1) {
		t.Errorf("id: got %v (%T)", first["id"], first["id"])
	}
	if first["name"] != "Ada" {
		t.Errorf("name: got %v", first["name"])
	}
	if records[1]["email"] != nil {
		t.Errorf("NULL email should scan as nil, got %v", records[1]["email"])
	}
}

func TestQueryStructs(t *testing.T) {
	db := openTestDB(t)

	accounts, err := QueryStructs[Account](context.Background(), db,
		"SELECT id, name, email, active FROM accounts ORDER BY id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("accounts: got %d", len(accounts))
	}

	ada := accounts[0]
	if ada.ID != 1 || ada.Name != "Ada" || !ada.Active {
		t.Errorf("first account: got %+v", ada)
	}
	if ada.Email == nil || *ada.Email != "ada@example.com" {
		t.Errorf("Email: got %v", ada.Email)
	}

	grace := accounts[1]
	if grace.Email != nil {
		t.Errorf("NULL email should leave the pointer nil, got %v", grace.Email)
	}
	if grace.Active {
		t.Error("active=0 should cast to false")
	}
}

func TestQueryStruct(t *testing.T) {
	db := openTestDB(t)

	account, err := QueryStruct[Account](context.Background(), db,
		"SELECT id, name, email, active FROM accounts WHERE id = ?", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Name != "Ada" {
		t.Errorf("Name: got %q", account.Name)
	}
}

func TestQueryStruct_NoRows(t *testing.T) {
	db := openTestDB(t)

	_, err := QueryStruct[Account](context.Background(), db,
		"SELECT id, name, email, active FROM accounts WHERE id = ?", 99)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestQueryStructs_CastFailure(t *testing.T) {
	db := openTestDB(t)

	// name selected into the id column position makes the cast fail.
	_, err := QueryStructs[Account](context.Background(), db,
		"SELECT name AS id FROM accounts")
	if err == nil {
		t.Fatal("expected cast error")
	}
}

func TestQueryMaps_BadQuery(t *testing.T) {
	db := openTestDB(t)

	if _, err := QueryMaps(context.Background(), db, "SELECT nope FROM missing"); err == nil {
		t.Error("expected query error")
	}
}
