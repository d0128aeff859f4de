package schema

import (
	"reflect"
	"testing"
)

func TestRegisterAndLookup(t *testing.T) {
	ClearRegistry()
	if err := Register[TestCustomer](); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, ok := Lookup("customers")
	if !ok {
		t.Fatal("customers not found by source")
	}
	if info.GoType != reflect.TypeOf(TestCustomer{}) {
		t.Errorf("GoType: got %v", info.GoType)
	}

	byType, ok := LookupType(reflect.TypeOf(&TestCustomer{}))
	if !ok {
		t.Fatal("TestCustomer not found by type")
	}
	if byType != info {
		t.Error("Lookup and LookupType should return the same Info")
	}
}

func TestRegister_NotASchema(t *testing.T) {
	ClearRegistry()
	if err := Register[notASchema](); err == nil {
		t.Error("expected error for struct without Base")
	}
}

func TestRegister_SourceConflict(t *testing.T) {
	ClearRegistry()
	MustRegister[TestCustomer]()

	type conflicting struct {
		Base `morph:"source:customers"`
		Name string
	}
	if err := Register[conflicting](); err == nil {
		t.Error("expected error for conflicting source")
	}
}

func TestRegister_Idempotent(t *testing.T) {
	ClearRegistry()
	MustRegister[TestOrder]()
	if err := Register[TestOrder](); err != nil {
		t.Errorf("re-registering same type should not fail: %v", err)
	}
}

func TestLookupValue(t *testing.T) {
	ClearRegistry()
	MustRegister[TestOrder]()

	if _, ok := LookupValue(&TestOrder{}); !ok {
		t.Error("LookupValue should find registered type")
	}
	if _, ok := LookupValue(nil); ok {
		t.Error("LookupValue(nil) should not find anything")
	}
}

func TestInfoFor_AutoRegisters(t *testing.T) {
	ClearRegistry()

	info, err := InfoFor(reflect.TypeOf(TestAddress{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Source != "test_addresses" {
		t.Errorf("Source: got %q, want %q", info.Source, "test_addresses")
	}

	// Second call hits the cache and returns the same Info.
	again, err := InfoFor(reflect.TypeOf(TestAddress{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != info {
		t.Error("InfoFor should cache extracted metadata")
	}
}

func TestRegisteredSchemas(t *testing.T) {
	ClearRegistry()
	MustRegister[TestCustomer]()
	MustRegister[TestOrder]()

	if got := len(RegisteredSchemas()); got != 2 {
		t.Errorf("RegisteredSchemas: got %d, want 2", got)
	}
}
