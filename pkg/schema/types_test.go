package schema

import (
	"testing"
)

func TestStringType(t *testing.T) {
	typ := String()

	if err := typ.Validate("hello"); err != nil {
		t.Errorf("Validate(string) error = %v, want nil", err)
	}
	if err := typ.Validate(42); err == nil {
		t.Error("Validate(int) should fail for string type")
	}
}

func TestFloatType_AcceptsIntegers(t *testing.T) {
	typ := Float()

	for _, v := range []any{1.5, float32(2.5), 3, int64(4)} {
		if err := typ.Validate(v); err != nil {
			t.Errorf("Validate(%v) error = %v, want nil", v, err)
		}
	}
	if err := typ.Validate("3.14"); err == nil {
		t.Error("Validate(string) should fail for float type")
	}
}

func TestIntType_JSONFloats(t *testing.T) {
	typ := Int()

	// JSON unmarshaling produces float64 for all numbers.
	if err := typ.Validate(float64(7)); err != nil {
		t.Errorf("Validate(7.0) error = %v, want nil", err)
	}
	if err := typ.Validate(7.5); err == nil {
		t.Error("Validate(7.5) should fail for int type")
	}
}

func TestSliceType(t *testing.T) {
	typ := Slice(String())

	if typ.Name() != "[string]" {
		t.Errorf("Name() = %q, want [string]", typ.Name())
	}
	if err := typ.Validate([]string{"a", "b"}); err != nil {
		t.Errorf("Validate([]string) error = %v, want nil", err)
	}
	if err := typ.Validate([]any{"a", 1}); err == nil {
		t.Error("Validate should fail for mixed-type element")
	}
	if err := typ.Validate("not a slice"); err != nil {
		// ok, expected
	} else {
		t.Error("Validate(string) should fail for slice type")
	}
}

func TestMapType(t *testing.T) {
	typ := Map(Float())

	if typ.Name() != "{float}" {
		t.Errorf("Name() = %q, want {float}", typ.Name())
	}
	if err := typ.Validate(map[string]float64{"t1": 30.0}); err != nil {
		t.Errorf("Validate(map[string]float64) error = %v, want nil", err)
	}
	if err := typ.Validate(map[string]any{"t1": 30.0, "t2": "oops"}); err == nil {
		t.Error("Validate should fail for non-float value")
	}
	if err := typ.Validate(map[int]float64{1: 2.0}); err == nil {
		t.Error("Validate should fail for non-string keys")
	}
}

func TestDictType(t *testing.T) {
	typ := Dict()

	if err := typ.Validate(map[string]any{"k": []int{1}, "j": "x"}); err != nil {
		t.Errorf("Validate(dict) error = %v, want nil", err)
	}
	if err := typ.Validate([]string{"nope"}); err == nil {
		t.Error("Validate(slice) should fail for dict type")
	}
}

func TestParseType_Nested(t *testing.T) {
	cases := map[string]string{
		"string":     "string",
		"float":      "float",
		"dict":       "{any}",
		"[dict]":     "[{any}]",
		"{[string]}": "{[string]}",
		"{float}":    "{float}",
	}

	for expr, wantName := range cases {
		typ, err := ParseType(expr)
		if err != nil {
			t.Fatalf("ParseType(%q) error = %v", expr, err)
		}
		if typ.Name() != wantName {
			t.Errorf("ParseType(%q).Name() = %q, want %q", expr, typ.Name(), wantName)
		}
	}

	if _, err := ParseType("widget"); err == nil {
		t.Error("ParseType should fail for unknown type")
	}
}

func TestAggregateError_CollectsAll(t *testing.T) {
	aggr := &AggregateError{Errors: []error{
		&ValidationError{Key: "a", Reason: "required"},
		&ValidationError{Key: "b", Reason: "expected string", Value: 1},
	}}

	errs := ValidationErrors(aggr)
	if len(errs) != 2 {
		t.Fatalf("ValidationErrors() = %d errors, want 2", len(errs))
	}

	if ValidationErrors(aggr.Errors[0]) != nil {
		t.Error("ValidationErrors(non-aggregate) should return nil")
	}
}
