package signet

import (
	"encoding/json"
	"testing"
	"time"
)

func TestClaimsCloneIsolation(t *testing.T) {
	original := Claims{"sub": "u1"}
	clone := original.Clone()
	clone["sub"] = "u2"

	if original.Subject() != "u1" {
		t.Fatal("clone mutated the original map")
	}

	var nilClaims Claims
	clone = nilClaims.Clone()
	clone["k"] = "v"
	if len(clone) != 1 {
		t.Fatal("nil clone is not writable")
	}
}

func TestClaimsAccessors(t *testing.T) {
	c := Claims{"sub": "u1", "typ": "refresh", "jti": "id-1"}
	if c.Subject() != "u1" || c.TokenType() != "refresh" || c.ID() != "id-1" {
		t.Fatalf("unexpected accessor results: %v", c)
	}

	// Wrong types degrade to empty, never panic.
	c = Claims{"sub": 42, "typ": nil}
	if c.Subject() != "" || c.TokenType() != "" || c.ID() != "" {
		t.Fatal("expected empty strings for non-string claims")
	}
}

func TestNormalizeClaimsNilInput(t *testing.T) {
	c := NormalizeClaims(nil)
	if c == nil {
		t.Fatal("expected writable map for nil input")
	}
	c["k"] = "v"
}

func TestNumericDate(t *testing.T) {
	want := time.Unix(1700000000, 0)

	for _, v := range []any{int64(1700000000), int(1700000000), float64(1700000000), json.Number("1700000000")} {
		got, ok := NumericDate(v)
		if !ok || !got.Equal(want) {
			t.Fatalf("NumericDate(%T %v) = %v, %v", v, v, got, ok)
		}
	}

	for _, v := range []any{"1700000000", nil, true, json.Number("not-a-number")} {
		if _, ok := NumericDate(v); ok {
			t.Fatalf("NumericDate accepted %T %v", v, v)
		}
	}
}

func TestClaimValuesEqual(t *testing.T) {
	cases := []struct {
		a, b any
		want bool
	}{
		{int64(5), float64(5), true},
		{int(5), json.Number("5"), true},
		{float64(5.5), int64(5), false},
		{"x", "x", true},
		{"5", float64(5), false},
		{[]any{"a"}, []any{"a"}, true},
		{map[string]any{"k": "v"}, map[string]any{"k": "v"}, true},
		{map[string]any{"k": "v"}, map[string]any{"k": "w"}, false},
	}

	for _, tc := range cases {
		if got := claimValuesEqual(tc.a, tc.b); got != tc.want {
			t.Errorf("claimValuesEqual(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
