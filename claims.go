package signet

import (
	"encoding/json"
	"reflect"
	"time"
)

// Claims is the schema-less attribute map encoded into and decoded from a
// token. Keys are always strings; values are JSON-compatible (strings,
// numbers, booleans, nested maps and lists). Unknown keys round-trip
// through build and verify untouched, and keys compare case-sensitively.
//
// Standard recognized keys: sub, iss, aud, iat, nbf, exp, typ, jti.
type Claims map[string]any

// Clone returns a shallow copy of the claim map. Nested values are shared;
// claim builders only ever replace top-level entries.
func (c Claims) Clone() Claims {
	if c == nil {
		return Claims{}
	}
	out := make(Claims, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Subject returns the sub claim, or "" when absent or not a string.
func (c Claims) Subject() string {
	s, _ := c["sub"].(string)
	return s
}

// TokenType returns the typ claim, or "" when absent or not a string.
func (c Claims) TokenType() string {
	s, _ := c["typ"].(string)
	return s
}

// ID returns the jti claim, or "" when absent or not a string.
func (c Claims) ID() string {
	s, _ := c["jti"].(string)
	return s
}

// NormalizeClaims copies caller-supplied claims into a fresh map with
// string keys. A nil input yields an empty, writable map so claim builders
// never have to nil-check.
func NormalizeClaims(in map[string]any) Claims {
	out := make(Claims, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// NumericDate interprets a claim value as a unix timestamp. JSON decoding
// yields float64, claim builders store int64, and callers may hand in int
// or json.Number; all are accepted.
func NumericDate(v any) (time.Time, bool) {
	switch n := v.(type) {
	case int64:
		return time.Unix(n, 0), true
	case int:
		return time.Unix(int64(n), 0), true
	case float64:
		return time.Unix(int64(n), 0), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(i, 0), true
	default:
		return time.Time{}, false
	}
}

// claimValuesEqual compares two claim values with numeric tolerance: a
// caller-supplied int must match the float64 the JSON decoder produced for
// the same claim.
func claimValuesEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}
	if _, bok := asFloat(b); bok {
		return false
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}
