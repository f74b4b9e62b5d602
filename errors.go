package signet

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidToken covers every structural, signature, and
	// algorithm-allow-list failure during decode. A single error kind is
	// deliberate: distinguishing "bad signature" from "malformed" would
	// hand an oracle to an attacker probing token internals.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when exp (or auth_time + max_age) is in
	// the past beyond the allowed drift.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenNotYetValid is returned when nbf is in the future beyond the
	// allowed drift.
	ErrTokenNotYetValid = errors.New("token not yet valid")
	// ErrInvalidIssuer is returned when issuer verification is enabled and
	// the iss claim does not equal the configured issuer.
	ErrInvalidIssuer = errors.New("invalid issuer")
	// ErrNotRefreshable is returned by backends whose tokens cannot be
	// refreshed (for example single-use tokens).
	ErrNotRefreshable = errors.New("token not refreshable")
	// ErrNotExchangeable is returned by backends whose tokens cannot be
	// exchanged for a different token type.
	ErrNotExchangeable = errors.New("token not exchangeable")
	// ErrIncorrectTokenType is returned by Exchange when the token's typ
	// claim does not match the requested from-type.
	ErrIncorrectTokenType = errors.New("incorrect token type")
	// ErrTokenNotFoundOrExpired is returned by single-use backends when a
	// record is absent at lookup time. Absence and expiry are deliberately
	// indistinguishable.
	ErrTokenNotFoundOrExpired = errors.New("token not found or expired")
	// ErrNoResolver is returned when signing or verification is attempted
	// without any key material configured.
	ErrNoResolver = errors.New("no key resolver configured")
	// ErrEngineNotReady is returned when an Engine method is called on a
	// nil or unbuilt engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// ClaimError reports a claim that is missing from a decoded token or whose
// value does not satisfy a caller-supplied constraint. Key identifies the
// offending claim so callers can render "missing/invalid claim X".
type ClaimError struct {
	Key string
}

func (e *ClaimError) Error() string {
	return fmt.Sprintf("missing or invalid claim %q", e.Key)
}

// Is reports true for any *ClaimError so errors.Is can test the kind
// without knowing the key.
func (e *ClaimError) Is(target error) bool {
	_, ok := target.(*ClaimError)
	return ok
}
