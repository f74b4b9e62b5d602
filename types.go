package signet

import (
	"context"
	"errors"
)

// TokenPair couples a token string with the claims frozen into it. Refresh
// and exchange return one pair for the consumed token and one for its
// replacement.
type TokenPair struct {
	Token  string
	Claims Claims
}

// Peek holds the structural contents of a token read without any
// verification. It exists for diagnostics and for revocation of
// already-expired tokens; it must never be used as an authorization
// source.
type Peek struct {
	Headers map[string]any
	Claims  Claims
}

// Backend is the capability set a token scheme must implement. Backends
// are stateless: everything they need per call arrives through ctx, the
// claim set, and the resolved *Options. A backend that stores records
// externally (for example a single-use scheme) does so through its own
// collaborators.
//
// The default implementations are jwt.Backend (signed compact tokens) and
// onetime.Backend (single-use tokens consumed on first verification).
type Backend interface {
	// BuildClaims merges the subject and type/expiry defaults into the
	// caller-supplied claims. Existing keys are kept unless an explicit
	// per-call TTL forces an expiry recompute.
	BuildClaims(ctx context.Context, resource any, subject string, claims Claims, opts *Options) (Claims, error)

	// CreateToken serializes and signs claims. It fails only for resolver
	// or encoding errors, never for claim content.
	CreateToken(ctx context.Context, claims Claims, opts *Options) (string, error)

	// DecodeToken recovers claims from a token, failing with
	// ErrInvalidToken on any structural, signature, or allow-list
	// violation.
	DecodeToken(ctx context.Context, token string, opts *Options) (Claims, error)

	// VerifyClaims runs scheme-specific semantic checks, such as the
	// standard temporal and issuer rules for JWTs.
	VerifyClaims(ctx context.Context, claims Claims, opts *Options) (Claims, error)

	// Revoke invalidates a token where the scheme supports it. Stateless
	// schemes return the claims unchanged.
	Revoke(ctx context.Context, claims Claims, token string, opts *Options) (Claims, error)

	// Refresh produces a replacement token preserving sub, aud, and custom
	// keys while re-rolling jti, iat, nbf, and exp. Schemes that cannot
	// refresh return ErrNotRefreshable.
	Refresh(ctx context.Context, token string, opts *Options) (TokenPair, error)

	// Exchange is Refresh plus a typ transition: the old token must carry
	// fromType and the new token is minted with toType. Schemes that
	// cannot exchange return ErrNotExchangeable.
	Exchange(ctx context.Context, token, fromType, toType string, opts *Options) (TokenPair, error)

	// Peek reads headers and claims without verifying anything, or nil
	// when the token is structurally unreadable.
	Peek(ctx context.Context, token string) *Peek
}

// Owner is the application side of the engine: it maps resources to
// subjects and back, and observes or vetoes each lifecycle stage. Embed
// [BaseOwner] and override only what the application needs.
//
// Resource values are opaque to signet; the engine only passes them
// through, it never inspects their structure.
type Owner interface {
	// SubjectForToken turns an application resource into the string
	// identity embedded in sub. An error aborts issuance before anything
	// is signed.
	SubjectForToken(resource any, claims Claims) (string, error)

	// ResourceFromClaims is the inverse mapping, used by
	// Engine.ResourceFromToken after a successful verification.
	ResourceFromClaims(claims Claims) (any, error)

	// BuildClaims is a pure enrichment hook run after the backend's claim
	// defaults. The owner may add, alter, or remove keys.
	BuildClaims(claims Claims, resource any, opts *Options) (Claims, error)

	// AfterEncodeAndSign runs purely for side effects once a token has
	// been produced, typically persistence. An error here fails the whole
	// call; the already-signed token must be discarded.
	AfterEncodeAndSign(resource any, claims Claims, token string, opts *Options) error

	// VerifyClaims applies application rules after the backend's standard
	// checks pass.
	VerifyClaims(claims Claims, opts *Options) error

	// OnVerify is the final enrichment and audit hook of the decode path;
	// its result is what callers receive.
	OnVerify(claims Claims, token string, opts *Options) (Claims, error)

	// OnRevoke observes a revocation after the backend has acted.
	OnRevoke(claims Claims, token string, opts *Options) (Claims, error)

	// OnRefresh observes a completed refresh. An error rejects the
	// refresh even though the backend already minted the new token, and
	// the caller must discard it.
	OnRefresh(old, renewed TokenPair, opts *Options) (TokenPair, TokenPair, error)

	// OnExchange is OnRefresh for type exchanges.
	OnExchange(old, exchanged TokenPair, opts *Options) (TokenPair, TokenPair, error)
}

// BaseOwner provides no-op defaults for every [Owner] hook so applications
// implement only the stages they care about. The two identity mappings
// have no sensible default and return an error until overridden.
type BaseOwner struct{}

var errSubjectUnimplemented = errors.New("SubjectForToken not implemented")
var errResourceUnimplemented = errors.New("ResourceFromClaims not implemented")

func (BaseOwner) SubjectForToken(any, Claims) (string, error) {
	return "", errSubjectUnimplemented
}

func (BaseOwner) ResourceFromClaims(Claims) (any, error) {
	return nil, errResourceUnimplemented
}

func (BaseOwner) BuildClaims(claims Claims, _ any, _ *Options) (Claims, error) {
	return claims, nil
}

func (BaseOwner) AfterEncodeAndSign(any, Claims, string, *Options) error {
	return nil
}

func (BaseOwner) VerifyClaims(Claims, *Options) error {
	return nil
}

func (BaseOwner) OnVerify(claims Claims, _ string, _ *Options) (Claims, error) {
	return claims, nil
}

func (BaseOwner) OnRevoke(claims Claims, _ string, _ *Options) (Claims, error) {
	return claims, nil
}

func (BaseOwner) OnRefresh(old, renewed TokenPair, _ *Options) (TokenPair, TokenPair, error) {
	return old, renewed, nil
}

func (BaseOwner) OnExchange(old, exchanged TokenPair, _ *Options) (TokenPair, TokenPair, error) {
	return old, exchanged, nil
}
