package onetime

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/signet-auth/signet"
)

// Store persists single-use token records keyed by token id. Every record
// carries the full claims map and an expiry timestamp.
//
// Consume must be atomic: of any number of concurrent Consume calls for
// one id, exactly one may succeed.
type Store interface {
	Save(ctx context.Context, id string, claims signet.Claims, expiresAt time.Time) error
	// Consume reads and deletes a record in one step, failing with
	// signet.ErrTokenNotFoundOrExpired when the record is absent, already
	// consumed, or past its expiry.
	Consume(ctx context.Context, id string) (signet.Claims, error)
	// Peek reads without consuming, for diagnostics and revocation.
	Peek(ctx context.Context, id string) (signet.Claims, error)
	// Delete removes a record, failing with
	// signet.ErrTokenNotFoundOrExpired when there is nothing to remove.
	Delete(ctx context.Context, id string) error
}

// Backend implements [signet.Backend] for single-use tokens.
type Backend struct {
	store Store
}

// New returns a single-use backend over the given store.
func New(store Store) *Backend {
	return &Backend{store: store}
}

// BuildClaims merges the subject and the standard defaults into the
// caller-supplied claims, put-if-absent like the JWT backend. The jti
// default is the token id the record will be stored under.
func (b *Backend) BuildClaims(_ context.Context, _ any, subject string, claims signet.Claims, opts *signet.Options) (signet.Claims, error) {
	if subject == "" {
		return nil, &signet.ClaimError{Key: "sub"}
	}

	c := claims.Clone()
	c["sub"] = subject

	tokenType := opts.TokenType
	if tokenType == "" {
		tokenType = "access"
	}
	putNew(c, "typ", tokenType)

	if opts.Issuer != "" {
		putNew(c, "iss", opts.Issuer)
	}
	audience := opts.Audience
	if audience == "" {
		audience = opts.Issuer
	}
	if audience != "" {
		putNew(c, "aud", audience)
	}

	putNew(c, "iat", time.Now().Unix())
	iat := int64(0)
	if t, ok := signet.NumericDate(c["iat"]); ok {
		iat = t.Unix()
	}
	putNew(c, "nbf", iat-1)

	typ, _ := c["typ"].(string)
	if ttl := opts.TTLFor(typ); ttl > 0 {
		if opts.TTLForced {
			c["exp"] = iat + int64(ttl/time.Second)
		} else {
			putNew(c, "exp", iat+int64(ttl/time.Second))
		}
	}

	putNew(c, "jti", uuid.NewString())

	return c, nil
}

// CreateToken persists the claims under the jti and returns the jti as the
// token string. The token carries no information besides the record key.
func (b *Backend) CreateToken(ctx context.Context, claims signet.Claims, _ *signet.Options) (string, error) {
	id := claims.ID()
	if id == "" {
		return "", &signet.ClaimError{Key: "jti"}
	}

	var expiresAt time.Time
	if v, ok := claims["exp"]; ok {
		if t, valid := signet.NumericDate(v); valid {
			expiresAt = t
		}
	}

	if err := b.store.Save(ctx, id, claims, expiresAt); err != nil {
		return "", err
	}

	return id, nil
}

// DecodeToken consumes the record: the first call returns the claims and
// deletes them, every later call fails with ErrTokenNotFoundOrExpired.
func (b *Backend) DecodeToken(ctx context.Context, token string, _ *signet.Options) (signet.Claims, error) {
	return b.store.Consume(ctx, token)
}

// VerifyClaims is a pass-through. Expiry is enforced by the store at
// consumption time, and a consumed record cannot be presented again, so
// there is nothing left to verify.
func (b *Backend) VerifyClaims(_ context.Context, claims signet.Claims, _ *signet.Options) (signet.Claims, error) {
	return claims, nil
}

// Revoke deletes the storage record. Revoking an already-consumed or
// unknown token fails with ErrTokenNotFoundOrExpired.
func (b *Backend) Revoke(ctx context.Context, claims signet.Claims, token string, _ *signet.Options) (signet.Claims, error) {
	if err := b.store.Delete(ctx, token); err != nil {
		return claims, err
	}
	return claims, nil
}

// Refresh is unsupported: a consumed single-use record has nothing left to
// re-issue from.
func (b *Backend) Refresh(context.Context, string, *signet.Options) (signet.TokenPair, error) {
	return signet.TokenPair{}, signet.ErrNotRefreshable
}

// Exchange is unsupported for the same reason as Refresh.
func (b *Backend) Exchange(context.Context, string, string, string, *signet.Options) (signet.TokenPair, error) {
	return signet.TokenPair{}, signet.ErrNotExchangeable
}

// Peek reads the stored claims without consuming the record, or nil when
// the record is gone.
func (b *Backend) Peek(ctx context.Context, token string) *signet.Peek {
	claims, err := b.store.Peek(ctx, token)
	if err != nil {
		return nil
	}
	return &signet.Peek{Claims: claims}
}

func putNew(c signet.Claims, key string, value any) {
	if _, ok := c[key]; !ok {
		c[key] = value
	}
}
