package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/signet-auth/signet"
)

// Backend implements [signet.Backend] for signed compact tokens. It is
// stateless; everything it needs per call arrives through the resolved
// *signet.Options.
type Backend struct{}

// New returns the JWT backend.
func New() *Backend {
	return &Backend{}
}

// BuildClaims merges the subject and the standard defaults into the
// caller-supplied claims. Caller keys win: every default is put-if-absent,
// with one documented exception — an explicit per-call TTL recomputes exp
// even when the claim set already carries one.
//
// Defaults: typ from options ("access"), iss from the configured issuer,
// aud from the configured audience falling back to iss, iat now, nbf
// iat−1, exp iat+TTL for the token's type, jti a fresh UUID.
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

// CreateToken serializes and signs claims with the first algorithm of the
// allow-list. It fails only for resolver or signing errors, never for
// claim content.
func (b *Backend) CreateToken(_ context.Context, claims signet.Claims, opts *signet.Options) (string, error) {
	method, err := signingMethod(opts)
	if err != nil {
		return "", err
	}

	key, err := opts.Key()
	if err != nil {
		return "", err
	}

	token := jwtlib.NewWithClaims(method, jwtlib.MapClaims(claims))
	for k, v := range opts.Headers {
		token.Header[k] = v
	}

	return token.SignedString(key)
}

// DecodeToken checks structure, algorithm allow-list, and signature, and
// returns the embedded claims without validating them; validation is
// VerifyClaims' job. Every parse failure maps to signet.ErrInvalidToken so
// callers cannot distinguish a bad signature from a malformed token. Only
// a missing resolver surfaces as its own error, since that is an
// operator mistake rather than attacker input.
func (b *Backend) DecodeToken(_ context.Context, token string, opts *signet.Options) (signet.Claims, error) {
	var resolverErr error
	parser := jwtlib.NewParser(
		jwtlib.WithValidMethods(opts.AllowedAlgorithms),
		jwtlib.WithoutClaimsValidation(),
	)

	parsed, err := parser.Parse(token, func(*jwtlib.Token) (any, error) {
		key, kerr := opts.Key()
		if kerr != nil {
			resolverErr = kerr
		}
		return key, kerr
	})
	if resolverErr != nil {
		return nil, resolverErr
	}
	if err != nil || !parsed.Valid {
		return nil, signet.ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, signet.ErrInvalidToken
	}

	return signet.Claims(mapClaims), nil
}

// VerifyClaims applies the standard temporal and issuer rules with the
// configured drift tolerance. See verifier.go for the per-claim rules.
func (b *Backend) VerifyClaims(_ context.Context, claims signet.Claims, opts *signet.Options) (signet.Claims, error) {
	if err := verifyStandardClaims(claims, opts, time.Now()); err != nil {
		return claims, err
	}
	return claims, nil
}

// Revoke is a no-op: a stateless signature cannot be invalidated without
// external storage. The claims come back unchanged.
func (b *Backend) Revoke(_ context.Context, claims signet.Claims, _ string, _ *signet.Options) (signet.Claims, error) {
	return claims, nil
}

// Refresh mints a replacement token preserving sub, aud, typ, and every
// custom key while re-rolling jti, iat, nbf, and exp. The engine has
// already verified the old token by the time this runs.
func (b *Backend) Refresh(ctx context.Context, token string, opts *signet.Options) (signet.TokenPair, error) {
	p := b.Peek(ctx, token)
	if p == nil {
		return signet.TokenPair{}, signet.ErrInvalidToken
	}
	return b.reissue(ctx, p.Claims, "", opts)
}

// Exchange is Refresh plus a typ transition. The old token must carry
// fromType; the new token is minted with toType.
func (b *Backend) Exchange(ctx context.Context, token, fromType, toType string, opts *signet.Options) (signet.TokenPair, error) {
	p := b.Peek(ctx, token)
	if p == nil {
		return signet.TokenPair{}, signet.ErrInvalidToken
	}
	if p.Claims.TokenType() != fromType {
		return signet.TokenPair{}, signet.ErrIncorrectTokenType
	}
	return b.reissue(ctx, p.Claims, toType, opts)
}

// reissue mints a replacement from already-peeked claims, so refresh and
// exchange parse the old token exactly once.
func (b *Backend) reissue(ctx context.Context, old signet.Claims, newType string, opts *signet.Options) (signet.TokenPair, error) {
	c := old.Clone()
	subject := c.Subject()
	for _, k := range []string{"jti", "iat", "nbf", "exp"} {
		delete(c, k)
	}
	if newType != "" {
		c["typ"] = newType
	}

	c, err := b.BuildClaims(ctx, nil, subject, c, opts)
	if err != nil {
		return signet.TokenPair{}, err
	}

	signed, err := b.CreateToken(ctx, c, opts)
	if err != nil {
		return signet.TokenPair{}, err
	}

	return signet.TokenPair{Token: signed, Claims: c}, nil
}

// Peek reads headers and claims without any verification, or nil when the
// token is structurally unreadable.
func (b *Backend) Peek(_ context.Context, token string) *signet.Peek {
	parser := jwtlib.NewParser()
	parsed, _, err := parser.ParseUnverified(token, jwtlib.MapClaims{})
	if err != nil {
		return nil
	}
	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil
	}
	return &signet.Peek{
		Headers: parsed.Header,
		Claims:  signet.Claims(mapClaims),
	}
}

func signingMethod(opts *signet.Options) (jwtlib.SigningMethod, error) {
	if len(opts.AllowedAlgorithms) == 0 {
		return nil, errors.New("empty algorithm allow-list")
	}
	method := jwtlib.GetSigningMethod(opts.AllowedAlgorithms[0])
	if method == nil {
		return nil, fmt.Errorf("unsupported signing algorithm %q", opts.AllowedAlgorithms[0])
	}
	return method, nil
}

func putNew(c signet.Claims, key string, value any) {
	if _, ok := c[key]; !ok {
		c[key] = value
	}
}
