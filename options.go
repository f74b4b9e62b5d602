package signet

import "time"

// Options is the per-call view of the engine's configuration: the instance
// [Config] resolved first, then call-site [Option] overrides applied on
// top. Backends and owner hooks receive the same *Options value for the
// duration of one lifecycle call and must treat it as read-only.
type Options struct {
	Issuer            string
	VerifyIssuer      bool
	Audience          string
	TokenType         string
	AllowedAlgorithms []string
	AllowedDrift      time.Duration
	MaxAge            time.Duration

	// DefaultTTL and TokenTTL drive expiry defaults: TokenTTL[typ] wins,
	// then DefaultTTL. TTL is only set by WithTTL and forces an expiry
	// recompute even when the caller supplied exp.
	DefaultTTL time.Duration
	TokenTTL   map[string]time.Duration
	TTL        time.Duration
	TTLForced  bool

	// Headers carries extra header parameters for schemes that have a
	// header section (the JWT backend copies them into the JOSE header).
	Headers map[string]any

	Resolver KeyResolver
}

// Option overrides one setting for a single engine call.
type Option func(*Options)

// WithIssuer overrides the issuer used for the iss default and for issuer
// verification.
func WithIssuer(iss string) Option {
	return func(o *Options) { o.Issuer = iss }
}

// WithAudience overrides the aud default for issuance.
func WithAudience(aud string) Option {
	return func(o *Options) { o.Audience = aud }
}

// WithTokenType overrides the typ default for issuance ("access" when
// neither config nor call says otherwise).
func WithTokenType(typ string) Option {
	return func(o *Options) { o.TokenType = typ }
}

// WithTTL forces the token lifetime for this call. Unlike the configured
// TTLs it recomputes exp even when the claim set already carries one.
func WithTTL(d time.Duration) Option {
	return func(o *Options) {
		o.TTL = d
		o.TTLForced = true
	}
}

// WithResolver overrides the key resolver for this call.
func WithResolver(r KeyResolver) Option {
	return func(o *Options) { o.Resolver = r }
}

// WithKey is shorthand for WithResolver(StaticKey(key)).
func WithKey(key []byte) Option {
	return WithResolver(StaticKey(key))
}

// WithAlgorithms overrides the algorithm allow-list; the first entry is
// the signing default.
func WithAlgorithms(algs ...string) Option {
	return func(o *Options) { o.AllowedAlgorithms = algs }
}

// WithDrift overrides the allowed clock drift for temporal claim checks.
func WithDrift(d time.Duration) Option {
	return func(o *Options) { o.AllowedDrift = d }
}

// WithMaxAge overrides the max_age window applied to auth_time.
func WithMaxAge(d time.Duration) Option {
	return func(o *Options) { o.MaxAge = d }
}

// WithHeader adds one header parameter for issuance.
func WithHeader(key string, value any) Option {
	return func(o *Options) {
		if o.Headers == nil {
			o.Headers = map[string]any{}
		}
		o.Headers[key] = value
	}
}

// Key resolves the signing/verifying key for this call, or ErrNoResolver
// when no key material was configured.
func (o *Options) Key() (any, error) {
	if o == nil || o.Resolver == nil {
		return nil, ErrNoResolver
	}
	return o.Resolver.Resolve(o)
}

// TTLFor returns the effective lifetime for a token of the given type: the
// forced per-call TTL, the per-type TTL, or the default, in that order. A
// zero result means the token gets no expiry default.
func (o *Options) TTLFor(tokenType string) time.Duration {
	if o.TTLForced {
		return o.TTL
	}
	if d, ok := o.TokenTTL[tokenType]; ok {
		return d
	}
	return o.DefaultTTL
}
