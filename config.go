package signet

import (
	"errors"
	"time"
)

// Config is the static configuration owned by one [Engine] instance. It is
// constructed once, validated by [Builder.Build], and treated as immutable
// afterwards; there is no process-wide lookup. Call-site [Option] values
// override these settings per call.
type Config struct {
	// Issuer fills the iss default on issuance and, when VerifyIssuer is
	// set, is matched exactly against the iss claim on verification.
	Issuer       string
	VerifyIssuer bool

	// Audience fills the aud default; empty falls back to Issuer.
	Audience string

	// TokenType is the typ default for issued tokens ("access").
	TokenType string

	// Secret is the static signing key. For anything beyond a fixed HMAC
	// secret, set Resolver instead; Resolver wins when both are present.
	Secret   []byte
	Resolver KeyResolver

	// AllowedAlgorithms is the ordered algorithm allow-list; the first
	// entry is the signing default. Defaults to HS512 only.
	AllowedAlgorithms []string

	// DefaultTTL is the expiry default for token types without an entry
	// in TokenTTL. Defaults to four weeks.
	DefaultTTL time.Duration
	TokenTTL   map[string]time.Duration

	// AllowedDrift absorbs clock skew between issuer and verifier. It is
	// applied symmetrically around each temporal claim. Defaults to zero.
	AllowedDrift time.Duration

	// MaxAge bounds the age of the authentication event recorded in
	// auth_time. Zero disables the check.
	MaxAge time.Duration

	Audit   AuditConfig
	Metrics MetricsConfig
}

// AuditConfig controls the async audit event dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull prefers dropping events over blocking the lifecycle call
	// when the buffer is saturated. Dropped counts are observable via
	// Engine.AuditDropped.
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		TokenType:         "access",
		AllowedAlgorithms: []string{"HS512"},
		DefaultTTL:        4 * 7 * 24 * time.Hour,
		Audit: AuditConfig{
			BufferSize: 256,
			DropIfFull: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.AllowedAlgorithms != nil {
		out.AllowedAlgorithms = append([]string(nil), cfg.AllowedAlgorithms...)
	}
	if cfg.TokenTTL != nil {
		out.TokenTTL = make(map[string]time.Duration, len(cfg.TokenTTL))
		for k, v := range cfg.TokenTTL {
			out.TokenTTL[k] = v
		}
	}
	if cfg.Secret != nil {
		out.Secret = append([]byte(nil), cfg.Secret...)
	}
	return out
}

func validateConfig(cfg *Config) error {
	if cfg.TokenType == "" {
		cfg.TokenType = "access"
	}
	if len(cfg.AllowedAlgorithms) == 0 {
		cfg.AllowedAlgorithms = []string{"HS512"}
	}
	for _, alg := range cfg.AllowedAlgorithms {
		if alg == "" || alg == "none" {
			return errors.New("invalid algorithm allow-list")
		}
	}
	if cfg.DefaultTTL < 0 {
		return errors.New("invalid DefaultTTL configuration")
	}
	for typ, ttl := range cfg.TokenTTL {
		if typ == "" || ttl < 0 {
			return errors.New("invalid TokenTTL configuration")
		}
	}
	if cfg.AllowedDrift < 0 {
		return errors.New("invalid AllowedDrift configuration")
	}
	if cfg.MaxAge < 0 {
		return errors.New("invalid MaxAge configuration")
	}
	if cfg.VerifyIssuer && cfg.Issuer == "" {
		return errors.New("VerifyIssuer requires a configured Issuer")
	}
	if cfg.Resolver == nil && len(cfg.Secret) > 0 {
		cfg.Resolver = StaticKey(cfg.Secret)
	}
	if cfg.Audit.Enabled && cfg.Audit.BufferSize <= 0 {
		cfg.Audit.BufferSize = 256
	}
	return nil
}

// options resolves the instance config plus call-site overrides into the
// per-call view handed to backends and owner hooks.
func (cfg *Config) options(opts []Option) *Options {
	o := &Options{
		Issuer:            cfg.Issuer,
		VerifyIssuer:      cfg.VerifyIssuer,
		Audience:          cfg.Audience,
		TokenType:         cfg.TokenType,
		AllowedAlgorithms: cfg.AllowedAlgorithms,
		AllowedDrift:      cfg.AllowedDrift,
		MaxAge:            cfg.MaxAge,
		DefaultTTL:        cfg.DefaultTTL,
		TokenTTL:          cfg.TokenTTL,
		Resolver:          cfg.Resolver,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}
