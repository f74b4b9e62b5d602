package signet

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Engine is the lifecycle orchestrator. It owns no token semantics of its
// own: it sequences the [Backend] and [Owner] stages in a fixed order,
// short-circuits on the first error, and forwards that error to the
// caller annotated with the stage that produced it (diagnostics only; the
// underlying error remains reachable through errors.Is/As).
//
// Engines are immutable after [Builder.Build] and safe for concurrent use.
type Engine struct {
	config  Config
	backend Backend
	owner   Owner
	audit   *auditDispatcher
	metrics *Metrics
}

// Close drains and stops the audit dispatcher. The engine remains usable
// for token operations afterwards; further audit events are discarded.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// AuditDropped reports how many audit events were discarded because the
// dispatch buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all engine metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// EncodeAndSign issues a token for the given resource. The claim build
// runs in fixed order: subject resolution, backend defaults, the owner's
// enrichment hook, signing, then the owner's post-sign hook. An error at
// any stage aborts the call; in particular a post-sign hook failure means
// the caller must discard the token even though it was validly signed —
// there is no partial success.
func (e *Engine) EncodeAndSign(ctx context.Context, resource any, claims Claims, opts ...Option) (string, Claims, error) {
	if e == nil {
		return "", nil, ErrEngineNotReady
	}
	o := e.config.options(opts)

	token, built, err := e.encodeAndSign(ctx, resource, claims, o)
	e.countIssue(err)
	e.emit(ctx, AuditTokenIssued, built, err)
	if err != nil {
		return "", nil, err
	}
	return token, built, nil
}

func (e *Engine) encodeAndSign(ctx context.Context, resource any, claims Claims, o *Options) (string, Claims, error) {
	c := NormalizeClaims(claims)

	subject, err := e.owner.SubjectForToken(resource, c)
	if err != nil {
		return "", nil, fmt.Errorf("subject resolution: %w", err)
	}

	c, err = e.backend.BuildClaims(ctx, resource, subject, c, o)
	if err != nil {
		return "", nil, fmt.Errorf("backend claim build: %w", err)
	}

	c, err = e.owner.BuildClaims(c, resource, o)
	if err != nil {
		return "", c, fmt.Errorf("owner claim build: %w", err)
	}

	token, err := e.backend.CreateToken(ctx, c, o)
	if err != nil {
		return "", c, fmt.Errorf("token creation: %w", err)
	}

	if err := e.owner.AfterEncodeAndSign(resource, c, token, o); err != nil {
		return "", c, fmt.Errorf("post-sign hook: %w", err)
	}

	return token, c, nil
}

// DecodeAndVerify validates a token and returns its claims. The decode
// path runs in fixed order: backend decode, literal claim matching against
// claimsToCheck, backend standard-claim verification, the owner's
// verification hook, and finally the owner's on-verify hook, whose result
// is what the caller receives. A panic inside the backend decode is
// contained and surfaces as ErrInvalidToken.
func (e *Engine) DecodeAndVerify(ctx context.Context, token string, claimsToCheck Claims, opts ...Option) (Claims, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	o := e.config.options(opts)

	start := time.Now()
	claims, err := e.decodeAndVerify(ctx, token, claimsToCheck, o)
	e.metrics.Observe(MetricVerifyLatency, time.Since(start))
	e.countVerify(err)
	e.emit(ctx, AuditTokenVerified, claims, err)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (e *Engine) decodeAndVerify(ctx context.Context, token string, claimsToCheck Claims, o *Options) (Claims, error) {
	check := NormalizeClaims(claimsToCheck)

	claims, err := e.decodeToken(ctx, token, o)
	if err != nil {
		return nil, err
	}

	if err := matchLiteralClaims(claims, check); err != nil {
		return claims, err
	}

	claims, err = e.backend.VerifyClaims(ctx, claims, o)
	if err != nil {
		return claims, err
	}

	if err := e.owner.VerifyClaims(claims, o); err != nil {
		return claims, fmt.Errorf("owner verification: %w", err)
	}

	claims, err = e.owner.OnVerify(claims, token, o)
	if err != nil {
		return claims, fmt.Errorf("on-verify hook: %w", err)
	}

	return claims, nil
}

// decodeToken contains backend panics: a malformed token must surface as a
// tagged error, never as a fault propagating out of the engine.
func (e *Engine) decodeToken(ctx context.Context, token string, o *Options) (claims Claims, err error) {
	defer func() {
		if recover() != nil {
			claims, err = nil, ErrInvalidToken
		}
	}()
	return e.backend.DecodeToken(ctx, token, o)
}

// ResourceFromToken verifies a token and maps its claims back to the
// application resource via the owner.
func (e *Engine) ResourceFromToken(ctx context.Context, token string, claimsToCheck Claims, opts ...Option) (any, Claims, error) {
	if e == nil {
		return nil, nil, ErrEngineNotReady
	}

	claims, err := e.DecodeAndVerify(ctx, token, claimsToCheck, opts...)
	if err != nil {
		return nil, nil, err
	}

	resource, err := e.owner.ResourceFromClaims(claims)
	if err != nil {
		return nil, claims, fmt.Errorf("resource resolution: %w", err)
	}

	return resource, claims, nil
}

// Refresh verifies the old token in full, asks the backend for a
// replacement, and gives the owner's OnRefresh hook the final say. An
// OnRefresh error rejects the refresh even though the backend already
// minted the new token; the caller must discard it.
func (e *Engine) Refresh(ctx context.Context, token string, opts ...Option) (TokenPair, TokenPair, error) {
	if e == nil {
		return TokenPair{}, TokenPair{}, ErrEngineNotReady
	}
	o := e.config.options(opts)

	old, renewed, err := e.refresh(ctx, token, o)
	e.count(err, MetricRefreshSuccess, MetricRefreshFailure)
	e.emit(ctx, AuditTokenRefreshed, renewed.Claims, err)
	if err != nil {
		return TokenPair{}, TokenPair{}, err
	}
	return old, renewed, nil
}

func (e *Engine) refresh(ctx context.Context, token string, o *Options) (TokenPair, TokenPair, error) {
	oldClaims, err := e.decodeAndVerify(ctx, token, nil, o)
	if err != nil {
		return TokenPair{}, TokenPair{}, err
	}
	old := TokenPair{Token: token, Claims: oldClaims}

	renewed, err := e.backend.Refresh(ctx, token, o)
	if err != nil {
		return old, TokenPair{}, err
	}

	old, renewed, err = e.owner.OnRefresh(old, renewed, o)
	if err != nil {
		return old, renewed, fmt.Errorf("on-refresh hook: %w", err)
	}

	return old, renewed, nil
}

// Exchange verifies the old token in full, asserts its typ matches
// fromType, and mints a replacement carrying toType. The owner's
// OnExchange hook can reject the exchange after the fact, exactly like
// OnRefresh.
func (e *Engine) Exchange(ctx context.Context, token, fromType, toType string, opts ...Option) (TokenPair, TokenPair, error) {
	if e == nil {
		return TokenPair{}, TokenPair{}, ErrEngineNotReady
	}
	o := e.config.options(opts)

	old, exchanged, err := e.exchange(ctx, token, fromType, toType, o)
	e.count(err, MetricExchangeSuccess, MetricExchangeFailure)
	e.emit(ctx, AuditTokenExchanged, exchanged.Claims, err)
	if err != nil {
		return TokenPair{}, TokenPair{}, err
	}
	return old, exchanged, nil
}

func (e *Engine) exchange(ctx context.Context, token, fromType, toType string, o *Options) (TokenPair, TokenPair, error) {
	oldClaims, err := e.decodeAndVerify(ctx, token, nil, o)
	if err != nil {
		return TokenPair{}, TokenPair{}, err
	}
	old := TokenPair{Token: token, Claims: oldClaims}

	exchanged, err := e.backend.Exchange(ctx, token, fromType, toType, o)
	if err != nil {
		return old, TokenPair{}, err
	}

	old, exchanged, err = e.owner.OnExchange(old, exchanged, o)
	if err != nil {
		return old, exchanged, fmt.Errorf("on-exchange hook: %w", err)
	}

	return old, exchanged, nil
}

// Revoke invalidates a token where the backend supports it. The claims are
// recovered via Peek rather than verification so revocation keeps working
// on an already-expired token.
func (e *Engine) Revoke(ctx context.Context, token string, opts ...Option) (Claims, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	o := e.config.options(opts)

	claims, err := e.revoke(ctx, token, o)
	e.count(err, MetricRevokeSuccess, MetricRevokeFailure)
	e.emit(ctx, AuditTokenRevoked, claims, err)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (e *Engine) revoke(ctx context.Context, token string, o *Options) (Claims, error) {
	var claims Claims
	if p := e.backend.Peek(ctx, token); p != nil {
		claims = p.Claims
	}

	claims, err := e.backend.Revoke(ctx, claims, token, o)
	if err != nil {
		return claims, err
	}

	claims, err = e.owner.OnRevoke(claims, token, o)
	if err != nil {
		return claims, fmt.Errorf("on-revoke hook: %w", err)
	}

	return claims, nil
}

// Peek reads a token's structural contents without verification. Nil means
// the token is unreadable. Never authorize anything based on a Peek.
func (e *Engine) Peek(ctx context.Context, token string) *Peek {
	if e == nil {
		return nil
	}
	return e.backend.Peek(ctx, token)
}

func (e *Engine) count(err error, success, failure MetricID) {
	if err != nil {
		e.metrics.Inc(failure)
		return
	}
	e.metrics.Inc(success)
}

func (e *Engine) countIssue(err error) {
	e.count(err, MetricIssueSuccess, MetricIssueFailure)
}

func (e *Engine) countVerify(err error) {
	e.count(err, MetricVerifySuccess, MetricVerifyFailure)
	switch {
	case err == nil:
	case errors.Is(err, ErrTokenExpired):
		e.metrics.Inc(MetricTokenExpired)
	case errors.Is(err, ErrTokenNotYetValid):
		e.metrics.Inc(MetricTokenNotYetValid)
	case errors.Is(err, ErrTokenNotFoundOrExpired):
		e.metrics.Inc(MetricSingleUseReplay)
	}
}

func (e *Engine) emit(ctx context.Context, eventType string, claims Claims, err error) {
	if e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		Success:   err == nil,
	}
	if claims != nil {
		event.Subject = claims.Subject()
		event.TokenType = claims.TokenType()
		event.TokenID = claims.ID()
	}
	if err != nil {
		event.Error = err.Error()
	}

	e.audit.Emit(ctx, event)
}
