package onetime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/signet-auth/signet"
)

func testRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, ""), mr
}

func testOptions() *signet.Options {
	return &signet.Options{
		Issuer:     "signet-test",
		TokenType:  "magic",
		DefaultTTL: 10 * time.Minute,
	}
}

func issue(t *testing.T, b *Backend, subject string, claims signet.Claims) (string, signet.Claims) {
	t.Helper()

	built, err := b.BuildClaims(context.Background(), nil, subject, claims, testOptions())
	if err != nil {
		t.Fatalf("BuildClaims failed: %v", err)
	}
	token, err := b.CreateToken(context.Background(), built, testOptions())
	if err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}
	return token, built
}

func TestSingleUseConsumeOnce(t *testing.T) {
	store, _ := testRedisStore(t)
	b := New(store)

	token, built := issue(t, b, "u1", signet.Claims{"purpose": "login"})
	if token != built.ID() {
		t.Fatalf("token must be the record id: %q vs %q", token, built.ID())
	}

	claims, err := b.DecodeToken(context.Background(), token, testOptions())
	if err != nil {
		t.Fatalf("first decode failed: %v", err)
	}
	if claims.Subject() != "u1" || claims["purpose"] != "login" {
		t.Fatalf("claims did not round-trip: %v", claims)
	}

	if _, err := b.DecodeToken(context.Background(), token, testOptions()); !errors.Is(err, signet.ErrTokenNotFoundOrExpired) {
		t.Fatalf("second decode must fail with ErrTokenNotFoundOrExpired, got %v", err)
	}
}

func TestSingleUsePeekDoesNotConsume(t *testing.T) {
	store, _ := testRedisStore(t)
	b := New(store)

	token, _ := issue(t, b, "u1", nil)

	for i := 0; i < 3; i++ {
		if p := b.Peek(context.Background(), token); p == nil || p.Claims.Subject() != "u1" {
			t.Fatalf("peek %d failed: %+v", i, p)
		}
	}

	if _, err := b.DecodeToken(context.Background(), token, testOptions()); err != nil {
		t.Fatalf("token consumed by Peek: %v", err)
	}
}

func TestSingleUseRevokeBeforeUse(t *testing.T) {
	store, _ := testRedisStore(t)
	b := New(store)

	token, _ := issue(t, b, "u1", nil)

	if _, err := b.Revoke(context.Background(), nil, token, testOptions()); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if _, err := b.DecodeToken(context.Background(), token, testOptions()); !errors.Is(err, signet.ErrTokenNotFoundOrExpired) {
		t.Fatalf("revoked token still decodes: %v", err)
	}
	if _, err := b.Revoke(context.Background(), nil, token, testOptions()); !errors.Is(err, signet.ErrTokenNotFoundOrExpired) {
		t.Fatalf("double revoke must report not found, got %v", err)
	}
}

func TestSingleUseExpiry(t *testing.T) {
	store, mr := testRedisStore(t)
	b := New(store)

	token, _ := issue(t, b, "u1", nil)

	mr.FastForward(11 * time.Minute)

	if _, err := b.DecodeToken(context.Background(), token, testOptions()); !errors.Is(err, signet.ErrTokenNotFoundOrExpired) {
		t.Fatalf("expired token still decodes: %v", err)
	}
}

func TestSingleUseRefreshAndExchangeUnsupported(t *testing.T) {
	store, _ := testRedisStore(t)
	b := New(store)

	token, _ := issue(t, b, "u1", nil)

	if _, err := b.Refresh(context.Background(), token, testOptions()); !errors.Is(err, signet.ErrNotRefreshable) {
		t.Fatalf("expected ErrNotRefreshable, got %v", err)
	}
	if _, err := b.Exchange(context.Background(), token, "magic", "access", testOptions()); !errors.Is(err, signet.ErrNotExchangeable) {
		t.Fatalf("expected ErrNotExchangeable, got %v", err)
	}

	// The failed refresh/exchange must not have consumed the record.
	if _, err := b.DecodeToken(context.Background(), token, testOptions()); err != nil {
		t.Fatalf("record consumed by unsupported operation: %v", err)
	}
}

func TestSingleUseConcurrentConsume(t *testing.T) {
	store, _ := testRedisStore(t)
	b := New(store)

	token, _ := issue(t, b, "u1", nil)

	const racers = 16
	var wg sync.WaitGroup
	results := make(chan error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.DecodeToken(context.Background(), token, testOptions())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, signet.ErrTokenNotFoundOrExpired):
		default:
			t.Fatalf("unexpected consume error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winning consumer, got %d", wins)
	}
}

func TestCreateTokenRequiresID(t *testing.T) {
	store, _ := testRedisStore(t)
	b := New(store)

	_, err := b.CreateToken(context.Background(), signet.Claims{"sub": "u1"}, testOptions())
	var claimErr *signet.ClaimError
	if !errors.As(err, &claimErr) || claimErr.Key != "jti" {
		t.Fatalf("expected claim error for jti, got %v", err)
	}
}

func TestRedisStoreRejectsPastExpiry(t *testing.T) {
	store, _ := testRedisStore(t)

	err := store.Save(context.Background(), "id", signet.Claims{"sub": "u1"}, time.Now().Add(-time.Minute))
	if !errors.Is(err, signet.ErrTokenNotFoundOrExpired) {
		t.Fatalf("expected rejection for past expiry, got %v", err)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, "")

	if err := store.Save(context.Background(), "id", signet.Claims{"sub": "u1"}, time.Time{}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	mr.Close()

	if _, err := store.Consume(context.Background(), "id"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
