package onetime

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/signet-auth/signet"
)

func testSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "tokens.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestSQLiteStoreSaveConsume(t *testing.T) {
	store := testSQLiteStore(t)
	ctx := context.Background()

	claims := signet.Claims{"sub": "u1", "typ": "magic", "jti": "id-1"}
	if err := store.Save(ctx, "id-1", claims, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Consume(ctx, "id-1")
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if got.Subject() != "u1" || got.TokenType() != "magic" {
		t.Fatalf("claims did not round-trip: %v", got)
	}

	if _, err := store.Consume(ctx, "id-1"); !errors.Is(err, signet.ErrTokenNotFoundOrExpired) {
		t.Fatalf("second consume must fail, got %v", err)
	}
}

func TestSQLiteStorePeekAndDelete(t *testing.T) {
	store := testSQLiteStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "id-1", signet.Claims{"sub": "u1"}, time.Time{}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if got, err := store.Peek(ctx, "id-1"); err != nil || got.Subject() != "u1" {
		t.Fatalf("Peek failed: %v %v", got, err)
	}
	// Peek must not consume.
	if _, err := store.Peek(ctx, "id-1"); err != nil {
		t.Fatalf("second Peek failed: %v", err)
	}

	if err := store.Delete(ctx, "id-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, "id-1"); !errors.Is(err, signet.ErrTokenNotFoundOrExpired) {
		t.Fatalf("double delete must report not found, got %v", err)
	}
}

func TestSQLiteStoreExpiry(t *testing.T) {
	store := testSQLiteStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "past", signet.Claims{"sub": "u1"}, time.Now().Add(-time.Minute)); !errors.Is(err, signet.ErrTokenNotFoundOrExpired) {
		t.Fatalf("expected rejection for past expiry, got %v", err)
	}

	if err := store.Save(ctx, "short", signet.Claims{"sub": "u1"}, time.Now().Add(150*time.Millisecond)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	// Expiry has unix-second granularity; sleep comfortably past it.
	time.Sleep(2100 * time.Millisecond)

	if _, err := store.Peek(ctx, "short"); !errors.Is(err, signet.ErrTokenNotFoundOrExpired) {
		t.Fatalf("expired record still peekable: %v", err)
	}
	// The lazy delete above removed the row entirely.
	if _, err := store.Consume(ctx, "short"); !errors.Is(err, signet.ErrTokenNotFoundOrExpired) {
		t.Fatalf("expired record still consumable: %v", err)
	}
}

func TestSQLiteStoreSaveOverwrites(t *testing.T) {
	store := testSQLiteStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "id-1", signet.Claims{"v": "old"}, time.Time{}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, "id-1", signet.Claims{"v": "new"}, time.Time{}); err != nil {
		t.Fatalf("overwrite Save failed: %v", err)
	}

	got, err := store.Consume(ctx, "id-1")
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if got["v"] != "new" {
		t.Fatalf("expected overwritten record, got %v", got)
	}
}

func TestSQLiteStoreConcurrentConsume(t *testing.T) {
	store := testSQLiteStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "raced", signet.Claims{"sub": "u1"}, time.Time{}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	const racers = 8
	var wg sync.WaitGroup
	results := make(chan error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Consume(ctx, "raced")
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

func TestSQLiteStoreWithBackend(t *testing.T) {
	store := testSQLiteStore(t)
	b := New(store)

	token, _ := issue(t, b, "u1", signet.Claims{"purpose": "reset"})

	claims, err := b.DecodeToken(context.Background(), token, testOptions())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if claims["purpose"] != "reset" {
		t.Fatalf("claims did not round-trip: %v", claims)
	}
	if _, err := b.DecodeToken(context.Background(), token, testOptions()); !errors.Is(err, signet.ErrTokenNotFoundOrExpired) {
		t.Fatalf("second decode must fail, got %v", err)
	}
}
