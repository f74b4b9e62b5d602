package signet

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStaticKeyResolve(t *testing.T) {
	key, err := StaticKey("secret").Resolve(nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if string(key.([]byte)) != "secret" {
		t.Fatalf("unexpected key %v", key)
	}

	if _, err := StaticKey(nil).Resolve(nil); !errors.Is(err, ErrNoResolver) {
		t.Fatalf("expected ErrNoResolver for empty key, got %v", err)
	}
}

func TestFileKeyResolverLoadsAndReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "signing.key")
	if err := os.WriteFile(path, []byte("key-v1"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}

	r, err := NewFileKeyResolver(path)
	if err != nil {
		t.Fatalf("NewFileKeyResolver failed: %v", err)
	}
	defer r.Close()

	key, err := r.Resolve(nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if string(key.([]byte)) != "key-v1" {
		t.Fatalf("unexpected initial key %q", key)
	}

	if err := os.WriteFile(path, []byte("key-v2"), 0o600); err != nil {
		t.Fatalf("rotate key file: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for {
		key, err := r.Resolve(nil)
		if err == nil && string(key.([]byte)) == "key-v2" {
			return
		}
		select {
		case <-deadline:
			t.Fatal("rotated key never observed")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestFileKeyResolverRejectsMissingOrEmptyFile(t *testing.T) {
	dir := t.TempDir()

	if _, err := NewFileKeyResolver(filepath.Join(dir, "absent.key")); err == nil {
		t.Fatal("expected error for missing file")
	}

	empty := filepath.Join(dir, "empty.key")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatalf("write empty file: %v", err)
	}
	if _, err := NewFileKeyResolver(empty); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestFileKeyResolverCloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "signing.key")
	if err := os.WriteFile(path, []byte("key"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}

	r, err := NewFileKeyResolver(path)
	if err != nil {
		t.Fatalf("NewFileKeyResolver failed: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}
