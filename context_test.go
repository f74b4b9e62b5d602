package signet

import (
	"context"
	"testing"
)

func TestClaimsContextRoundTrip(t *testing.T) {
	ctx := context.Background()

	if _, ok := FromContext(ctx); ok {
		t.Fatal("empty context must not carry claims")
	}

	claims := Claims{"sub": "u1"}
	ctx = NewContext(ctx, claims)

	got, ok := FromContext(ctx)
	if !ok || got.Subject() != "u1" {
		t.Fatalf("claims did not round-trip: %v %v", got, ok)
	}
}

func TestResourceContextRoundTrip(t *testing.T) {
	ctx := context.Background()

	if _, ok := ResourceFromContext(ctx); ok {
		t.Fatal("empty context must not carry a resource")
	}

	type user struct{ ID string }
	ctx = NewResourceContext(ctx, &user{ID: "u1"})

	got, ok := ResourceFromContext(ctx)
	if !ok || got.(*user).ID != "u1" {
		t.Fatalf("resource did not round-trip: %v %v", got, ok)
	}
}
