package signet

import "context"

type claimsContextKey struct{}

type resourceContextKey struct{}

// NewContext stores verified claims on a context. Request-handling
// middleware uses this to hand the verification result downstream; the
// engine itself never reads it.
func NewContext(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// FromContext returns claims previously stored with [NewContext].
func FromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(Claims)
	return claims, ok
}

// NewResourceContext stores the resolved resource on a context.
func NewResourceContext(ctx context.Context, resource any) context.Context {
	return context.WithValue(ctx, resourceContextKey{}, resource)
}

// ResourceFromContext returns a resource previously stored with
// [NewResourceContext].
func ResourceFromContext(ctx context.Context) (any, bool) {
	resource := ctx.Value(resourceContextKey{})
	return resource, resource != nil
}
