// Package signet is a token lifecycle engine: it issues, verifies,
// refreshes, exchanges, and revokes opaque bearer tokens that carry a
// claim set identifying an authenticated subject.
//
// signet does not touch transport. HTTP middleware, cookie handling, and
// header extraction are external collaborators that hand a token string to
// an [Engine] and store the resulting [Claims] wherever they see fit.
//
// # Architecture boundaries
//
// signet is the public surface. It exposes [Engine], [Builder], [Config],
// the [Backend] and [Owner] contracts, and value types (Claims, TokenPair,
// Peek). Concrete token schemes live in subpackages: jwt (signed compact
// tokens via golang-jwt) and onetime (single-use tokens backed by Redis or
// SQLite). Audit event plumbing lives under internal/audit.
//
// # What this package must NOT do
//
//   - Implement a signature algorithm. Signing is delegated to the backend
//     and its injected key material ([KeyResolver]).
//   - Perform network or storage I/O of its own. All I/O happens inside an
//     injected [Backend] or [Owner] hook.
//   - Keep state between calls. Engine methods are pure orchestration over
//     immutable configuration and are safe for concurrent use.
//
// # Lifecycle contract
//
// Issuance runs subject resolution, backend claim defaults, the owner's
// claim enrichment hook, signing, and the owner's post-sign hook, in that
// order; the first error aborts the call. Verification runs decode, the
// literal claim matcher, backend standard-claim checks, the owner's
// verification hook, and the owner's on-verify hook. Each stage
// short-circuits on the first error and later stages are never attempted.
package signet
