// Package jwt is the default signet backend: signed compact tokens with
// the standard registered claims, built on github.com/golang-jwt/jwt/v5.
//
// Signature verification and claim validation are deliberately separated.
// The library parser only checks structure, algorithm allow-list, and
// signature; every temporal and issuer rule lives in this package's
// standard claim verifier so drift tolerance behaves identically across
// claims and so decode failures collapse into a single invalid-token
// error kind without leaking which check tripped.
//
// JWTs are stateless, so Revoke is a documented no-op here. Deployments
// that need revocable or single-use semantics use the onetime backend.
package jwt
