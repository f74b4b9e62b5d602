// Package permission is an optional claim-enrichment add-on that encodes
// named permissions into compact per-group integer bitmasks under a
// single claim key. It is not part of the token lifecycle: applications
// call it from an Owner.BuildClaims hook on issuance and from their
// authorization layer after verification.
//
// Bit assignments are positional, so the registry must be built
// identically (same groups, same order) in every process that issues or
// reads the claim. Freeze the registry after startup to make accidental
// divergence loud.
package permission
