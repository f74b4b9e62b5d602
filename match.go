package signet

// matchLiteralClaims validates caller-supplied expected claims against a
// decoded claim set. For every key in toCheck:
//
//   - the key must exist in claims;
//   - collection vs collection passes when the intersection is non-empty;
//   - scalar vs collection passes when the scalar is a member;
//   - anything else requires exact (numeric-tolerant) equality.
//
// The first failing key aborts with a *ClaimError naming that key.
//
// The any-overlap rule for two collections is permissive on purpose: it
// mirrors aud semantics where a token minted for several audiences is
// acceptable to a verifier expecting any one of them. Callers needing
// all-of semantics must check inside Owner.VerifyClaims.
func matchLiteralClaims(claims, toCheck Claims) error {
	for key, want := range toCheck {
		got, ok := claims[key]
		if !ok {
			return &ClaimError{Key: key}
		}
		if !claimValueMatches(got, want) {
			return &ClaimError{Key: key}
		}
	}
	return nil
}

func claimValueMatches(got, want any) bool {
	gotList, gotIsList := asList(got)
	wantList, wantIsList := asList(want)

	switch {
	case gotIsList && wantIsList:
		for _, g := range gotList {
			for _, w := range wantList {
				if claimValuesEqual(g, w) {
					return true
				}
			}
		}
		return false
	case gotIsList:
		for _, g := range gotList {
			if claimValuesEqual(g, want) {
				return true
			}
		}
		return false
	case wantIsList:
		for _, w := range wantList {
			if claimValuesEqual(got, w) {
				return true
			}
		}
		return false
	default:
		return claimValuesEqual(got, want)
	}
}
