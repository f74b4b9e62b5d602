package jwt

import (
	"time"

	"github.com/signet-auth/signet"
)

// verifyStandardClaims applies the per-claim rules for iss, nbf, exp, and
// auth_time. Claims are evaluated independently — every present standard
// claim is checked even after one has failed — and the first failure in
// the fixed order below is returned. Unknown keys always pass: the
// verifier is additive and must not reject standard-looking claims it
// does not know.
//
// Drift is a single non-negative duration applied symmetrically around the
// claim's timestamp; it absorbs clock skew between the issuer and the
// verifier process.
func verifyStandardClaims(claims signet.Claims, opts *signet.Options, now time.Time) error {
	var firstErr error
	record := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	drift := opts.AllowedDrift

	if opts.VerifyIssuer && opts.Issuer != "" {
		if iss, _ := claims["iss"].(string); iss != opts.Issuer {
			record(signet.ErrInvalidIssuer)
		}
	}

	if v, ok := claims["nbf"]; ok && v != nil {
		nbf, valid := signet.NumericDate(v)
		switch {
		case !valid:
			record(&signet.ClaimError{Key: "nbf"})
		case withinDrift(now, nbf, drift) || !nbf.After(now):
		default:
			record(signet.ErrTokenNotYetValid)
		}
	}

	if v, ok := claims["exp"]; ok && v != nil {
		exp, valid := signet.NumericDate(v)
		switch {
		case !valid:
			record(&signet.ClaimError{Key: "exp"})
		case withinDrift(now, exp, drift) || !exp.Before(now):
		default:
			record(signet.ErrTokenExpired)
		}
	}

	if opts.MaxAge > 0 {
		if v, ok := claims["auth_time"]; ok && v != nil {
			authTime, valid := signet.NumericDate(v)
			switch {
			case !valid:
				record(&signet.ClaimError{Key: "auth_time"})
			default:
				deadline := authTime.Add(opts.MaxAge)
				if !withinDrift(now, deadline, drift) && deadline.Before(now) {
					record(signet.ErrTokenExpired)
				}
			}
		}
	}

	return firstErr
}

func withinDrift(now, ts time.Time, drift time.Duration) bool {
	if drift <= 0 {
		return false
	}
	diff := now.Sub(ts)
	if diff < 0 {
		diff = -diff
	}
	return diff <= drift
}
