package internaldefs

import (
	"github.com/signet-auth/signet"
)

// CounterDef binds one engine counter to its stable exported name.
type CounterDef struct {
	ID   signet.MetricID
	Name string
	Help string
}

// HistogramDef binds one engine histogram to its stable exported name.
type HistogramDef struct {
	ID   signet.MetricID
	Name string
	Help string
}

// CounterDefs enumerates every exported counter. Order is the render
// order of the text exposition format; names are append-only.
var CounterDefs = []CounterDef{
	{ID: signet.MetricIssueSuccess, Name: "signet_issue_success_total", Help: "Successfully issued tokens."},
	{ID: signet.MetricIssueFailure, Name: "signet_issue_failure_total", Help: "Failed issuance attempts."},
	{ID: signet.MetricVerifySuccess, Name: "signet_verify_success_total", Help: "Tokens that passed the full decode path."},
	{ID: signet.MetricVerifyFailure, Name: "signet_verify_failure_total", Help: "Verification failures of any kind."},
	{ID: signet.MetricTokenExpired, Name: "signet_token_expired_total", Help: "Verifications rejected on exp or max_age."},
	{ID: signet.MetricTokenNotYetValid, Name: "signet_token_not_yet_valid_total", Help: "Verifications rejected on nbf."},
	{ID: signet.MetricSingleUseReplay, Name: "signet_single_use_replay_total", Help: "Single-use tokens presented after consumption."},
	{ID: signet.MetricRefreshSuccess, Name: "signet_refresh_success_total", Help: "Completed refreshes."},
	{ID: signet.MetricRefreshFailure, Name: "signet_refresh_failure_total", Help: "Rejected refreshes."},
	{ID: signet.MetricExchangeSuccess, Name: "signet_exchange_success_total", Help: "Completed type exchanges."},
	{ID: signet.MetricExchangeFailure, Name: "signet_exchange_failure_total", Help: "Rejected type exchanges."},
	{ID: signet.MetricRevokeSuccess, Name: "signet_revoke_success_total", Help: "Completed revocations."},
	{ID: signet.MetricRevokeFailure, Name: "signet_revoke_failure_total", Help: "Failed revocations."},
}

// HistogramDefs enumerates every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: signet.MetricVerifyLatency, Name: "signet_verify_latency_seconds", Help: "DecodeAndVerify latency histogram."},
}

// HistogramBounds are the upper bounds of the engine's fixed buckets, in
// seconds, as rendered into le labels.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix mirrors HistogramBounds with characters legal in
// instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket count, so a disabled histogram renders as zeros.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// both exposition formats expect; the last entry is the total count.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
