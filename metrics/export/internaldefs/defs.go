package internaldefs

import (
	authward "github.com/authward/authward"
)

// CounterDef binds one engine counter to its stable exported name.
type CounterDef struct {
	ID   authward.MetricID
	Name string
	Help string
}

// HistogramDef binds one engine histogram to its stable exported name.
type HistogramDef struct {
	ID   authward.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter. Both exporters iterate this
// table so their metric names never drift apart.
var CounterDefs = []CounterDef{
	{ID: authward.MetricLoginSuccess, Name: "authward_login_success_total", Help: "Successful login attempts."},
	{ID: authward.MetricLoginFailure, Name: "authward_login_failure_total", Help: "Failed login attempts."},
	{ID: authward.MetricRegisterSuccess, Name: "authward_register_success_total", Help: "Successful registrations."},
	{ID: authward.MetricRegisterDuplicate, Name: "authward_register_duplicate_total", Help: "Registrations rejected for a taken identifier."},
	{ID: authward.MetricTokenPairIssued, Name: "authward_token_pair_issued_total", Help: "Issued access/refresh pairs across all flows."},
	{ID: authward.MetricRefreshSuccess, Name: "authward_refresh_success_total", Help: "Completed refresh rotations."},
	{ID: authward.MetricRefreshFailure, Name: "authward_refresh_failure_total", Help: "Rejected refresh attempts other than reuse."},
	{ID: authward.MetricRefreshReuseDetected, Name: "authward_refresh_reuse_detected_total", Help: "Replays of already-spent refresh tokens."},
	{ID: authward.MetricLogout, Name: "authward_logout_total", Help: "Single-token logout operations."},
	{ID: authward.MetricLogoutAll, Name: "authward_logout_all_total", Help: "Logout-everywhere operations."},
	{ID: authward.MetricPurgeDeleted, Name: "authward_purge_deleted_total", Help: "Expired token records removed by maintenance sweeps."},
	{ID: authward.MetricValidateSuccess, Name: "authward_validate_success_total", Help: "Access tokens that validated."},
	{ID: authward.MetricValidateFailure, Name: "authward_validate_failure_total", Help: "Access tokens rejected by validation."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: authward.MetricValidateLatency, Name: "authward_validate_latency_seconds", Help: "Access token validation latency."},
}

// HistogramBounds are the upper bucket bounds in seconds, matching the
// engine's validation latency buckets.
var HistogramBounds = []string{
	"0.00005",
	"0.0001",
	"0.00025",
	"0.0005",
	"0.001",
	"0.0025",
	"0.005",
	"+Inf",
}

// HistogramBoundValues are HistogramBounds as float64, for exporters that
// take numeric bounds. The +Inf bucket is implicit and omitted.
var HistogramBoundValues = []float64{
	0.00005,
	0.0001,
	0.00025,
	0.0005,
	0.001,
	0.0025,
	0.005,
}

// HistogramBoundSuffix are instrument-name-safe forms of HistogramBounds.
var HistogramBoundSuffix = []string{
	"50us",
	"100us",
	"250us",
	"500us",
	"1ms",
	"2_5ms",
	"5ms",
	"inf",
}

// NormalizeBuckets widens a snapshot bucket slice to the fixed bucket
// count, tolerating short or missing slices.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form both
// Prometheus and OTel expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
