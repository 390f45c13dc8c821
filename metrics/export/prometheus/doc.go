// Package prometheus exposes engine metrics to Prometheus.
//
// [NewExporter] renders counters and the validation latency histogram in
// text exposition format behind an [net/http.Handler]. [NewCollector]
// bridges the same metrics into a client_golang registry for processes
// that already run one.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry — callers mount
//     the Handler or register the Collector themselves.
//   - Mutate engine state.
package prometheus
