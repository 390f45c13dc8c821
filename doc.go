// Package authward manages the lifecycle of signed session credentials: it
// turns a verified identity into an access/refresh token pair and governs
// how those credentials are rotated, revoked, and invalidated over the
// life of a session.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authward is the public surface. It exposes [Engine], [Builder], [Config],
// the two ports callers implement ([UserDirectory] and store.TokenStore),
// and value types (TokenPair, MetricsSnapshot, AuditEvent). Flow
// orchestration and audit dispatch live under internal/ and are never
// exported; token signing and refresh-record storage live in the token and
// store sub-packages.
//
// # What this package must NOT do
//
//   - Expose raw signing secrets or persisted token state in its public
//     API.
//   - Distinguish, in errors returned to callers, which part of an
//     attacker-supplied credential was wrong.
//   - Perform I/O outside of Engine methods (construction via Builder is
//     allocation-only until Build).
//
// # Performance contract
//
// ValidateAccessToken is the hot path. It is pure computation: signature
// and expiry checks only, no store or directory round-trips. Login,
// Refresh, Logout, and Register are allowed port round-trips.
package authward
