// Package store defines the refresh token persistence port: the [Record]
// model and the [TokenStore] interface implemented by the redis and
// postgres backends.
//
// # Conditional revocation
//
// [TokenStore.Revoke] is a compare-and-swap on the revoked flag: it flips
// the flag only when it is not yet set and reports whether this call won.
// Refresh rotation relies on that guarantee so that concurrent rotations of
// the same token produce exactly one winner.
//
// # Architecture boundaries
//
// This package owns the storage contract only. It does NOT sign or verify
// tokens, evaluate credentials, or decide validity policy beyond the
// record's own revoked flag and expiry — those responsibilities belong to
// the engine.
//
// # What this package must NOT do
//
//   - Import authward, token, or internal/flows (no upward imports).
//   - Generate token values or records; the engine is the only writer.
//   - Log token values.
package store
