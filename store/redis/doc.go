// Package redis provides the Redis-backed refresh token store.
//
// # Key layout
//
// Records live at <prefix>:rt:<sha256(tokenValue)> as a compact binary
// blob with a PX TTL equal to the record's remaining lifetime. A per
// subject SET at <prefix>:sub:<subjectID> indexes record hashes for
// revoke-all. The raw token value is never written to Redis.
//
// # Conditional revocation
//
// Revocation is a Lua compare-and-swap on the revoked flag at its fixed
// byte offset. Concurrent revokes of the same token produce exactly one
// claimed result.
//
// # What this package must NOT do
//
//   - Import authward, token, or internal/flows (no upward imports).
//   - Interpret token claims or decide validity policy.
//   - Store or log raw token values.
package redis
