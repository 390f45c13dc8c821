// Package postgres provides the PostgreSQL-backed refresh token store.
//
// Records live in the refresh_tokens table keyed by the SHA-256 of the
// token value; the raw token is never written to the database. Revocation
// is a conditional UPDATE on the revoked flag, which gives the same
// exactly-one-winner guarantee the redis backend gets from its Lua script.
// Schema management uses embedded goose migrations, applied by [Open] or
// explicitly via [Store.Migrate].
//
// # What this package must NOT do
//
//   - Import authward, token, or internal/flows (no upward imports).
//   - Interpret token claims or decide validity policy.
//   - Store or log raw token values.
package postgres
