// Package flows contains pure-function orchestrators for every engine operation.
//
// Each flow function (RunLogin, RunRefresh, RunLogout, etc.) accepts a typed
// dependency struct and returns a result with a classified failure kind
// instead of a caller-facing error. The root package maps kinds to its
// sentinel errors; the kinds themselves exist so metrics and audit can tell
// apart cases the caller must not (reuse vs plain invalid token).
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the token codec, token store, user
// directory, and password hasher through closures. They do NOT own any of
// these resources — ownership stays with the engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import authward (to avoid import cycles).
//   - Perform I/O directly — all I/O is mediated through dependencies.
package flows
