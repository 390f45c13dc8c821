// Package token provides signing and verification of the compact
// self-contained tokens used by the authentication core.
//
// A [Codec] carries two independent signing contexts — access and refresh —
// each with its own secret and TTL. Cross-use of a secret fails verification.
//
// # Architecture boundaries
//
// This package owns token encoding only. It does NOT persist anything,
// consult the refresh-token store, or make policy decisions — those
// responsibilities belong to the engine.
//
// # What this package must NOT do
//
//   - Perform I/O of any kind.
//   - Import authward or any sibling package (no upward imports).
//   - Log or otherwise leak token material.
package token
