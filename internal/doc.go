// Package internal hosts sub-packages that are private to authward.
//
// # Sub-packages
//
//   - audit — async event dispatch (Dispatcher + Sink implementations)
//   - flows — pure-function flow orchestrators for every Engine operation
//
// # What this package must NOT do
//
//   - Export types that appear in the public authward API.
//   - Be imported by any package outside the authward module.
package internal
