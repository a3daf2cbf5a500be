// Package domain defines the core business entities for ledgerbridge.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - OAuthToken: The stored credential for one owner
//   - Contact, Project, Invoice: Local mirrors of remote accounting records
//   - ResourceKind: The remote collections the mirror tracks
//   - Principal: The caller capability used for scoping
//   - Config: Fully resolved runtime configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
