// Package domain defines the core business entities for bridgefeed.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Post: A post fetched from the source platform
//   - Status: A post transformed into the destination format
//   - SyncState: The persisted aggregate of synced posts and attempt records
//   - SyncRecord: One entry in the append-only attempt log
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
package domain
