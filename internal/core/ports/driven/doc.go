// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - SourceClient: Fetches recent posts from the source platform
//   - DestinationClient: Publishes transformed statuses
//   - Transformer: Maps posts into the destination format
//   - SyncStateStore: Sync state persistence
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
