// Package statefile is the file-based implementation of the sync state
// store. State is persisted as a single JSON document with two top-level
// fields, synced_posts and sync_records. Writes go through a temp file and
// rename so a concurrent reader observes either the old or the new complete
// state, never a partial write.
//
// The schema is forward-compatible: unknown fields are ignored on load and
// optional fields are omitted when empty, so a future version that only adds
// optional fields can still read files written today.
package statefile
