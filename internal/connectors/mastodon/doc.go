// Package mastodon implements the destination client against the Mastodon
// REST API: credential verification, media upload and status publishing
// with bounded retries.
package mastodon
