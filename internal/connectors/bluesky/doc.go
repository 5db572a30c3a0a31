// Package bluesky implements the source client against the ATProto XRPC
// API: app-password session creation and author feed pagination.
package bluesky
