package domain

// Visibility values accepted by the destination platform.
const (
	VisibilityPublic   = "public"
	VisibilityUnlisted = "unlisted"
	VisibilityPrivate  = "private"
)

// MaxStatusLength is the destination platform's character limit.
const MaxStatusLength = 500

// Status is a post transformed into the destination platform's format,
// ready to publish.
type Status struct {
	// Text is the status body, already within MaxStatusLength.
	Text string

	// Media holds attachments to upload alongside the status.
	Media []MediaAttachment

	// Visibility controls who can see the published status.
	Visibility string

	// InReplyToID is the destination-side ID of the parent status when the
	// source post continues a self-thread. Empty for standalone statuses.
	InReplyToID string

	// IdempotencyKey deduplicates retried publish requests on the
	// destination side. Derived from the source post ID.
	IdempotencyKey string
}
