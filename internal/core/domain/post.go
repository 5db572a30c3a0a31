package domain

import "time"

// Platform identifiers used in sync records.
const (
	PlatformBluesky  = "bluesky"
	PlatformMastodon = "mastodon"
)

// Post represents a post fetched from the source platform.
type Post struct {
	// ID is the stable unique identifier of the post (AT URI for Bluesky).
	ID string

	// CID is the content hash of the post record.
	CID string

	// AuthorHandle is the handle of the posting account.
	AuthorHandle string

	// Text is the plain-text content of the post.
	Text string

	// CreatedAt is when the post was created on the source platform.
	CreatedAt time.Time

	// Media holds zero or more attached images.
	Media []MediaAttachment

	// Link is the external link card attached to the post, if any.
	Link *ExternalLink

	// ReplyParentID is the ID of the parent post when this post continues
	// a self-thread. Empty for standalone posts.
	ReplyParentID string
}

// IsSelfReply reports whether the post continues a thread by the same author.
func (p *Post) IsSelfReply() bool {
	return p.ReplyParentID != ""
}

// MediaAttachment is an image attached to a post.
type MediaAttachment struct {
	// URL is a fetchable location for the full-size media blob.
	URL string

	// AltText is the accessibility description, if provided.
	AltText string

	// MimeType is the media content type (e.g. "image/jpeg").
	MimeType string
}

// ExternalLink is a link card embedded in a post.
type ExternalLink struct {
	// URI is the link target.
	URI string

	// Title is the card title, if any.
	Title string

	// Description is the card description, if any.
	Description string
}
