// Package transform maps Bluesky posts into Mastodon's status format:
// character limit, link handling and media constraints.
package transform

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aviary-labs/bridgefeed-cli/internal/core/domain"
	"github.com/aviary-labs/bridgefeed-cli/internal/core/ports/driven"
)

// Ensure Transformer implements the interface.
var _ driven.Transformer = (*Transformer)(nil)

// maxMediaAttachments is the destination platform's per-status media limit.
const maxMediaAttachments = 4

// ellipsis marks truncated text.
const ellipsis = "…"

// Options configure the transformation.
type Options struct {
	// IncludeMedia carries image attachments over to the destination.
	IncludeMedia bool

	// IncludeLinks appends the external link card URL when the post body
	// does not already contain it.
	IncludeLinks bool

	// Visibility for published statuses. Defaults to public.
	Visibility string
}

// Transformer maps posts to statuses.
type Transformer struct {
	opts Options
}

// New creates a transformer with the given options.
func New(opts Options) *Transformer {
	if opts.Visibility == "" {
		opts.Visibility = domain.VisibilityPublic
	}
	return &Transformer{opts: opts}
}

// Transform produces a publishable status from a post.
//
// The body is truncated on a word boundary to fit the destination's
// character limit, keeping an appended link intact. Unsupported media types
// fail with domain.ErrTransform.
func (t *Transformer) Transform(post domain.Post) (domain.Status, error) {
	text := strings.TrimRight(post.Text, " \n")

	var link string
	if t.opts.IncludeLinks && post.Link != nil && post.Link.URI != "" && !strings.Contains(text, post.Link.URI) {
		link = post.Link.URI
	}

	text = fitToLimit(text, link, domain.MaxStatusLength)

	var media []domain.MediaAttachment
	if t.opts.IncludeMedia {
		if len(post.Media) > maxMediaAttachments {
			return domain.Status{}, fmt.Errorf("%w: %d attachments exceed the limit of %d",
				domain.ErrTransform, len(post.Media), maxMediaAttachments)
		}
		for _, m := range post.Media {
			if !strings.HasPrefix(m.MimeType, "image/") {
				return domain.Status{}, fmt.Errorf("%w: unsupported media type %q",
					domain.ErrTransform, m.MimeType)
			}
			media = append(media, m)
		}
	}

	return domain.Status{
		Text:           text,
		Media:          media,
		Visibility:     t.opts.Visibility,
		IdempotencyKey: idempotencyKey(post.ID),
	}, nil
}

// fitToLimit combines body and an optional appended link within limit runes.
// The link is never truncated; the body gives way first.
func fitToLimit(body, link string, limit int) string {
	suffix := ""
	if link != "" {
		suffix = "\n\n" + link
	}

	if utf8.RuneCountInString(body)+utf8.RuneCountInString(suffix) <= limit {
		return body + suffix
	}

	budget := limit - utf8.RuneCountInString(suffix) - utf8.RuneCountInString(ellipsis)
	if budget < 0 {
		// Link alone exceeds the limit; fall back to a hard cut of the link.
		runes := []rune(link)
		return string(runes[:limit])
	}

	return truncateAtWord(body, budget) + ellipsis + suffix
}

// truncateAtWord cuts text to at most budget runes, preferring the last
// space within the budget.
func truncateAtWord(text string, budget int) string {
	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}
	cut := string(runes[:budget])
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " \n")
}

// idempotencyKey derives a stable publish deduplication key from the source
// post ID.
func idempotencyKey(sourceID string) string {
	sum := sha256.Sum256([]byte(sourceID))
	return hex.EncodeToString(sum[:16])
}
