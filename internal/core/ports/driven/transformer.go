package driven

import "github.com/aviary-labs/bridgefeed-cli/internal/core/domain"

// Transformer maps a source post into the destination platform's format.
type Transformer interface {
	// Transform produces a publishable status from a post.
	// Returns an error wrapping domain.ErrTransform when the content
	// cannot be mapped (e.g. unsupported media).
	Transform(post domain.Post) (domain.Status, error)
}
