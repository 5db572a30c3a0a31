package bluesky

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/aviary-labs/bridgefeed-cli/internal/core/domain"
	"github.com/aviary-labs/bridgefeed-cli/internal/core/ports/driven"
	"github.com/aviary-labs/bridgefeed-cli/internal/logger"
)

const (
	// DefaultBaseURL is the Bluesky PDS endpoint.
	DefaultBaseURL = "https://bsky.social"

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// feedPageSize is the per-request page size for the author feed.
	feedPageSize = 100

	// requestsPerSecond throttles API calls. The public rate limit allows
	// far more; this keeps scheduled runs polite.
	requestsPerSecond = 3
)

// Ensure Client implements the interface.
var _ driven.SourceClient = (*Client)(nil)

// Config holds the Bluesky account credentials.
type Config struct {
	// BaseURL overrides the PDS endpoint. Empty means DefaultBaseURL.
	BaseURL string

	// Handle is the account handle (e.g. "alice.bsky.social").
	Handle string

	// AppPassword is an app-specific password, not the account password.
	AppPassword string
}

// Client is the source client for Bluesky.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter

	// Session state, populated lazily by ensureSession.
	accessJwt string
	did       string
}

// NewClient creates a Bluesky client. The session is created lazily on the
// first call that needs it.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Verify checks the credentials by creating a session.
func (c *Client) Verify(ctx context.Context) error {
	return c.ensureSession(ctx)
}

// FetchRecent returns the account's own posts within the window, oldest
// entries included down to the lookback horizon. Reposts are skipped, and
// replies are only included when they continue the account's own thread and
// the window asks for threads.
func (c *Client) FetchRecent(ctx context.Context, window driven.FetchWindow) ([]domain.Post, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	since := time.Now().Add(-window.Lookback)
	limit := window.Limit
	if limit <= 0 {
		limit = feedPageSize
	}

	var posts []domain.Post
	cursor := ""
	for {
		page, err := c.fetchFeedPage(ctx, cursor)
		if errors.Is(err, domain.ErrAuthInvalid) {
			// Access tokens expire; log in again and retry the page once.
			logger.Debug("Bluesky session rejected; re-authenticating")
			c.accessJwt = ""
			if sessionErr := c.ensureSession(ctx); sessionErr != nil {
				return nil, sessionErr
			}
			page, err = c.fetchFeedPage(ctx, cursor)
		}
		if err != nil {
			return nil, err
		}

		reachedHorizon := false
		for _, item := range page.Feed {
			post, ok := c.toDomainPost(item, window.IncludeThreads)
			if !ok {
				continue
			}
			if post.CreatedAt.Before(since) {
				// The feed is newest-first; everything after this is
				// outside the window.
				reachedHorizon = true
				break
			}
			posts = append(posts, post)
			if len(posts) >= limit {
				return posts, nil
			}
		}

		if reachedHorizon || page.Cursor == "" || len(page.Feed) == 0 {
			return posts, nil
		}
		cursor = page.Cursor
	}
}

// ensureSession logs in with the app password if no session exists yet.
func (c *Client) ensureSession(ctx context.Context) error {
	if c.accessJwt != "" {
		return nil
	}

	body, err := json.Marshal(map[string]string{
		"identifier": c.cfg.Handle,
		"password":   c.cfg.AppPassword,
	})
	if err != nil {
		return fmt.Errorf("marshal session request: %w", err)
	}

	var session sessionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/xrpc/com.atproto.server.createSession", bytes.NewReader(body), &session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	c.accessJwt = session.AccessJwt
	c.did = session.DID
	logger.Debug("Bluesky session created for %s (%s)", session.Handle, session.DID)
	return nil
}

// fetchFeedPage requests one page of the author feed.
func (c *Client) fetchFeedPage(ctx context.Context, cursor string) (*authorFeedResponse, error) {
	q := url.Values{}
	q.Set("actor", c.did)
	q.Set("limit", fmt.Sprintf("%d", feedPageSize))
	q.Set("filter", "posts_with_replies")
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	var page authorFeedResponse
	path := "/xrpc/app.bsky.feed.getAuthorFeed?" + q.Encode()
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, fmt.Errorf("get author feed: %w", err)
	}
	return &page, nil
}

// toDomainPost maps a feed item to a domain post. Returns false for items
// the bridge must skip: reposts, other authors, replies to other accounts,
// and thread continuations when threads are excluded.
func (c *Client) toDomainPost(item feedItem, includeThreads bool) (domain.Post, bool) {
	if item.Reason != nil && strings.Contains(item.Reason.Type, "reasonRepost") {
		return domain.Post{}, false
	}
	if item.Post.Author.DID != c.did {
		return domain.Post{}, false
	}

	var replyParent string
	if item.Post.Record.Reply != nil {
		parentURI := item.Post.Record.Reply.Parent.URI
		if authorDID(parentURI) != c.did {
			// Reply to someone else; never bridged.
			return domain.Post{}, false
		}
		if !includeThreads {
			return domain.Post{}, false
		}
		replyParent = parentURI
	}

	createdAt, err := time.Parse(time.RFC3339, item.Post.Record.CreatedAt)
	if err != nil {
		logger.Warn("Unparseable createdAt on %s: %v", item.Post.URI, err)
		return domain.Post{}, false
	}

	post := domain.Post{
		ID:            item.Post.URI,
		CID:           item.Post.CID,
		AuthorHandle:  item.Post.Author.Handle,
		Text:          item.Post.Record.Text,
		CreatedAt:     createdAt,
		ReplyParentID: replyParent,
	}

	if embed := item.Post.Embed; embed != nil {
		for _, img := range embed.Images {
			post.Media = append(post.Media, domain.MediaAttachment{
				URL:      img.Fullsize,
				AltText:  img.Alt,
				MimeType: "image/jpeg",
			})
		}
		if embed.External != nil && embed.External.URI != "" {
			post.Link = &domain.ExternalLink{
				URI:         embed.External.URI,
				Title:       embed.External.Title,
				Description: embed.External.Description,
			}
		}
	}

	return post, true
}

// doJSON performs one rate-limited API call and decodes the JSON response.
func (c *Client) doJSON(ctx context.Context, method, path string, body *bytes.Reader, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, nil)
	}
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessJwt != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessJwt)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{StatusCode: resp.StatusCode, Code: apiErr.Error, Message: apiErr.Message}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// authorDID extracts the DID from an AT URI (at://did:plc:xyz/collection/rkey).
func authorDID(atURI string) string {
	trimmed := strings.TrimPrefix(atURI, "at://")
	if idx := strings.IndexByte(trimmed, '/'); idx > 0 {
		return trimmed[:idx]
	}
	return trimmed
}
