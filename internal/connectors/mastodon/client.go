package mastodon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/aviary-labs/bridgefeed-cli/internal/core/domain"
	"github.com/aviary-labs/bridgefeed-cli/internal/core/ports/driven"
	"github.com/aviary-labs/bridgefeed-cli/internal/logger"
)

const (
	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// maxPublishRetries bounds retries of transient publish failures.
	maxPublishRetries = 3

	// initialBackoff is the first retry delay.
	initialBackoff = 2 * time.Second

	// requestsPerSecond throttles API calls well under the instance limit
	// of 300 requests per 5 minutes.
	requestsPerSecond = 1
)

// Ensure Client implements the interface.
var _ driven.DestinationClient = (*Client)(nil)

// Config holds the Mastodon instance and credentials.
type Config struct {
	// InstanceURL is the base URL of the instance (e.g. "https://mastodon.social").
	InstanceURL string

	// AccessToken is the OAuth bearer token for the account.
	AccessToken string
}

// Client is the destination client for Mastodon.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Mastodon client. The bearer token is injected through
// an oauth2 static token source.
func NewClient(ctx context.Context, cfg Config) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken})
	hc := oauth2.NewClient(ctx, ts)
	hc.Timeout = DefaultTimeout
	return &Client{
		cfg:     cfg,
		http:    hc,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 2),
	}
}

// Verify checks the token against verify_credentials.
func (c *Client) Verify(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.InstanceURL+"/api/v1/accounts/verify_credentials", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return fmt.Errorf("verify credentials: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("verify credentials: %w", apiError(resp))
	}
	return nil
}

// Publish uploads the status's media and posts it, returning the new status
// ID. Transient failures are retried with exponential backoff; auth and
// validation failures are terminal. A request whose outcome cannot be
// determined is reported as domain.ErrAmbiguousPublish and never retried,
// since a blind retry could duplicate the status.
func (c *Client) Publish(ctx context.Context, status domain.Status) (string, error) {
	mediaIDs := make([]string, 0, len(status.Media))
	for _, m := range status.Media {
		id, err := c.uploadMedia(ctx, m)
		if err != nil {
			return "", fmt.Errorf("upload media: %w", err)
		}
		mediaIDs = append(mediaIDs, id)
	}

	schedule := &retryAfterBackOff{
		BackOff: backoff.NewExponentialBackOff(backoff.WithInitialInterval(initialBackoff)),
	}

	var statusID string
	operation := func() error {
		id, err := c.postStatus(ctx, status, mediaIDs)
		if err != nil {
			var rateLimited *RateLimitError
			if errors.As(err, &rateLimited) {
				schedule.setHint(rateLimited.RetryAfter)
			}
			if domain.IsRetryable(err) {
				return err // Retried by the backoff loop.
			}
			return backoff.Permanent(err)
		}
		statusID = id
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(schedule, maxPublishRetries), ctx)

	notify := func(err error, wait time.Duration) {
		logger.Warn("Publish attempt failed (%v); retrying in %s", err, wait)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return "", err
	}
	return statusID, nil
}

// retryAfterBackOff prefers the instance's Retry-After hint over the
// exponential schedule for the wait following a rate-limited attempt.
type retryAfterBackOff struct {
	backoff.BackOff
	hint    time.Duration
	hasHint bool
}

func (b *retryAfterBackOff) setHint(d time.Duration) {
	b.hint = d
	b.hasHint = true
}

// NextBackOff consumes a pending hint, falling back to the wrapped schedule.
func (b *retryAfterBackOff) NextBackOff() time.Duration {
	if b.hasHint {
		b.hasHint = false
		return b.hint
	}
	return b.BackOff.NextBackOff()
}

// postStatus performs one POST /api/v1/statuses call.
func (c *Client) postStatus(ctx context.Context, status domain.Status, mediaIDs []string) (string, error) {
	form := url.Values{}
	form.Set("status", status.Text)
	form.Set("visibility", status.Visibility)
	if status.InReplyToID != "" {
		form.Set("in_reply_to_id", status.InReplyToID)
	}
	for _, id := range mediaIDs {
		form.Add("media_ids[]", id)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.InstanceURL+"/api/v1/statuses", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if status.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", status.IdempotencyKey)
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		// The request may have reached the instance before the failure;
		// surface that ambiguity instead of a plain transient error.
		return "", fmt.Errorf("%w: %w", domain.ErrAmbiguousPublish, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp)
	}

	var posted struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&posted); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", domain.ErrAmbiguousPublish, err)
	}
	return posted.ID, nil
}

// uploadMedia fetches the attachment from its source URL and uploads it.
func (c *Client) uploadMedia(ctx context.Context, m domain.MediaAttachment) (string, error) {
	blob, err := c.fetchBlob(ctx, m.URL)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "attachment")
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(blob); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	if m.AltText != "" {
		if err := writer.WriteField("description", m.AltText); err != nil {
			return "", fmt.Errorf("write description field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.InstanceURL+"/api/v2/media", &body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	// 200 is a fully processed upload, 202 means processing continues
	// asynchronously; both return a usable media ID.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return "", apiError(resp)
	}

	var uploaded struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("decode media response: %w", err)
	}
	return uploaded.ID, nil
}

// fetchBlob downloads the media blob from the source platform's CDN.
func (c *Client) fetchBlob(ctx context.Context, blobURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, blobURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build blob request: %w", err)
	}
	// The CDN does not want the instance bearer token.
	resp, err := (&http.Client{Timeout: DefaultTimeout}).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch blob: %w", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch blob: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// do performs one rate-limited request.
func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return c.http.Do(req)
}

// apiError builds the classified error for a non-success response.
func apiError(resp *http.Response) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := 30 * time.Second
		if header := resp.Header.Get("Retry-After"); header != "" {
			if seconds, err := strconv.Atoi(header); err == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return &RateLimitError{RetryAfter: retryAfter}
	}

	var apiErr struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Error == "" {
		apiErr.Error = resp.Status
	}
	return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
}
