// Package web provides a document loader that fetches articles over HTTP.
package web

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/webrag-cli/internal/core/domain"
	"github.com/custodia-labs/webrag-cli/internal/core/ports/driven"
	"github.com/custodia-labs/webrag-cli/internal/logger"
	"github.com/custodia-labs/webrag-cli/internal/normalisers/html"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// Default configuration values.
const (
	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultFetchRate is the proactive throttle (requests per second)
	// so batch ingestion stays polite to the target hosts.
	DefaultFetchRate = 2.0

	// DefaultUserAgent identifies the client to fetched sites.
	DefaultUserAgent = "webrag/1.0 (+https://github.com/custodia-labs/webrag-cli)"

	// maxBodySize caps a single page at 10 MiB to bound memory use.
	maxBodySize = 10 << 20
)

// Config holds configuration for the web loader.
type Config struct {
	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// FetchRate is the maximum request rate in requests/second (default: 2).
	FetchRate float64

	// UserAgent overrides the default User-Agent header.
	UserAgent string
}

// Loader fetches web articles and normalises them to plain text.
//
// Loading is best-effort per URL: unreachable, blocked, non-HTML, and
// empty pages are recorded as failures and skipped. Fetches run
// sequentially in submission order so downstream sequence indexes are
// reproducible.
type Loader struct {
	client     *http.Client
	limiter    *rate.Limiter
	normaliser *html.Normaliser
	userAgent  string
}

// New creates a web loader with the given configuration.
func New(cfg Config) *Loader {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.FetchRate <= 0 {
		cfg.FetchRate = DefaultFetchRate
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	return &Loader{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(cfg.FetchRate), 1),
		normaliser: html.New(),
		userAgent:  cfg.UserAgent,
	}
}

// Load fetches the given URLs, returning the documents that loaded
// successfully alongside per-URL failures. A failed URL never aborts
// the batch; the returned error is reserved for context cancellation.
func (l *Loader) Load(ctx context.Context, urls []string) (*driven.LoadResult, error) {
	result := &driven.LoadResult{}

	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := l.fetch(ctx, u)
		if err != nil {
			// Context cancellation is a batch-level failure, everything
			// else is a per-URL skip.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("Skipping %s: %v", u, err)
			result.Failures = append(result.Failures, domain.LoadFailure{
				URL:    u,
				Reason: err.Error(),
			})
			continue
		}

		logger.Debug("Loaded %s (%d chars)", u, len(doc.Content))
		result.Documents = append(result.Documents, doc)
	}

	return result, nil
}

// fetch retrieves and normalises a single URL.
func (l *Loader) fetch(ctx context.Context, pageURL string) (domain.Document, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return domain.Document{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return domain.Document{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := l.client.Do(req)
	if err != nil {
		return domain.Document{}, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Document{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if !isTextContent(resp.Header.Get("Content-Type")) {
		return domain.Document{}, fmt.Errorf("unsupported content type %q", resp.Header.Get("Content-Type"))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return domain.Document{}, fmt.Errorf("read body: %w", err)
	}

	doc, err := l.normaliser.Normalise(body, pageURL)
	if err != nil {
		return domain.Document{}, fmt.Errorf("normalise: %w", err)
	}

	if strings.TrimSpace(doc.Content) == "" {
		return domain.Document{}, fmt.Errorf("page has no readable text")
	}

	return doc, nil
}

// isTextContent reports whether the Content-Type header denotes a page
// we can normalise. An absent header is given the benefit of the doubt.
func isTextContent(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mediaType {
	case "text/html", "application/xhtml+xml", "text/plain":
		return true
	default:
		return false
	}
}

// Close releases resources.
func (l *Loader) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
