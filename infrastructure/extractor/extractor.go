// Package extractor pulls best-effort listing fields out of arbitrary real-estate pages.
package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"propgen/domain/model"
	"propgen/domain/repository"
	"propgen/infrastructure/logger"

	"github.com/pkg/errors"
)

// maxPageBytes bounds how much of a listing page is read
const maxPageBytes = 5 << 20

// ErrStatus is returned by Fetch when the listing host answers outside 2xx
type ErrStatus struct {
	Code int
}

func (e *ErrStatus) Error() string { return fmt.Sprintf("listing fetch returned status %d", e.Code) }

type Extractor struct {
	client    *http.Client
	userAgent string
	renderer  PageFetcher
}

func NewExtractor(userAgent string, timeout time.Duration) *Extractor {
	return &Extractor{client: &http.Client{Timeout: timeout}, userAgent: userAgent}
}

var _ repository.IListingExtractor = (*Extractor)(nil)

// WithRenderer makes Extract load pages through r instead of a plain GET
func (e *Extractor) WithRenderer(r PageFetcher) *Extractor {
	e.renderer = r
	return e
}

// Fetch downloads the page with a browser-like User-Agent
func (e *Extractor) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "build listing request")
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "fetch listing")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ErrStatus{Code: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", errors.Wrap(err, "read listing body")
	}
	return string(body), nil
}

// Extract fetches and parses a listing page
func (e *Extractor) Extract(ctx context.Context, pageURL string) (*model.Listing, error) {
	var fetcher PageFetcher = e
	if e.renderer != nil {
		fetcher = e.renderer
	}
	html, err := fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	listing := Parse(html, pageURL)
	logger.GetLogger().
		WithField("url", pageURL).
		WithField("images", len(listing.Images)).
		WithField("price", listing.Price).
		Debug("listing parsed")
	return listing, nil
}
