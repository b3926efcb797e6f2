package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// Doer executes http requests, *http.Client satisfies it
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options for Fetcher, zero values replaced by defaults
type Options struct {
	Timeout     time.Duration // whole request including body read
	UserAgent   string
	MaxBodySize int64 // max accepted document size in bytes
	Client      Doer  // optional transport, default http.Client with pooled connections
}

// default fetcher settings
const (
	DefaultTimeout     = 30 * time.Second
	DefaultUserAgent   = "feedkeeper/1.0"
	DefaultMaxBodySize = 10 * 1024 * 1024
)

// Fetcher retrieves RSS/Atom documents with conditional GET and normalizes them into Result
type Fetcher struct {
	client      Doer
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
	sanitizer   *bluemonday.Policy
	now         func() time.Time
}

// NewFetcher creates a new feed fetcher
func NewFetcher(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = DefaultMaxBodySize
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &Fetcher{
		client:      client,
		timeout:     opts.Timeout,
		userAgent:   opts.UserAgent,
		maxBodySize: opts.MaxBodySize,
		sanitizer:   bluemonday.UGCPolicy(),
		now:         time.Now,
	}
}

// Fetch retrieves feedURL, sending validators as conditional headers. A 304 response yields
// Result with NotModified set. Every failure is a *FetchError of KindNetwork or KindParse.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string, v Validators) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, http.NoBody)
	if err != nil {
		return nil, networkError(feedURL, 0, fmt.Errorf("create request: %w", err))
	}
	addFeedHeaders(req, f.userAgent, v)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, networkError(feedURL, 0, fmt.Errorf("fetch url: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return &Result{NotModified: true, Validators: mergeValidators(v, resp.Header)}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, networkError(feedURL, resp.StatusCode, fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, networkError(feedURL, 0, fmt.Errorf("read body: %w", err))
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, parseError(feedURL, fmt.Errorf("document exceeds %d bytes", f.maxBodySize))
	}

	res, err := f.parse(feedURL, body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, networkError(feedURL, 0, err)
		}
		return nil, parseError(feedURL, err)
	}
	res.Validators = Validators{ETag: resp.Header.Get("ETag"), LastModified: resp.Header.Get("Last-Modified")}
	return res, nil
}

// mergeValidators keeps supplied validators unless the 304 response refreshed them
func mergeValidators(v Validators, h http.Header) Validators {
	if etag := h.Get("ETag"); etag != "" {
		v.ETag = etag
	}
	if lm := h.Get("Last-Modified"); lm != "" {
		v.LastModified = lm
	}
	return v
}
