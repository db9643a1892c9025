// Package restclient talks to a json-server style contact store over HTTP.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/schema"
)

// TotalCountHeader carries the number of matches across all pages.
const TotalCountHeader = "X-Total-Count"

// Client implements contract.ContactStore against a REST endpoint.
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
	logger    *charmlog.Logger
}

var _ contract.ContactStore = &Client{} // Compile-time check

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every request. Zero leaves requests unbounded.
// The timeout is set on a copy so a shared client passed to WithHTTPClient stays untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *charmlog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a client for the collection at baseURL, e.g. http://localhost:3001/contacts.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   baseURL,
		http:      &http.Client{},
		userAgent: "contacts",
		logger:    contract.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List implements the ContactStore interface.
func (c *Client) List(ctx context.Context, params schema.ListParams) (schema.PageResult, error) {
	q := url.Values{}
	q.Set("_page", strconv.Itoa(params.Page))
	q.Set("_limit", strconv.Itoa(params.Limit))
	if params.Search != "" {
		q.Set("q", params.Search)
	}
	if params.FavouritesOnly {
		q.Set("favourite", "true")
	}

	var items []schema.Contact
	header, err := c.do(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil, &items, false)
	if err != nil {
		return schema.PageResult{}, err
	}
	if items == nil {
		items = []schema.Contact{}
	}
	return schema.PageResult{Items: items, Total: totalFrom(header, len(items))}, nil
}

// Get implements the ContactStore interface.
func (c *Client) Get(ctx context.Context, id string) (schema.Contact, error) {
	var out schema.Contact
	if _, err := c.do(ctx, http.MethodGet, c.itemURL(id), nil, &out, true); err != nil {
		return schema.Contact{}, err
	}
	return out, nil
}

// Create implements the ContactStore interface.
func (c *Client) Create(ctx context.Context, fields schema.ContactFields) (schema.Contact, error) {
	var out schema.Contact
	if _, err := c.do(ctx, http.MethodPost, c.baseURL, fields, &out, false); err != nil {
		return schema.Contact{}, err
	}
	if out.ID == "" {
		return schema.Contact{}, fmt.Errorf("%w: created contact has no id", contract.ErrInvalidResponse)
	}
	return out, nil
}

// Update implements the ContactStore interface.
func (c *Client) Update(ctx context.Context, id string, fields schema.ContactFields) (schema.Contact, error) {
	var out schema.Contact
	if _, err := c.do(ctx, http.MethodPut, c.itemURL(id), fields, &out, true); err != nil {
		return schema.Contact{}, err
	}
	if out.ID == "" {
		out.ID = id
	}
	return out, nil
}

// Delete implements the ContactStore interface.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, c.itemURL(id), nil, nil, true)
	return err
}

func (c *Client) itemURL(id string) string {
	return c.baseURL + "/" + url.PathEscape(id)
}

// do sends one request and decodes a JSON body into out when out is non-nil.
// A 404 maps to ErrNotFound only on item routes.
func (c *Client) do(ctx context.Context, method, target string, body, out any, item bool) (http.Header, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", method, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", contract.ErrNetworkFailure, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", contract.ErrNetworkFailure, method, target, err)
	}
	defer func() { _ = resp.Body.Close() }()
	c.logger.Debug("request", "method", method, "url", target, "status", resp.StatusCode, "took", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound && item:
		return nil, contract.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: %s %s returned %d", contract.ErrInvalidResponse, method, target, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.Header, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("%w: decode %s %s: %w", contract.ErrInvalidResponse, method, target, err)
	}
	return resp.Header, nil
}

// totalFrom reads the total-count header, falling back to the page size when
// it is absent, unparsable, or smaller than the page itself.
func totalFrom(header http.Header, pageLen int) int {
	n, err := strconv.Atoi(header.Get(TotalCountHeader))
	if err != nil || n < pageLen {
		return pageLen
	}
	return n
}
