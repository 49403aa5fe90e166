package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reviewapp/pkg/platform/sentinel"
	"reviewapp/pkg/requestcontext"
)

const DefaultTimeout = 10 * time.Second

var (
	// ErrUpstream marks a non-2xx answer from the review API.
	ErrUpstream = errors.New("upstream error")
	// ErrInvalidReview rejects a submission before it is sent.
	ErrInvalidReview = errors.New("invalid review")
)

// UpstreamError carries the status of a failed API call. It matches
// ErrUpstream, and sentinel.ErrNotFound for a 404.
type UpstreamError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *UpstreamError) Is(target error) bool {
	switch target {
	case ErrUpstream:
		return true
	case sentinel.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case sentinel.ErrUnavailable:
		return e.StatusCode == http.StatusServiceUnavailable || e.StatusCode == http.StatusBadGateway
	}
	return false
}

// Client calls the review API. Give it the identity injector as transport so
// every call carries the user's id.
type Client struct {
	baseURL string
	http    *http.Client
	clock   Clock
	logger  *slog.Logger
}

type Option func(*Client)

// WithTransport sets the round tripper, typically an *identity.Injector.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.http.Transport = rt
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithClock fixes the clock for generated review ids. Without it the
// request time from requestcontext is used.
func WithClock(clock Clock) Option {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSuffix(baseURL, "/")
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse catalog base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("catalog base url %q must be absolute", baseURL)
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func (c *Client) ListProducts(ctx context.Context, page, size int) (Page[Product], error) {
	var dto PageDTO[ProductDTO]
	if err := c.do(ctx, http.MethodGet, "/api/products", paging(page, size), nil, &dto); err != nil {
		return Page[Product]{}, err
	}
	return MapPage(dto, ProductDTO.ToDomain), nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (Product, error) {
	var dto ProductDTO
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, nil, &dto); err != nil {
		return Product{}, err
	}
	return dto.ToDomain(), nil
}

func (c *Client) ListReviews(ctx context.Context, productID string, page, size int) (Page[Review], error) {
	var dto PageDTO[ReviewDTO]
	path := "/api/products/" + url.PathEscape(productID) + "/reviews"
	if err := c.do(ctx, http.MethodGet, path, paging(page, size), nil, &dto); err != nil {
		return Page[Review]{}, err
	}
	return MapPage(dto, c.reviewMapper(ctx)), nil
}

// SubmitReview posts a review and returns it as stored by the API.
func (c *Client) SubmitReview(ctx context.Context, review NewReview) (Review, error) {
	if err := review.Validate(); err != nil {
		return Review{}, err
	}
	var dto ReviewDTO
	path := "/api/products/" + url.PathEscape(review.ProductID) + "/reviews"
	if err := c.do(ctx, http.MethodPost, path, nil, review, &dto); err != nil {
		return Review{}, err
	}
	return c.reviewMapper(ctx)(dto), nil
}

func (c *Client) Wishlist(ctx context.Context) ([]WishlistItem, error) {
	var dto []WishlistItemDTO
	if err := c.do(ctx, http.MethodGet, "/api/wishlist", nil, nil, &dto); err != nil {
		return nil, err
	}
	return mapSlice(dto, WishlistItemDTO.ToDomain), nil
}

func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var dto []NotificationDTO
	if err := c.do(ctx, http.MethodGet, "/api/notifications", nil, nil, &dto); err != nil {
		return nil, err
	}
	return mapSlice(dto, NotificationDTO.ToDomain), nil
}

// Validate checks the fields the API requires.
func (r NewReview) Validate() error {
	switch {
	case strings.TrimSpace(r.ProductID) == "":
		return fmt.Errorf("%w: product id is required", ErrInvalidReview)
	case r.Rating < 1 || r.Rating > 5:
		return fmt.Errorf("%w: rating must be between 1 and 5, got %d", ErrInvalidReview, r.Rating)
	case strings.TrimSpace(r.Comment) == "":
		return fmt.Errorf("%w: comment is required", ErrInvalidReview)
	}
	return nil
}

// reviewMapper maps review DTOs with the configured clock, or else the
// request's clock from ctx, so ids generated while serving one request share
// its timestamp.
func (c *Client) reviewMapper(ctx context.Context) func(ReviewDTO) Review {
	clock := c.clock
	if clock == nil {
		clock = func() time.Time { return requestcontext.Now(ctx) }
	}
	return func(d ReviewDTO) Review {
		return d.ToDomain(clock)
	}
}

func paging(page, size int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(max(page, 0)))
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	return q
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		uerr := &UpstreamError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
		c.logger.WarnContext(ctx, "catalog request failed", "method", method, "path", path, "status", resp.StatusCode)
		return uerr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
