package netclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/offlinesync/internal/client/models"
	"github.com/dmitrijs2005/offlinesync/internal/common"
)

const defaultMaxBodyBytes = 32 << 20

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d %s", e.Method, e.URL, e.Code, http.StatusText(e.Code))
}

// HTTPClient talks to http and https URLs.
type HTTPClient struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
}

type HTTPOption func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClient) { h.client = c }
}

func WithUserAgent(ua string) HTTPOption {
	return func(h *HTTPClient) { h.userAgent = ua }
}

// WithMaxBodyBytes limits the accepted response body size; larger bodies
// fail with common.ErrBodyTooLarge. Non-positive values are ignored.
func WithMaxBodyBytes(n int64) HTTPOption {
	return func(h *HTTPClient) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// NewHTTPClient builds a client whose requests give up after timeout.
// A zero timeout leaves deadlines to the caller's context.
func NewHTTPClient(timeout time.Duration, opts ...HTTPOption) *HTTPClient {
	h := &HTTPClient{
		client:       &http.Client{Timeout: timeout},
		userAgent:    "offlinesync",
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *HTTPClient) Get(ctx context.Context, url string) ([]byte, error) {
	return h.Send(ctx, &models.Request{Method: http.MethodGet, URL: url})
}

func (h *HTTPClient) Post(ctx context.Context, url string, payload []byte) ([]byte, error) {
	return h.Send(ctx, models.NewPostRequest(url, payload))
}

// Send performs req. Transport failures wrap common.ErrUnavailable; a
// non-2xx answer is a *StatusError.
func (h *HTTPClient) Send(ctx context.Context, req *models.Request) ([]byte, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidRequest, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", common.DefaultContentType)
	}
	if h.userAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", h.userAgent)
	}
	httpReq.Header.Set(common.CorrelationIDHeaderName, CorrelationID(ctx))

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", common.ErrUnavailable, req.URL, err)
	}
	if int64(len(data)) > h.maxBodyBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", common.ErrBodyTooLarge, req.URL, h.maxBodyBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: req.Method, URL: req.URL, Code: resp.StatusCode, Body: data}
	}
	return data, nil
}

// Ping reports whether url answers at all. Any HTTP response below 500
// counts as reachable.
func (h *HTTPClient) Ping(ctx context.Context, url string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidRequest, err)
	}
	httpReq.Header.Set(common.CorrelationIDHeaderName, CorrelationID(ctx))

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))
	resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: %s answered %d", common.ErrUnavailable, url, resp.StatusCode)
	}
	return nil
}
