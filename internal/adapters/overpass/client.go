// Package overpass implements ports.PlaceSource against an Overpass API
// interpreter endpoint.
package overpass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/turismap/internal/core/domain"
	"github.com/samirrijal/turismap/internal/pkg/metrics"
)

const (
	DefaultURL       = "https://overpass-api.de/api/interpreter"
	DefaultUserAgent = "TurisMap/1.0"
	DefaultTimeout   = 15 * time.Second

	// maxErrorBody bounds how much of an upstream error body is kept.
	maxErrorBody = 512
)

var tracer = otel.Tracer("github.com/samirrijal/turismap/internal/adapters/overpass")

// Client posts queries to the interpreter. It never retries.
type Client struct {
	endpoint  string
	userAgent string
	http      *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a Client for endpoint with a transport timeout.
func New(endpoint string, timeout time.Duration, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		endpoint:  endpoint,
		userAgent: DefaultUserAgent,
		http:      &http.Client{Timeout: timeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type response struct {
	Elements []domain.RawElement `json:"elements"`
}

// Execute sends one form-encoded POST and decodes the element list.
func (c *Client) Execute(ctx context.Context, query string) ([]domain.RawElement, error) {
	ctx, span := tracer.Start(ctx, "overpass.execute")
	defer span.End()

	start := time.Now()
	elements, status, err := c.do(ctx, query)
	metrics.ObserveOverpass(status, time.Since(start), err)

	span.SetAttributes(
		attribute.Int("http.status_code", status),
		attribute.Int("overpass.elements", len(elements)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "overpass request failed", "status", status, "error", err)
		return nil, err
	}
	return elements, nil
}

func (c *Client) do(ctx context.Context, query string) ([]domain.RawElement, int, error) {
	body := "data=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(body))
	if err != nil {
		return nil, 0, &domain.DataSourceError{Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, &domain.DataSourceError{Message: transportMessage(err), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &domain.DataSourceError{Status: resp.StatusCode, Message: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &domain.DataSourceError{
			Status:  resp.StatusCode,
			Message: upstreamMessage(resp.StatusCode, data),
		}
	}

	var out response
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, resp.StatusCode, &domain.DataSourceError{
			Status:  http.StatusBadGateway,
			Message: "invalid JSON from Overpass",
			Err:     err,
		}
	}
	return out.Elements, resp.StatusCode, nil
}

func transportMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return "Overpass request timed out"
	}
	return "Overpass unreachable"
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func upstreamMessage(status int, body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return fmt.Sprintf("Overpass returned %d %s", status, http.StatusText(status))
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return string(body)
}

// String implements fmt.Stringer for log output.
func (c *Client) String() string {
	return "overpass(" + c.endpoint + ", timeout=" + strconv.FormatInt(int64(c.http.Timeout/time.Second), 10) + "s)"
}
