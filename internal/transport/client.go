// Package transport is the HTTP client for the billing backend REST surface.
package transport

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
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/railzwaylabs/billinghub/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxErrorBody = 64 << 10

type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	Burst     int
}

// Client sends JSON requests to the backend and maps failures onto the
// domain error taxonomy. It never retries.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

func New(cfg Config, log *zap.Logger, metrics *Metrics) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend base url: %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
		log:     log.Named("transport"),
		metrics: metrics,
		tracer:  otel.Tracer("github.com/railzwaylabs/billinghub/internal/transport"),
	}, nil
}

// Path joins escaped segments into an absolute request path.
func Path(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	return "/" + strings.Join(escaped, "/")
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, span := c.tracer.Start(ctx, method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
	)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return c.fail(span, &domain.NetworkError{Method: method, Path: path, Err: err})
		}
	}

	endpoint, err := url.Parse(c.baseURL.String() + path)
	if err != nil {
		return c.fail(span, &domain.NetworkError{Method: method, Path: path, Err: err})
	}
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return c.fail(span, fmt.Errorf("encode request body: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return c.fail(span, &domain.NetworkError{Method: method, Path: path, Err: err})
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(method, "error", time.Since(start))
		c.log.Warn("backend request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return c.fail(span, &domain.NetworkError{Method: method, Path: path, Err: err})
	}
	defer resp.Body.Close()

	c.metrics.observe(method, strconv.Itoa(resp.StatusCode), time.Since(start))
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		upstream := &domain.UpstreamError{Status: resp.StatusCode, VendorMessage: VendorMessage(raw)}
		c.log.Info("backend returned error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("vendor_message", upstream.VendorMessage),
		)
		return c.fail(span, upstream)
	}

	if out == nil {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(span, &domain.NetworkError{Method: method, Path: path, Err: err})
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return c.fail(span, fmt.Errorf("decode %s %s response: %w", method, path, err))
	}
	return nil
}

func (c *Client) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// VendorMessage extracts a human readable message from the error shapes the
// backend passes through from vendors. Unparseable bodies yield their
// trimmed text.
func VendorMessage(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
		Errors  []any           `json:"errors"`
		Reasons []struct {
			Message string `json:"message"`
		} `json:"reasons"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return truncate(string(raw))
	}

	if len(envelope.Error) > 0 {
		var text string
		if err := json.Unmarshal(envelope.Error, &text); err == nil && text != "" {
			return text
		}
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(envelope.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	if len(envelope.Errors) > 0 {
		msgs := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			switch v := e.(type) {
			case string:
				msgs = append(msgs, v)
			case map[string]any:
				if m, ok := v["message"].(string); ok {
					msgs = append(msgs, m)
				}
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	if len(envelope.Reasons) > 0 {
		msgs := make([]string, 0, len(envelope.Reasons))
		for _, r := range envelope.Reasons {
			if r.Message != "" {
				msgs = append(msgs, r.Message)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func truncate(s string) string {
	const limit = 512
	if len(s) > limit {
		return s[:limit]
	}
	return s
}

// IsStatus reports whether err is an UpstreamError with the given status.
func IsStatus(err error, status int) bool {
	var upstream *domain.UpstreamError
	return errors.As(err, &upstream) && upstream.Status == status
}
