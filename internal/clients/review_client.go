// internal/clients/review_client.go
package clients

import (
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

	"recommendation-service/internal/domain"
	"recommendation-service/internal/metrics"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// ErrReviewSourceUnavailable wraps every failure to obtain reviews.
var ErrReviewSourceUnavailable = errors.New("review source unavailable")

// ReviewSource fetches review bundles for a batch of film ids.
type ReviewSource interface {
	FetchReviews(ctx context.Context, ids []int) ([]domain.ReviewBundle, error)
}

// ReviewSourceConfig configures HTTPReviewSource.
type ReviewSourceConfig struct {
	BaseURL string
	Timeout time.Duration
	// RateLimit is the outbound request rate per second; zero means unlimited.
	RateLimit float64
	// FailureThreshold consecutive failures open the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before a trial request.
	OpenTimeout time.Duration
	// HTTPClient defaults to a client without its own timeout.
	HTTPClient *http.Client
}

const (
	breakerName      = "review-source"
	maxResponseBytes = 8 << 20
)

// HTTPReviewSource calls the external review API over HTTP.
type HTTPReviewSource struct {
	baseURL *url.URL
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]domain.ReviewBundle]
	logger  *slog.Logger
}

// NewHTTPReviewSource builds the review client. Zero-valued knobs get defaults:
// 5s timeout, 5 failures to trip, 30s open.
func NewHTTPReviewSource(cfg ReviewSourceConfig, logger *slog.Logger) (*HTTPReviewSource, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid review source URL %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	threshold := cfg.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker[[]domain.ReviewBundle](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A caller hanging up says nothing about the upstream.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Review source circuit breaker changed state",
				slog.String("breaker", name), slog.String("from", from.String()), slog.String("to", to.String()))
			metrics.SetCircuitBreakerState(name, from.String(), to.String(), int(to))
		},
	})

	return &HTTPReviewSource{
		baseURL: base,
		timeout: cfg.Timeout,
		http:    cfg.HTTPClient,
		limiter: limiter,
		breaker: breaker,
		logger:  logger,
	}, nil
}

// FetchReviews issues one GET {base}?films=1,2,3 for all ids.
func (c *HTTPReviewSource) FetchReviews(ctx context.Context, ids []int) ([]domain.ReviewBundle, error) {
	c.logger.DebugContext(ctx, "Fetching reviews from review source", slog.Int("films", len(ids)))

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", ErrReviewSourceUnavailable, err)
	}

	start := time.Now()
	bundles, err := c.breaker.Execute(func() ([]domain.ReviewBundle, error) {
		return c.fetch(ctx, ids)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.ObserveReviewFetch("rejected", 0)
			c.logger.WarnContext(ctx, "Review source call rejected by circuit breaker", slog.String("state", c.breaker.State().String()))
		} else {
			metrics.ObserveReviewFetch("error", time.Since(start))
			c.logger.ErrorContext(ctx, "Review source call failed", slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("%w: %w", ErrReviewSourceUnavailable, err)
	}

	metrics.ObserveReviewFetch("success", time.Since(start))
	c.logger.DebugContext(ctx, "Review source call successful", slog.Int("bundles", len(bundles)))
	return bundles, nil
}

func (c *HTTPReviewSource) fetch(ctx context.Context, ids []int) ([]domain.ReviewBundle, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, c.requestURL(ids), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var bundles []domain.ReviewBundle
	// Unmarshal rejects trailing data after the array.
	if err := json.Unmarshal(body, &bundles); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if bundles == nil {
		return nil, errors.New("decode response: expected a JSON array, got null")
	}
	return bundles, nil
}

// requestURL keeps the commas literal, as the upstream expects.
func (c *HTTPReviewSource) requestURL(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	u := *c.baseURL
	films := "films=" + strings.Join(parts, ",")
	if u.RawQuery == "" {
		u.RawQuery = films
	} else {
		u.RawQuery += "&" + films
	}
	return u.String()
}
