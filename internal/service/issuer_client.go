package service

import (
	"context"
	"fmt"

	"github.com/fadilmartias/cert-verifier/internal/config"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// IssuerClient is the single HTTP client used against the issuer's servers.
// Every request waits on a shared limiter so parallel workers cannot flood
// the issuer.
type IssuerClient struct {
	client  *resty.Client
	limiter *rate.Limiter
}

func NewIssuerClient(cfg *config.VerifierConfig) *IssuerClient {
	client := resty.New().
		SetTimeout(cfg.HTTPTimeout).
		SetHeader("User-Agent", cfg.UserAgent)

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Workers
	if burst <= 0 {
		burst = 1
	}
	return &IssuerClient{
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Get performs one GET. Transport failures and non-2xx statuses are both
// returned as errors.
func (c *IssuerClient) Get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	resp, err := c.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode())
	}
	return resp.Body(), nil
}
