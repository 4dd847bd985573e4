package lookup

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedService wraps a Service with client-side rate limiting toward
// the upstream API. It is not a retry mechanism; a lookup either gets a
// token (possibly after waiting) or fails with the context's error.
type RateLimitedService struct {
	service Service
	limiter *rate.Limiter
	name    string
}

// NewRateLimitedService allows rps requests per second with the given
// burst. rps may be fractional.
func NewRateLimitedService(service Service, rps float64, burst int) *RateLimitedService {
	return &RateLimitedService{
		service: service,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    fmt.Sprintf("%s [rate limited]", service.Name()),
	}
}

func (r *RateLimitedService) Lookup(ctx context.Context, req Request) (*Result, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.service.Lookup(ctx, req)
}

func (r *RateLimitedService) Name() string {
	return r.name
}
