package llm

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/matzpen-project/matzpen/internal/cache"
)

// Observer wraps a provider with rate limiting and response caching.
// The cache key is derived from the model and the full prompt, so an
// unchanged evaluation run hits the cache instead of the API.
type Observer struct {
	provider Provider
	limiter  *rate.Limiter
	cache    cache.Cache
}

// NewObserver builds an observer. requestsPerMinute <= 0 disables the
// limiter; a nil cache disables caching.
func NewObserver(provider Provider, requestsPerMinute float64, c cache.Cache) *Observer {
	var limiter *rate.Limiter
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerMinute/60), 1)
	}
	return &Observer{provider: provider, limiter: limiter, cache: c}
}

// Observe returns observations for the request, serving from cache
// when possible.
func (o *Observer) Observe(ctx context.Context, req ObservationRequest) (*ObservationResponse, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req.Evaluation, req.Cross)
		req.Prompt = prompt
	}

	key := cache.Key(req.Model + "\x00" + prompt)
	if o.cache != nil {
		if data, found := o.cache.Get(key); found {
			return &ObservationResponse{Text: string(data), Model: req.Model}, nil
		}
	}

	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := o.provider.Observe(ctx, req)
	if err != nil {
		return nil, err
	}
	if o.cache != nil {
		_ = o.cache.Set(key, []byte(resp.Text), 0)
	}
	return resp, nil
}
