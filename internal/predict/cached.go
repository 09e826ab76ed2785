package predict

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/godilite/survey-form/internal/survey"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultCacheTTL   = 10 * time.Minute
	defaultSetTimeout = 5 * time.Second
	cacheKeyPrefix    = "predict"

	// defaultFetchTimeout bounds the shared upstream call, which runs
	// detached from every caller's context.
	defaultFetchTimeout = 30 * time.Second
)

// CachedPredictor serves repeated payloads from a cache and collapses
// concurrent identical payloads into one upstream call.
type CachedPredictor struct {
	next    Predictor
	cache   Cacher
	sfGroup singleflight.Group
	ttl     time.Duration
	logger  *zap.Logger
}

func NewCachedPredictor(next Predictor, cache Cacher, ttl time.Duration, logger *zap.Logger) *CachedPredictor {
	if next == nil {
		panic("nil Predictor provided to NewCachedPredictor")
	}
	if cache == nil {
		panic("nil Cacher provided to NewCachedPredictor")
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedPredictor{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.Named("predict-cache"),
	}
}

// CacheKey identifies a payload, e.g. "predict:5:4:3:2:1:5".
func CacheKey(payload survey.Payload) string {
	parts := []string{cacheKeyPrefix}
	for _, v := range payload.Values() {
		parts = append(parts, strconv.Itoa(v))
	}
	return strings.Join(parts, ":")
}

// addTTLJitter adds up to ±15s so entries written together expire apart.
func addTTLJitter(ttl time.Duration) time.Duration {
	if ttl <= time.Minute {
		return ttl
	}
	return ttl + time.Duration(rand.Intn(30)-15)*time.Second
}

func (p *CachedPredictor) Predict(ctx context.Context, payload survey.Payload) (survey.PredictionResult, error) {
	key := CacheKey(payload)

	var cached survey.PredictionResult
	err := p.cache.Get(ctx, key, &cached)
	switch {
	case err == nil:
		p.logger.Debug("cache hit", zap.String("key", key))
		return cached, nil

	case errors.Is(err, redis.Nil):
		p.logger.Debug("cache miss", zap.String("key", key))

	default:
		p.logger.Warn("cache get error (treating as miss)", zap.String("key", key), zap.Error(err))
	}

	ch := p.sfGroup.DoChan(key, func() (any, error) {
		// The flight outlives any single caller; one visitor leaving must not
		// fail the others waiting on the same payload.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultFetchTimeout)
		defer cancel()

		result, err := p.next.Predict(fetchCtx, payload)
		if err != nil {
			return nil, err
		}
		p.store(fetchCtx, key, result)
		return result, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return survey.PredictionResult{}, fmt.Errorf("%w: %w", ErrTransmission, ctx.Err())
	}
	if res.Err != nil {
		return survey.PredictionResult{}, res.Err
	}

	result, ok := res.Val.(survey.PredictionResult)
	if !ok {
		p.logger.Error("singleflight type mismatch", zap.String("key", key))
		return survey.PredictionResult{}, fmt.Errorf("%w: type mismatch for key %q", ErrTransmission, key)
	}

	if res.Shared {
		p.logger.Debug("singleflight shared result", zap.String("key", key))
	}
	return result, nil
}

func (p *CachedPredictor) store(ctx context.Context, key string, result survey.PredictionResult) {
	setCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultSetTimeout)
	defer cancel()

	ttl := addTTLJitter(p.ttl)
	if err := p.cache.Set(setCtx, key, result, ttl); err != nil {
		p.logger.Warn("failed to set cache on miss", zap.String("key", key), zap.Error(err))
		return
	}
	p.logger.Debug("cache populated on miss", zap.String("key", key), zap.Duration("ttl", ttl))
}
