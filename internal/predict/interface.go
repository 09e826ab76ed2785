package predict

import (
	"context"
	"time"

	"github.com/godilite/survey-form/internal/survey"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

type Predictor interface {
	Predict(ctx context.Context, payload survey.Payload) (survey.PredictionResult, error)
}
