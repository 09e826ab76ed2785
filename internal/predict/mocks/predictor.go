package mocks

import (
	"context"
	"errors"

	"github.com/godilite/survey-form/internal/survey"
)

// MockPredictor is a mock implementation of the Predictor interface.
type MockPredictor struct {
	PredictFunc func(ctx context.Context, payload survey.Payload) (survey.PredictionResult, error)
}

// Predict implements the Predictor interface
func (m *MockPredictor) Predict(ctx context.Context, payload survey.Payload) (survey.PredictionResult, error) {
	if m.PredictFunc != nil {
		return m.PredictFunc(ctx, payload)
	}
	return survey.PredictionResult{}, errors.New("PredictFunc not implemented")
}
