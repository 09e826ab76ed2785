package submit

import (
	"context"

	"github.com/godilite/survey-form/internal/survey"
)

type Predictor interface {
	Predict(ctx context.Context, payload survey.Payload) (survey.PredictionResult, error)
}

// HistoryStore records successful predictions.
type HistoryStore interface {
	Save(ctx context.Context, payload survey.Payload, result survey.PredictionResult) (int64, error)
}

// HealthReporter is told whether the last prediction call reached the
// scoring service.
type HealthReporter interface {
	ReportUpstream(healthy bool)
}
