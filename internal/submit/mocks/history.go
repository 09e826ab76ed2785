package mocks

import (
	"context"
	"sync"

	"github.com/godilite/survey-form/internal/survey"
)

// MockHistoryStore is a mock implementation of the HistoryStore interface.
type MockHistoryStore struct {
	SaveFunc func(ctx context.Context, payload survey.Payload, result survey.PredictionResult) (int64, error)
}

// Save implements the HistoryStore interface
func (m *MockHistoryStore) Save(ctx context.Context, payload survey.Payload, result survey.PredictionResult) (int64, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, payload, result)
	}
	return 1, nil
}

// HealthRecorder captures upstream health reports in order.
type HealthRecorder struct {
	mu      sync.Mutex
	Reports []bool
}

// ReportUpstream implements the HealthReporter interface
func (h *HealthRecorder) ReportUpstream(healthy bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Reports = append(h.Reports, healthy)
}

// Last returns the most recent report.
func (h *HealthRecorder) Last() (bool, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.Reports) == 0 {
		return false, false
	}
	return h.Reports[len(h.Reports)-1], true
}
