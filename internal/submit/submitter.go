package submit

import (
	"context"
	"errors"
	"fmt"

	"github.com/godilite/survey-form/internal/form"
	"github.com/godilite/survey-form/internal/overlay"
	"github.com/godilite/survey-form/internal/predict"
	"github.com/godilite/survey-form/internal/survey"
	"go.uber.org/zap"
)

const (
	ServiceName         = "survey.FormSubmitter"
	UpstreamServiceName = "survey.PredictUpstream"
)

var ErrSubmissionInFlight = errors.New("a submission is already in flight")

// Outcome is what one submit attempt produced. Err is nil only when
// Overlay carries a prediction.
type Outcome struct {
	Overlay overlay.Overlay
	Payload survey.Payload
	Result  *survey.PredictionResult
	Err     error
}

// FormSubmitter extracts the ratings from a page, validates them, asks the
// scoring service for a prediction and renders the overlay to show.
type FormSubmitter struct {
	extractor *form.Extractor
	predictor Predictor
	history   HistoryStore
	health    HealthReporter
	states    *stateTracker
	logger    *zap.Logger
}

type Option func(*FormSubmitter)

func WithHistory(h HistoryStore) Option {
	return func(s *FormSubmitter) { s.history = h }
}

func WithHealthReporter(r HealthReporter) Option {
	return func(s *FormSubmitter) { s.health = r }
}

// NewFormSubmitter creates a submitter; it panics without a predictor.
func NewFormSubmitter(predictor Predictor, logger *zap.Logger, opts ...Option) *FormSubmitter {
	if predictor == nil {
		panic("nil Predictor provided to NewFormSubmitter")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &FormSubmitter{
		extractor: form.NewExtractor(logger),
		predictor: predictor,
		states:    newStateTracker(),
		logger:    logger.Named("submitter"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the request state of a session.
func (s *FormSubmitter) State(session string) RequestState {
	return s.states.get(session)
}

// Forget drops the state of a finished session.
func (s *FormSubmitter) Forget(session string) {
	s.states.forget(session)
}

// Submit runs one submission for session. Unanswered groups never reach
// the network, and a session may only have one prediction in flight.
func (s *FormSubmitter) Submit(ctx context.Context, session string, page form.Page) Outcome {
	payload := s.extractor.Extract(page)

	if err := payload.Validate(); err != nil {
		s.logger.Info("submission rejected", zap.Error(err))
		return Outcome{
			Overlay: overlay.RenderError(overlay.UnansweredMessage...),
			Payload: payload,
			Err:     err,
		}
	}

	if !s.states.begin(session) {
		s.logger.Warn("submission while another is in flight", zap.String("session", session))
		return Outcome{
			Overlay: overlay.RenderError(overlay.InFlightMessage...),
			Payload: payload,
			Err:     ErrSubmissionInFlight,
		}
	}
	defer s.states.finish(session)

	result, err := s.predictor.Predict(ctx, payload)
	if err != nil {
		if !errors.Is(err, predict.ErrTransmission) {
			err = fmt.Errorf("%w: %w", predict.ErrTransmission, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			// The visitor went away; says nothing about the scoring service.
			s.logger.Info("submission abandoned", zap.String("session", session), zap.Error(err))
		} else {
			s.logger.Error("Error fetching prediction", zap.Error(err))
			s.reportUpstream(false)
		}
		return Outcome{
			Overlay: overlay.RenderError(overlay.TransmissionMessage...),
			Payload: payload,
			Err:     err,
		}
	}
	s.reportUpstream(true)

	s.record(ctx, payload, result)

	return Outcome{
		Overlay: overlay.RenderResult(result),
		Payload: payload,
		Result:  &result,
	}
}

func (s *FormSubmitter) reportUpstream(healthy bool) {
	if s.health != nil {
		s.health.ReportUpstream(healthy)
	}
}

func (s *FormSubmitter) record(ctx context.Context, payload survey.Payload, result survey.PredictionResult) {
	if s.history == nil {
		return
	}
	id, err := s.history.Save(context.WithoutCancel(ctx), payload, result)
	if err != nil {
		s.logger.Error("failed to save prediction", zap.Error(err))
		return
	}
	s.logger.Info("prediction saved",
		zap.Int64("id", id),
		zap.Bool("prediction", result.Prediction),
		zap.Int("percentage", result.Percentage()))
}
