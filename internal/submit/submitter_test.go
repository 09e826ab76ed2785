package submit

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/godilite/survey-form/internal/form"
	"github.com/godilite/survey-form/internal/overlay"
	"github.com/godilite/survey-form/internal/predict"
	predictmocks "github.com/godilite/survey-form/internal/predict/mocks"
	"github.com/godilite/survey-form/internal/submit/mocks"
	"github.com/godilite/survey-form/internal/survey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func answeredPage() form.Selections {
	return form.Selections{
		survey.CityServices:  5,
		survey.HousingCosts:  4,
		survey.SchoolQuality: 3,
		survey.LocalPolicies: 2,
		survey.Maintenance:   1,
		survey.SocialEvents:  5,
	}
}

func TestNewFormSubmitter(t *testing.T) {
	t.Run("nil predictor panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewFormSubmitter(nil, zap.NewNop())
		})
	})

	t.Run("nil logger gets default", func(t *testing.T) {
		s := NewFormSubmitter(&predictmocks.MockPredictor{}, nil)
		assert.NotNil(t, s.logger)
		assert.Equal(t, StateIdle, s.State("anyone"))
	})
}

func TestSubmitEndToEndExample(t *testing.T) {
	var sent survey.Payload
	predictor := &predictmocks.MockPredictor{
		PredictFunc: func(ctx context.Context, payload survey.Payload) (survey.PredictionResult, error) {
			sent = payload
			return survey.PredictionResult{Prediction: true, Probability: 0.82}, nil
		},
	}
	health := &mocks.HealthRecorder{}
	s := NewFormSubmitter(predictor, zap.NewNop(), WithHealthReporter(health))

	out := s.Submit(context.Background(), "session-1", answeredPage())

	require.NoError(t, out.Err)
	assert.Equal(t, survey.Payload{
		CityServices:  5,
		HousingCosts:  4,
		SchoolQuality: 3,
		LocalPolicies: 2,
		Maintenance:   1,
		SocialEvents:  5,
	}, sent)
	require.NotNil(t, out.Result)
	assert.Equal(t, overlay.KindResult, out.Overlay.Kind)
	assert.Equal(t, "green", out.Overlay.HeadingColor)
	assert.Equal(t, 82, out.Overlay.Percentage)
	assert.Contains(t, out.Overlay.Lines[0], "82%")
	assert.Contains(t, out.Overlay.Lines[0], "you are happy")
	assert.Equal(t, StateDone, s.State("session-1"))

	healthy, ok := health.Last()
	assert.True(t, ok)
	assert.True(t, healthy)
}

func TestSubmitEveryAnsweredCombinationIsSent(t *testing.T) {
	for v := survey.MinRating; v <= survey.MaxRating; v++ {
		page := form.Selections{}
		for _, key := range survey.GroupKeys {
			page[key] = v
		}

		var sent survey.Payload
		predictor := &predictmocks.MockPredictor{
			PredictFunc: func(ctx context.Context, payload survey.Payload) (survey.PredictionResult, error) {
				sent = payload
				return survey.PredictionResult{Prediction: v >= 3, Probability: float64(v) / 5}, nil
			},
		}

		out := NewFormSubmitter(predictor, zap.NewNop()).Submit(context.Background(), "s", page)

		require.NoError(t, out.Err)
		assert.Equal(t, []int{v, v, v, v, v, v}, sent.Values())
		assert.Equal(t, v*20, out.Overlay.Percentage)
		if v >= 3 {
			assert.Equal(t, overlay.ColorAffirmative, out.Overlay.HeadingColor)
		} else {
			assert.Equal(t, overlay.ColorNegative, out.Overlay.HeadingColor)
			assert.Contains(t, out.Overlay.Lines[0], "unhappy")
		}
	}
}

func TestSubmitUnansweredNeverCallsNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"prediction":true,"probability":0.5}`))
	}))
	defer srv.Close()

	s := NewFormSubmitter(predict.NewClient(srv.URL), zap.NewNop())

	// Every non-empty subset of groups left unanswered.
	for mask := 1; mask < 1<<len(survey.GroupKeys); mask++ {
		page := answeredPage()
		for i, key := range survey.GroupKeys {
			if mask&(1<<i) != 0 {
				page[key] = survey.Unanswered
			}
		}

		out := s.Submit(context.Background(), "s", page)

		require.ErrorIs(t, out.Err, survey.ErrUnanswered)
		assert.Equal(t, overlay.UnansweredMessage, out.Overlay.Lines)
		assert.Nil(t, out.Result)
	}

	assert.Zero(t, calls.Load())
	assert.Equal(t, StateIdle, s.State("s"))
}

func TestSubmitServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	health := &mocks.HealthRecorder{}
	saved := false
	history := &mocks.MockHistoryStore{
		SaveFunc: func(ctx context.Context, payload survey.Payload, result survey.PredictionResult) (int64, error) {
			saved = true
			return 1, nil
		},
	}
	s := NewFormSubmitter(predict.NewClient(srv.URL), zap.NewNop(), WithHistory(history), WithHealthReporter(health))

	out := s.Submit(context.Background(), "s", answeredPage())

	assert.ErrorIs(t, out.Err, predict.ErrTransmission)
	assert.Equal(t, overlay.KindError, out.Overlay.Kind)
	assert.Equal(t, overlay.TransmissionMessage, out.Overlay.Lines)
	assert.Nil(t, out.Result)
	assert.False(t, saved)
	assert.Equal(t, []bool{false}, health.Reports)
}

func TestSubmitConnectionRefused(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())

	out := NewFormSubmitter(predict.NewClient("http://"+addr), zap.NewNop()).
		Submit(context.Background(), "s", answeredPage())

	assert.ErrorIs(t, out.Err, predict.ErrTransmission)
	assert.Equal(t, overlay.TransmissionMessage, out.Overlay.Lines)
}

func TestSubmitWrapsForeignPredictorErrors(t *testing.T) {
	predictor := &predictmocks.MockPredictor{
		PredictFunc: func(ctx context.Context, payload survey.Payload) (survey.PredictionResult, error) {
			return survey.PredictionResult{}, errors.New("boom")
		},
	}

	out := NewFormSubmitter(predictor, zap.NewNop()).Submit(context.Background(), "s", answeredPage())

	assert.ErrorIs(t, out.Err, predict.ErrTransmission)
	assert.Contains(t, out.Err.Error(), "boom")
	assert.NotContains(t, out.Overlay.Lines, "boom")
}

func TestSubmitAbandonedByCallerKeepsUpstreamHealthy(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	predictor := &predictmocks.MockPredictor{
		PredictFunc: func(ctx context.Context, payload survey.Payload) (survey.PredictionResult, error) {
			cancel()
			return survey.PredictionResult{}, ctx.Err()
		},
	}
	health := &mocks.HealthRecorder{}

	out := NewFormSubmitter(predictor, zap.NewNop(), WithHealthReporter(health)).Submit(ctx, "s", answeredPage())

	assert.ErrorIs(t, out.Err, predict.ErrTransmission)
	assert.ErrorIs(t, out.Err, context.Canceled)
	assert.Equal(t, overlay.TransmissionMessage, out.Overlay.Lines)
	assert.Empty(t, health.Reports)
}

func TestSubmitInFlightGate(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	predictor := &predictmocks.MockPredictor{
		PredictFunc: func(ctx context.Context, payload survey.Payload) (survey.PredictionResult, error) {
			if calls.Add(1) == 1 {
				close(entered)
				<-release
			}
			return survey.PredictionResult{Prediction: true, Probability: 0.6}, nil
		},
	}
	s := NewFormSubmitter(predictor, zap.NewNop())

	first := make(chan Outcome, 1)
	go func() {
		first <- s.Submit(context.Background(), "session-a", answeredPage())
	}()
	<-entered

	assert.Equal(t, StateInFlight, s.State("session-a"))

	second := s.Submit(context.Background(), "session-a", answeredPage())
	assert.ErrorIs(t, second.Err, ErrSubmissionInFlight)
	assert.Equal(t, overlay.InFlightMessage, second.Overlay.Lines)

	other := s.Submit(context.Background(), "session-b", answeredPage())
	assert.NoError(t, other.Err, "other sessions are not blocked")

	close(release)
	out := <-first
	assert.NoError(t, out.Err)
	assert.Equal(t, StateDone, s.State("session-a"))
	assert.Equal(t, int32(2), calls.Load())

	again := s.Submit(context.Background(), "session-a", answeredPage())
	assert.NoError(t, again.Err, "a finished session can submit again")
}

func TestSubmitRecordsHistory(t *testing.T) {
	var savedPayload survey.Payload
	var savedResult survey.PredictionResult
	history := &mocks.MockHistoryStore{
		SaveFunc: func(ctx context.Context, payload survey.Payload, result survey.PredictionResult) (int64, error) {
			savedPayload, savedResult = payload, result
			return 7, nil
		},
	}
	predictor := &predictmocks.MockPredictor{
		PredictFunc: func(ctx context.Context, payload survey.Payload) (survey.PredictionResult, error) {
			return survey.PredictionResult{Prediction: false, Probability: 0.7}, nil
		},
	}

	out := NewFormSubmitter(predictor, zap.NewNop(), WithHistory(history)).Submit(context.Background(), "s", answeredPage())

	require.NoError(t, out.Err)
	assert.Equal(t, []int{5, 4, 3, 2, 1, 5}, savedPayload.Values())
	assert.Equal(t, survey.PredictionResult{Prediction: false, Probability: 0.7}, savedResult)
}

func TestSubmitHistoryFailureKeepsResult(t *testing.T) {
	history := &mocks.MockHistoryStore{
		SaveFunc: func(ctx context.Context, payload survey.Payload, result survey.PredictionResult) (int64, error) {
			return 0, errors.New("disk full")
		},
	}
	predictor := &predictmocks.MockPredictor{
		PredictFunc: func(ctx context.Context, payload survey.Payload) (survey.PredictionResult, error) {
			return survey.PredictionResult{Prediction: true, Probability: 0.82}, nil
		},
	}

	out := NewFormSubmitter(predictor, zap.NewNop(), WithHistory(history)).Submit(context.Background(), "s", answeredPage())

	assert.NoError(t, out.Err)
	assert.Equal(t, overlay.KindResult, out.Overlay.Kind)
}

func TestForget(t *testing.T) {
	predictor := &predictmocks.MockPredictor{
		PredictFunc: func(ctx context.Context, payload survey.Payload) (survey.PredictionResult, error) {
			return survey.PredictionResult{Prediction: true, Probability: 0.5}, nil
		},
	}
	s := NewFormSubmitter(predictor, zap.NewNop())

	s.Submit(context.Background(), "s", answeredPage())
	assert.Equal(t, StateDone, s.State("s"))

	s.Forget("s")
	assert.Equal(t, StateIdle, s.State("s"))
}

func TestRequestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "in-flight", StateInFlight.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "unknown", RequestState(9).String())
}
