package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/godilite/survey-form/internal/survey"
	"go.uber.org/zap"
)

const (
	predictPath      = "/predict"
	contentType      = "application/json; charset=UTF-8"
	maxResponseBytes = 1 << 20
)

var ErrTransmission = errors.New("prediction request failed")

// StatusError is returned for non-2xx responses from the scoring service.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

// Client posts survey payloads to a scoring service's /predict endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithTimeout bounds each prediction call. Zero leaves the call bounded
// only by the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.timeout = d }
}

func WithLogger(logger *zap.Logger) Option {
	return func(cl *Client) {
		if logger != nil {
			cl.logger = logger
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("predict-client")
	return c
}

// Endpoint returns the full URL the client posts to.
func (c *Client) Endpoint() string {
	return c.baseURL + predictPath
}

// Predict makes a single attempt; every failure wraps ErrTransmission.
func (c *Client) Predict(ctx context.Context, payload survey.Payload) (survey.PredictionResult, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return survey.PredictionResult{}, fmt.Errorf("%w: marshal payload: %w", ErrTransmission, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return survey.PredictionResult{}, fmt.Errorf("%w: build request: %w", ErrTransmission, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return survey.PredictionResult{}, fmt.Errorf("%w: %w", ErrTransmission, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return survey.PredictionResult{}, fmt.Errorf("%w: %w", ErrTransmission, &StatusError{StatusCode: resp.StatusCode})
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return survey.PredictionResult{}, fmt.Errorf("%w: read response: %w", ErrTransmission, err)
	}

	var result survey.PredictionResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return survey.PredictionResult{}, fmt.Errorf("%w: decode response: %w", ErrTransmission, err)
	}

	c.logger.Debug("prediction received",
		zap.Bool("prediction", result.Prediction),
		zap.Float64("probability", result.Probability),
		zap.Duration("duration", time.Since(start)))

	return result, nil
}
