package survey

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var ErrMalformedResult = errors.New("malformed prediction result")

// PredictionResult is the scoring service's answer for one payload.
type PredictionResult struct {
	Prediction  bool    `json:"prediction"`
	Probability float64 `json:"probability"`
}

// Percentage is the probability as a whole-number percentage.
func (r PredictionResult) Percentage() int {
	return int(math.Round(100 * r.Probability))
}

// UnmarshalJSON requires both fields. The prediction may be a JSON bool
// or the integers 0 and 1, which is what the scoring service emits.
func (r *PredictionResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Prediction  json.RawMessage `json:"prediction"`
		Probability *float64        `json:"probability"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}
	if len(raw.Prediction) == 0 || raw.Probability == nil {
		return fmt.Errorf("%w: prediction and probability are required", ErrMalformedResult)
	}

	prediction, err := parsePrediction(raw.Prediction)
	if err != nil {
		return err
	}

	p := *raw.Probability
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("%w: probability %v outside [0,1]", ErrMalformedResult, p)
	}

	r.Prediction = prediction
	r.Probability = p
	return nil
}

func parsePrediction(raw json.RawMessage) (bool, error) {
	switch string(bytes.TrimSpace(raw)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return false, fmt.Errorf("%w: prediction is null", ErrMalformedResult)
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		switch n {
		case 1:
			return true, nil
		case 0:
			return false, nil
		}
	}
	return false, fmt.Errorf("%w: prediction %s is not a boolean", ErrMalformedResult, raw)
}
