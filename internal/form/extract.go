package form

import (
	"github.com/godilite/survey-form/internal/survey"
	"go.uber.org/zap"
)

// Extractor turns a page into a survey payload.
type Extractor struct {
	logger *zap.Logger
}

func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger.Named("extractor")}
}

// CountCheckboxes returns the selected star of a group, or 0 when the group
// is missing or unanswered. Two different selected stars make the group
// ambiguous and it is reported as unanswered.
func (e *Extractor) CountCheckboxes(page Page, key string) int {
	options, ok := page.Group(key)
	if !ok {
		e.logger.Warn("rating group not found", zap.String("group", key))
		return survey.Unanswered
	}

	selected := survey.Unanswered
	for _, opt := range options {
		if !opt.Checked || opt.Value < survey.MinRating || opt.Value > survey.MaxRating {
			continue
		}
		if selected != survey.Unanswered && selected != opt.Value {
			e.logger.Warn("multiple stars selected in rating group",
				zap.String("group", key),
				zap.Int("first", selected),
				zap.Int("second", opt.Value))
			return survey.Unanswered
		}
		selected = opt.Value
	}
	return selected
}

// Extract reads every rating group into a fresh payload.
func (e *Extractor) Extract(page Page) survey.Payload {
	var payload survey.Payload
	for _, key := range survey.GroupKeys {
		payload.Set(key, e.CountCheckboxes(page, key))
	}
	return payload
}
