package web

import (
	"context"

	"github.com/godilite/survey-form/internal/form"
	"github.com/godilite/survey-form/internal/repository/models"
	"github.com/godilite/survey-form/internal/submit"
)

type Submitter interface {
	Submit(ctx context.Context, session string, page form.Page) submit.Outcome
	Forget(session string)
}

type HistoryLister interface {
	List(ctx context.Context) ([]models.PredictionRecord, error)
}
