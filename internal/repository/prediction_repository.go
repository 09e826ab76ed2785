package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/godilite/survey-form/internal/repository/models"
	"github.com/godilite/survey-form/internal/survey"
)

const schema = `
	CREATE TABLE IF NOT EXISTS happy_predictions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		city_services INTEGER NOT NULL,
		housing_costs INTEGER NOT NULL,
		school_quality INTEGER NOT NULL,
		local_policies INTEGER NOT NULL,
		maintenance INTEGER NOT NULL,
		social_events INTEGER NOT NULL,
		prediction INTEGER NOT NULL,
		probability REAL NOT NULL,
		created_at TEXT NOT NULL
	)
`

type PredictionRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewPredictionRepository(db *sql.DB) *PredictionRepository {
	return &PredictionRepository{db: db, now: time.Now}
}

// EnsureSchema creates the happy_predictions table if it does not exist.
func (r *PredictionRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create happy_predictions: %w", err)
	}
	return nil
}

// Save inserts one prediction and returns its id.
func (r *PredictionRepository) Save(ctx context.Context, payload survey.Payload, result survey.PredictionResult) (int64, error) {
	const query = `
		INSERT INTO happy_predictions (
			city_services, housing_costs, school_quality, local_policies,
			maintenance, social_events, prediction, probability, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	prediction := 0
	if result.Prediction {
		prediction = 1
	}

	res, err := r.db.ExecContext(ctx, query,
		payload.CityServices,
		payload.HousingCosts,
		payload.SchoolQuality,
		payload.LocalPolicies,
		payload.Maintenance,
		payload.SocialEvents,
		prediction,
		result.Probability,
		r.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert prediction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert prediction id: %w", err)
	}
	return id, nil
}

// List returns every recorded prediction ordered by id.
func (r *PredictionRepository) List(ctx context.Context) ([]models.PredictionRecord, error) {
	const query = `
		SELECT id, city_services, housing_costs, school_quality, local_policies,
			maintenance, social_events, prediction, probability, created_at
		FROM happy_predictions
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query happy_predictions: %w", err)
	}
	defer rows.Close()

	records := make([]models.PredictionRecord, 0)
	for rows.Next() {
		var rec models.PredictionRecord
		var createdAt string
		if err := rows.Scan(
			&rec.ID,
			&rec.CityServices,
			&rec.HousingCosts,
			&rec.SchoolQuality,
			&rec.LocalPolicies,
			&rec.Maintenance,
			&rec.SocialEvents,
			&rec.Prediction,
			&rec.Probability,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan happy_predictions row: %w", err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at of row %d: %w", rec.ID, err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate happy_predictions: %w", err)
	}
	return records, nil
}
