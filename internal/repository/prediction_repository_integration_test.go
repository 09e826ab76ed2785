package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/survey-form/internal/repository"
	"github.com/godilite/survey-form/internal/survey"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestPredictionRepository_Integration(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewPredictionRepository(setupTestDB(t))

	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.EnsureSchema(ctx), "schema creation is idempotent")

	t.Run("empty table", func(t *testing.T) {
		records, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, records)
		assert.NotNil(t, records)
	})

	inputs := []struct {
		payload survey.Payload
		result  survey.PredictionResult
	}{
		{
			payload: survey.Payload{CityServices: 5, HousingCosts: 4, SchoolQuality: 3, LocalPolicies: 2, Maintenance: 1, SocialEvents: 5},
			result:  survey.PredictionResult{Prediction: true, Probability: 0.82},
		},
		{
			payload: survey.Payload{CityServices: 1, HousingCosts: 1, SchoolQuality: 2, LocalPolicies: 1, Maintenance: 1, SocialEvents: 2},
			result:  survey.PredictionResult{Prediction: false, Probability: 0.67},
		},
	}

	before := time.Now().UTC().Add(-time.Second)
	var ids []int64
	for _, in := range inputs {
		id, err := repo.Save(ctx, in.payload, in.result)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	t.Run("ids increase", func(t *testing.T) {
		require.Len(t, ids, 2)
		assert.Less(t, ids[0], ids[1])
	})

	t.Run("list returns rows in id order", func(t *testing.T) {
		records, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, records, 2)

		first := records[0]
		assert.Equal(t, ids[0], first.ID)
		assert.Equal(t, 5, first.CityServices)
		assert.Equal(t, 4, first.HousingCosts)
		assert.Equal(t, 3, first.SchoolQuality)
		assert.Equal(t, 2, first.LocalPolicies)
		assert.Equal(t, 1, first.Maintenance)
		assert.Equal(t, 5, first.SocialEvents)
		assert.Equal(t, 1, first.Prediction)
		assert.InDelta(t, 0.82, first.Probability, 1e-9)
		assert.True(t, first.CreatedAt.After(before))

		second := records[1]
		assert.Equal(t, 0, second.Prediction)
		assert.InDelta(t, 0.67, second.Probability, 1e-9)
	})
}

func TestPredictionRepository_MissingTable(t *testing.T) {
	repo := repository.NewPredictionRepository(setupTestDB(t))

	_, err := repo.Save(context.Background(), survey.Payload{}, survey.PredictionResult{})
	assert.Error(t, err)

	_, err = repo.List(context.Background())
	assert.Error(t, err)
}
