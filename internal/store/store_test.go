package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takeoffhq/takeoff-go/internal/models"
	"github.com/takeoffhq/takeoff-go/internal/store"
	"github.com/takeoffhq/takeoff-go/internal/testutil"
)

func sampleProject(id string, status models.ProjectStatus) *models.Project {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.Project{
		ProjectID:      id,
		Name:           "Office Tower",
		FileName:       "plan.pdf",
		FileSizeMB:     2.5,
		SelectedTrades: []string{"flooring", "painting"},
		Status:         status,
		CreatedBy:      "estimator",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestUpsertAndGetProject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := store.New(db)

	p := sampleProject("p1", models.StatusUploaded)
	require.NoError(t, st.UpsertProject(p))

	got, err := st.GetProject("p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Office Tower", got.Name)
	assert.Equal(t, []string{"flooring", "painting"}, got.SelectedTrades)
	assert.Equal(t, models.StatusUploaded, got.Status)

	// Upsert with a new status replaces the row.
	p.Status = models.StatusCompleted
	require.NoError(t, st.UpsertProject(p))
	got, err = st.GetProject("p1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
}

func TestGetProjectMissing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := store.New(db)

	got, err := st.GetProject("nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListProjectsFilterByStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := store.New(db)

	require.NoError(t, st.UpsertProject(sampleProject("p1", models.StatusUploaded)))
	require.NoError(t, st.UpsertProject(sampleProject("p2", models.StatusCompleted)))
	require.NoError(t, st.UpsertProject(sampleProject("p3", models.StatusCompleted)))

	all, err := st.ListProjects("")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	completed, err := st.ListProjects(models.StatusCompleted)
	require.NoError(t, err)
	assert.Len(t, completed, 2)
}

func TestSaveAndGetResult(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := store.New(db)

	require.NoError(t, st.UpsertProject(sampleProject("p1", models.StatusCompleted)))

	result := &models.TakeoffResult{
		ProjectID: "p1",
		Status:    models.StatusCompleted,
		Trades:    []string{"flooring"},
		Quantities: map[string]models.TradeQuantity{
			"flooring": {Total: 1200, Unit: "sqft", Confidence: 0.9},
		},
		ConfidenceScores: map[string]float64{"flooring": 0.9, "overall": 0.9},
	}
	require.NoError(t, st.SaveResult("p1", result))

	got, err := st.GetResult("p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1200.0, got.Quantities["flooring"].Total)
	assert.Equal(t, 0.9, got.OverallConfidence())

	missing, err := st.GetResult("p2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPruneMissing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := store.New(db)

	require.NoError(t, st.UpsertProject(sampleProject("p1", models.StatusUploaded)))
	require.NoError(t, st.UpsertProject(sampleProject("p2", models.StatusUploaded)))
	require.NoError(t, st.UpsertProject(sampleProject("p3", models.StatusUploaded)))

	pruned, err := st.PruneMissing([]string{"p1", "p3"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	remaining, err := st.ListProjects("")
	require.NoError(t, err)
	assert.Len(t, remaining, 2)

	// An empty keep list clears the cache.
	pruned, err = st.PruneMissing(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pruned)
}
