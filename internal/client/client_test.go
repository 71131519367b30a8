package client_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takeoffhq/takeoff-go/internal/client"
	"github.com/takeoffhq/takeoff-go/internal/models"
	"github.com/takeoffhq/takeoff-go/internal/testutil"
)

func TestCreateAndGetProject(t *testing.T) {
	fb := testutil.SetupBackend(t)
	c := client.New(fb.URL())

	resp, err := c.CreateProject(context.Background(), client.CreateProjectInput{
		FileName: "floor-plan.pdf",
		File:     strings.NewReader("%PDF-1.4 fake"),
		Trades:   []string{"flooring", "painting"},
		Name:     "Office Tower",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ProjectID)
	assert.Equal(t, "uploaded", resp.Status)

	p, err := c.GetProject(context.Background(), resp.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, "Office Tower", p.Name)
	assert.Equal(t, "floor-plan.pdf", p.FileName)
	assert.Equal(t, models.StatusUploaded, p.Status)
}

func TestCreateProjectRequiresTrades(t *testing.T) {
	fb := testutil.SetupBackend(t)
	c := client.New(fb.URL())

	_, err := c.CreateProject(context.Background(), client.CreateProjectInput{
		FileName: "plan.pdf",
		File:     strings.NewReader("x"),
	})
	require.Error(t, err)
}

func TestGetProjectNotFound(t *testing.T) {
	fb := testutil.SetupBackend(t)
	c := client.New(fb.URL())

	_, err := c.GetProject(context.Background(), "nope")
	require.Error(t, err)

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "Project not found", apiErr.Detail)
}

func TestListProjectsAndTrades(t *testing.T) {
	fb := testutil.SetupBackend(t)
	fb.AddProject(&models.Project{ProjectID: "p1", Name: "A", Status: models.StatusUploaded})
	fb.AddProject(&models.Project{ProjectID: "p2", Name: "B", Status: models.StatusCompleted})
	c := client.New(fb.URL())

	projects, err := c.ListProjects(context.Background(), client.ListProjectsOptions{})
	require.NoError(t, err)
	assert.Len(t, projects, 2)

	trades, err := c.SupportedTrades(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, trades)
	assert.Equal(t, "flooring", trades[0].ID)
	assert.Equal(t, "sqft", trades[0].Unit)
}

func TestTakeoffLifecycle(t *testing.T) {
	fb := testutil.SetupBackend(t)
	fb.AddProject(&models.Project{ProjectID: "p1", Status: models.StatusUploaded})
	c := client.New(fb.URL())

	ack, err := c.StartTakeoff(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "processing", ack.Status)

	ts, err := c.GetTakeoff(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, ts.Status)

	ack, err = c.CancelTakeoff(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", ack.Status)
}

func TestStartTakeoffRejectedWhenCompleted(t *testing.T) {
	fb := testutil.SetupBackend(t)
	fb.AddProject(&models.Project{ProjectID: "p1", Status: models.StatusCompleted})
	c := client.New(fb.URL())

	_, err := c.StartTakeoff(context.Background(), "p1")
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.Status)
	assert.Contains(t, apiErr.Detail, "Cannot start processing")
}

func TestGetTakeoffCarriesResult(t *testing.T) {
	fb := testutil.SetupBackend(t)
	fb.AddProject(&models.Project{ProjectID: "p1", Status: models.StatusCompleted})
	now := time.Now()
	fb.Results["p1"] = &models.TakeoffResult{
		ProjectID: "p1",
		Trades:    []string{"flooring"},
		Quantities: map[string]models.TradeQuantity{
			"flooring": {Total: 1200, Unit: "sqft", Confidence: 0.92},
		},
		ConfidenceScores: map[string]float64{"flooring": 0.92, "overall": 0.92},
		CreatedAt:        now,
	}
	c := client.New(fb.URL())

	ts, err := c.GetTakeoff(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, ts.Status)
	require.Contains(t, ts.Quantities, "flooring")
	assert.Equal(t, 1200.0, ts.Quantities["flooring"].Total)
	assert.Equal(t, 0.92, ts.OverallConfidence())
}

func TestExport(t *testing.T) {
	fb := testutil.SetupBackend(t)
	fb.AddProject(&models.Project{ProjectID: "p1", Status: models.StatusCompleted})
	fb.Results["p1"] = &models.TakeoffResult{ProjectID: "p1"}
	c := client.New(fb.URL())

	var buf bytes.Buffer
	n, err := c.Export(context.Background(), "p1", client.ExportCSV, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Contains(t, buf.String(), "col1,col2")
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	fb := testutil.SetupBackend(t)
	c := client.New(fb.URL())

	var buf bytes.Buffer
	_, err := c.Export(context.Background(), "p1", client.ExportFormat("docx"), &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
}

func TestReviewFlow(t *testing.T) {
	fb := testutil.SetupBackend(t)
	fb.AddProject(&models.Project{ProjectID: "p1", Status: models.StatusExpertReview})
	fb.Reviews["r1"] = &models.Review{
		ReviewID:  "r1",
		ProjectID: "p1",
		Status:    models.ReviewPending,
		CreatedAt: time.Now(),
	}
	c := client.New(fb.URL())

	queue, err := c.ReviewQueue(context.Background())
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, "r1", queue[0].ReviewID)

	byProject, err := c.GetReviewByProject(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "r1", byProject.ReviewID)

	err = c.ApproveReview(context.Background(), "r1", models.ReviewUpdateRequest{
		ExpertID: "e1", ExpertName: "Dana",
	})
	require.NoError(t, err)

	// Approval completes the project on the server side.
	p, err := c.GetProject(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, p.Status)
}

func TestHealthAndCompatibility(t *testing.T) {
	fb := testutil.SetupBackend(t)
	c := client.New(fb.URL())

	require.NoError(t, c.Health(context.Background()))

	version, err := c.CheckCompatibility(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", version)
}

func TestTransportErrorWrapped(t *testing.T) {
	// Point at a port nothing listens on.
	c := client.New("http://127.0.0.1:1")
	_, err := c.GetProject(context.Background(), "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed")
}
