package progress_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takeoffhq/takeoff-go/internal/client"
	"github.com/takeoffhq/takeoff-go/internal/models"
	"github.com/takeoffhq/takeoff-go/internal/progress"
)

// fakeAPI scripts the backend's answers. Status answers are consumed in
// order; the last one repeats.
type fakeAPI struct {
	mu           sync.Mutex
	startErr     error
	takeoffErr   error
	projectErr   error
	cancelErr    error
	statuses     []models.ProjectStatus
	statusIdx    int
	startCalls   int
	cancelCalls  int
	takeoffCalls int
	projectCalls int
}

func (f *fakeAPI) nextStatus() models.ProjectStatus {
	if f.statusIdx < len(f.statuses)-1 {
		s := f.statuses[f.statusIdx]
		f.statusIdx++
		return s
	}
	return f.statuses[len(f.statuses)-1]
}

func (f *fakeAPI) StartTakeoff(ctx context.Context, projectID string) (*client.TakeoffAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls++
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &client.TakeoffAck{ProjectID: projectID, Status: "processing"}, nil
}

func (f *fakeAPI) GetTakeoff(ctx context.Context, projectID string) (*client.TakeoffStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.takeoffCalls++
	if f.takeoffErr != nil {
		return nil, f.takeoffErr
	}
	return &client.TakeoffStatus{ProjectID: projectID, Status: f.nextStatus()}, nil
}

func (f *fakeAPI) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projectCalls++
	if f.projectErr != nil {
		return nil, f.projectErr
	}
	return &models.Project{ProjectID: projectID, Status: f.nextStatus()}, nil
}

func (f *fakeAPI) CancelTakeoff(ctx context.Context, projectID string) (*client.TakeoffAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelCalls++
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}
	return &client.TakeoffAck{ProjectID: projectID, Status: "cancelled"}, nil
}

func (f *fakeAPI) counts() (start, cancel, takeoff, project int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.startCalls, f.cancelCalls, f.takeoffCalls, f.projectCalls
}

func fastOptions() progress.Options {
	return progress.Options{
		PollInterval:  10 * time.Millisecond,
		NavigateDelay: 30 * time.Millisecond,
		PollTimeout:   2 * time.Second,
	}
}

func TestMonotonicProgress(t *testing.T) {
	api := &fakeAPI{statuses: []models.ProjectStatus{models.StatusProcessing}}
	tr := progress.New(api, "p1", fastOptions())

	inputs := []float64{10, 40, 25, 60}
	want := []float64{10, 40, 40, 60}
	for i, pct := range inputs {
		tr.Apply(models.ProgressUpdate{Type: "progress", Stage: "extraction", Progress: pct, Message: "working"})
		snap := tr.Snapshot()
		assert.Equal(t, want[i], snap.Percent, "input %v", pct)
	}
}

func TestStageAndMessageAlwaysNewest(t *testing.T) {
	api := &fakeAPI{statuses: []models.ProjectStatus{models.StatusProcessing}}
	tr := progress.New(api, "p1", fastOptions())

	tr.Apply(models.ProgressUpdate{Type: "progress", Stage: "quantity", Progress: 40, Message: "Extracting quantities"})
	// Out-of-order packet: smaller percentage but newer text.
	tr.Apply(models.ProgressUpdate{Type: "progress", Stage: "cv", Progress: 25, Message: "Analyzing floor plans"})

	snap := tr.Snapshot()
	assert.Equal(t, 40.0, snap.Percent)
	assert.Equal(t, "cv", snap.Stage)
	assert.Equal(t, "Analyzing floor plans", snap.Message)
}

func TestCompletedNavigatesExactlyOnceAfterDelay(t *testing.T) {
	api := &fakeAPI{statuses: []models.ProjectStatus{
		models.StatusProcessing,
		models.StatusCompleted,
	}}
	tr := progress.New(api, "p1", fastOptions())

	start := time.Now()
	require.NoError(t, tr.Run(context.Background()))

	select {
	case ev := <-tr.Events():
		assert.Equal(t, progress.EventNavigate, ev.Kind)
		assert.Equal(t, models.StatusCompleted, ev.Status)
	default:
		t.Fatal("Expected a navigation event after completion")
	}

	// The navigate delay must have elapsed before the event was emitted.
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("Navigation happened too early: %s", elapsed)
	}

	// No second event.
	select {
	case ev := <-tr.Events():
		t.Fatalf("Unexpected second event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}

	assert.Equal(t, progress.StateSucceeded, tr.Snapshot().State)
}

func TestFailedStatusDoesNotNavigate(t *testing.T) {
	api := &fakeAPI{statuses: []models.ProjectStatus{models.StatusFailed}}
	tr := progress.New(api, "p1", fastOptions())

	require.NoError(t, tr.Run(context.Background()))

	select {
	case ev := <-tr.Events():
		assert.Equal(t, progress.EventFailed, ev.Kind)
		assert.Equal(t, models.StatusFailed, ev.Status)
	default:
		t.Fatal("Expected a failure event")
	}

	snap := tr.Snapshot()
	assert.Equal(t, progress.StateFailed, snap.State)
	assert.NotEmpty(t, snap.Message)
}

func TestBackendCancelledStatusShowsCancellation(t *testing.T) {
	api := &fakeAPI{statuses: []models.ProjectStatus{models.StatusCancelled}}
	tr := progress.New(api, "p1", fastOptions())

	require.NoError(t, tr.Run(context.Background()))

	ev := <-tr.Events()
	assert.Equal(t, progress.EventFailed, ev.Kind)
	assert.Equal(t, models.StatusCancelled, ev.Status)
	assert.Equal(t, progress.StateCancelled, tr.Snapshot().State)
}

func TestStartFailureNeverPolls(t *testing.T) {
	api := &fakeAPI{
		startErr: errors.New("boom"),
		statuses: []models.ProjectStatus{models.StatusProcessing},
	}
	tr := progress.New(api, "p1", fastOptions())

	err := tr.Run(context.Background())
	require.Error(t, err)

	_, _, takeoff, project := api.counts()
	assert.Zero(t, takeoff, "no polling after a failed start")
	assert.Zero(t, project)
	assert.Contains(t, tr.Snapshot().Err, "Failed to start processing")
}

func TestFallbackToProjectStatus(t *testing.T) {
	api := &fakeAPI{
		takeoffErr: errors.New("takeoff endpoint down"),
		statuses:   []models.ProjectStatus{models.StatusCompleted},
	}
	tr := progress.New(api, "p1", fastOptions())

	require.NoError(t, tr.Run(context.Background()))

	ev := <-tr.Events()
	assert.Equal(t, progress.EventNavigate, ev.Kind)
	_, _, _, project := api.counts()
	assert.Greater(t, project, 0, "secondary status source should have been used")
}

func TestBothStatusSourcesFailingKeepsPolling(t *testing.T) {
	api := &fakeAPI{
		takeoffErr: errors.New("down"),
		projectErr: errors.New("also down"),
		statuses:   []models.ProjectStatus{models.StatusProcessing},
	}
	opts := fastOptions()
	opts.PollTimeout = 100 * time.Millisecond
	tr := progress.New(api, "p1", opts)

	require.NoError(t, tr.Run(context.Background()))

	// Polling survived the double failures until the hard ceiling.
	_, _, takeoff, _ := api.counts()
	assert.Greater(t, takeoff, 3)

	select {
	case ev := <-tr.Events():
		t.Fatalf("No terminal event expected on timeout, got %+v", ev)
	default:
	}
}

func TestHardCeilingStopsPolling(t *testing.T) {
	api := &fakeAPI{statuses: []models.ProjectStatus{models.StatusProcessing}}
	opts := fastOptions()
	opts.PollTimeout = 80 * time.Millisecond
	tr := progress.New(api, "p1", opts)

	done := make(chan error, 1)
	go func() { done <- tr.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop at the polling ceiling")
	}
	assert.Contains(t, tr.Snapshot().Message, "timed out")
}

func TestCancelHaltsPollingImmediately(t *testing.T) {
	api := &fakeAPI{statuses: []models.ProjectStatus{models.StatusProcessing}}
	tr := progress.New(api, "p1", fastOptions())

	done := make(chan error, 1)
	go func() { done <- tr.Run(context.Background()) }()

	// Let a couple of polls happen, then cancel.
	time.Sleep(35 * time.Millisecond)
	require.NoError(t, tr.Cancel(context.Background()))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after Cancel")
	}

	snap := tr.Snapshot()
	assert.Equal(t, progress.StateCancelled, snap.State)
	assert.Equal(t, "cancelled", snap.Stage)
	assert.Equal(t, 0.0, snap.Percent)

	// Polling stopped: the call count must not grow anymore.
	_, _, before, _ := api.counts()
	time.Sleep(50 * time.Millisecond)
	_, _, after, _ := api.counts()
	assert.Equal(t, before, after)

	_, cancelCalls, _, _ := api.counts()
	assert.Equal(t, 1, cancelCalls)
}

func TestCancelErrorSurfacedAndRetryable(t *testing.T) {
	api := &fakeAPI{
		cancelErr: errors.New("cancel endpoint down"),
		statuses:  []models.ProjectStatus{models.StatusProcessing},
	}
	tr := progress.New(api, "p1", fastOptions())

	err := tr.Cancel(context.Background())
	require.Error(t, err)
	assert.Contains(t, tr.Snapshot().Err, "Failed to cancel")

	// A retry goes through once the backend recovers.
	api.mu.Lock()
	api.cancelErr = nil
	api.mu.Unlock()
	require.NoError(t, tr.Cancel(context.Background()))
}

func TestSocketUpdatesIgnoredAfterCancel(t *testing.T) {
	api := &fakeAPI{statuses: []models.ProjectStatus{models.StatusProcessing}}
	tr := progress.New(api, "p1", fastOptions())

	tr.Apply(models.ProgressUpdate{Type: "progress", Stage: "extraction", Progress: 30})
	require.NoError(t, tr.Cancel(context.Background()))

	// A straggler frame must not resurrect the display.
	tr.Apply(models.ProgressUpdate{Type: "progress", Stage: "extraction", Progress: 90})

	snap := tr.Snapshot()
	assert.Equal(t, 0.0, snap.Percent)
	assert.Equal(t, "cancelled", snap.Stage)
}

func TestContextTeardownStopsRunWithoutEvents(t *testing.T) {
	api := &fakeAPI{statuses: []models.ProjectStatus{models.StatusProcessing}}
	tr := progress.New(api, "p1", fastOptions())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx) }()

	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not honor context cancellation")
	}

	select {
	case ev := <-tr.Events():
		t.Fatalf("No event expected after teardown, got %+v", ev)
	default:
	}
}

func TestStartIssuedExactlyOnce(t *testing.T) {
	api := &fakeAPI{statuses: []models.ProjectStatus{models.StatusCompleted}}
	tr := progress.New(api, "p1", fastOptions())

	require.NoError(t, tr.Run(context.Background()))
	start, _, _, _ := api.counts()
	assert.Equal(t, 1, start)
}
