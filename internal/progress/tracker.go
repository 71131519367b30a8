// Package progress reconciles the two sources of truth about an
// in-flight takeoff: push updates arriving over the socket and the
// periodic HTTP status poll. It decides when the job is done, failed or
// cancelled, and guarantees the displayed percentage never moves
// backwards within a session.
package progress

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/takeoffhq/takeoff-go/internal/client"
	"github.com/takeoffhq/takeoff-go/internal/models"
)

// State is the tracker's explicit lifecycle state. Transition rules live
// in the poll loop and Cancel; nothing else mutates it.
type State int

const (
	StateActive State = iota
	StateSucceeded
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// EventKind discriminates the single terminal event a tracker emits.
type EventKind int

const (
	// EventNavigate means results are ready to show.
	EventNavigate EventKind = iota
	// EventFailed means the run ended without results.
	EventFailed
)

// Event is the terminal notification delivered on Events().
type Event struct {
	Kind    EventKind
	Status  models.ProjectStatus
	Message string
}

// Snapshot is the current display state.
type Snapshot struct {
	State   State
	Status  models.ProjectStatus
	Stage   string
	Percent float64
	Message string
	Err     string
}

// API is the slice of the takeoff client the tracker needs. *client.Client
// satisfies it.
type API interface {
	StartTakeoff(ctx context.Context, projectID string) (*client.TakeoffAck, error)
	GetTakeoff(ctx context.Context, projectID string) (*client.TakeoffStatus, error)
	GetProject(ctx context.Context, projectID string) (*models.Project, error)
	CancelTakeoff(ctx context.Context, projectID string) (*client.TakeoffAck, error)
}

// Options controls the tracker's timing. Zero values fall back to the
// production cadence.
type Options struct {
	PollInterval  time.Duration // status poll cadence (default 3s)
	NavigateDelay time.Duration // pause before the navigate event (default 2s)
	PollTimeout   time.Duration // hard ceiling on a polling session (default 5m)
}

func (o *Options) fillDefaults() {
	if o.PollInterval <= 0 {
		o.PollInterval = 3 * time.Second
	}
	if o.NavigateDelay <= 0 {
		o.NavigateDelay = 2 * time.Second
	}
	if o.PollTimeout <= 0 {
		o.PollTimeout = 5 * time.Minute
	}
}

// Tracker drives one processing session for one project.
type Tracker struct {
	api       API
	projectID string
	opts      Options

	mu        sync.Mutex
	state     State
	status    models.ProjectStatus
	stage     string
	percent   float64
	message   string
	errMsg    string
	navigated bool
	halted    bool

	halt   chan struct{} // closed by Cancel to stop polling immediately
	events chan Event
}

// New creates a tracker for a project.
func New(api API, projectID string, opts Options) *Tracker {
	opts.fillDefaults()
	return &Tracker{
		api:       api,
		projectID: projectID,
		opts:      opts,
		state:     StateActive,
		status:    models.StatusProcessing,
		halt:      make(chan struct{}),
		events:    make(chan Event, 1),
	}
}

// Events delivers at most one terminal event for the session.
func (t *Tracker) Events() <-chan Event {
	return t.events
}

// Snapshot returns a copy of the current display state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		State:   t.state,
		Status:  t.status,
		Stage:   t.stage,
		Percent: t.percent,
		Message: t.message,
		Err:     t.errMsg,
	}
}

// Apply merges a socket-delivered progress update into the display
// state. The percentage is clamped to be non-decreasing; stage and
// message always take the newest value. Updates arriving after the
// session left the active state are ignored.
func (t *Tracker) Apply(update models.ProgressUpdate) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateActive {
		return
	}
	if update.Progress > t.percent {
		t.percent = update.Progress
	}
	t.stage = update.Stage
	t.message = update.Message
}

// Run starts processing and polls until a terminal status, the hard
// ceiling, cancellation or context teardown. It returns after the
// terminal event (if any) has been emitted. A failed start request is
// returned immediately and polling never begins.
func (t *Tracker) Run(ctx context.Context) error {
	if _, err := t.api.StartTakeoff(ctx, t.projectID); err != nil {
		t.mu.Lock()
		t.errMsg = "Failed to start processing: " + err.Error()
		t.state = StateFailed
		t.mu.Unlock()
		return err
	}

	ticker := time.NewTicker(t.opts.PollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(t.opts.PollTimeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-t.halt:
			// Cancel already recorded the display state.
			return nil

		case <-deadline.C:
			t.mu.Lock()
			t.message = "Processing timed out. Check the project later."
			t.mu.Unlock()
			log.Printf("Polling ceiling reached for project %s, giving up", t.projectID)
			return nil

		case <-ticker.C:
			status, ok := t.poll(ctx)
			if !ok {
				continue
			}
			if status.IsTerminalSuccess() {
				return t.finishSuccess(ctx, status)
			}
			if status.IsTerminalFailure() {
				t.finishFailure(status)
				return nil
			}
		}
	}
}

// poll fetches the current status, falling back from the takeoff
// endpoint to the project record on a transient error. A failure of
// both is swallowed and reported as not-ok so polling continues.
func (t *Tracker) poll(ctx context.Context) (models.ProjectStatus, bool) {
	ts, err := t.api.GetTakeoff(ctx, t.projectID)
	if err == nil {
		t.noteStatus(ts.Status)
		return ts.Status, true
	}

	p, perr := t.api.GetProject(ctx, t.projectID)
	if perr == nil {
		t.noteStatus(p.Status)
		return p.Status, true
	}

	log.Printf("Status poll failed for project %s (takeoff: %v, project: %v)", t.projectID, err, perr)
	return "", false
}

func (t *Tracker) noteStatus(status models.ProjectStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateActive {
		t.status = status
	}
}

// finishSuccess waits out the navigate delay (so a final socket frame
// can land) and emits the single navigation event.
func (t *Tracker) finishSuccess(ctx context.Context, status models.ProjectStatus) error {
	delay := time.NewTimer(t.opts.NavigateDelay)
	defer delay.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.halt:
		return nil
	case <-delay.C:
	}

	t.mu.Lock()
	if t.navigated || t.state != StateActive {
		t.mu.Unlock()
		return nil
	}
	t.navigated = true
	t.state = StateSucceeded
	t.status = status
	t.percent = 100
	t.stage = "complete"
	t.message = "Processing complete"
	t.mu.Unlock()

	t.events <- Event{Kind: EventNavigate, Status: status, Message: "Processing complete"}
	return nil
}

// finishFailure records a terminal failure or backend-side cancellation.
// No navigation happens.
func (t *Tracker) finishFailure(status models.ProjectStatus) {
	msg := "Processing failed. You can retry from the project page."
	state := StateFailed
	if status == models.StatusCancelled {
		msg = "Processing was cancelled."
		state = StateCancelled
	}

	t.mu.Lock()
	if t.state != StateActive {
		t.mu.Unlock()
		return
	}
	t.state = state
	t.status = status
	t.message = msg
	t.mu.Unlock()

	t.events <- Event{Kind: EventFailed, Status: status, Message: msg}
}

// Cancel stops polling immediately, asks the server to cancel the run
// and moves the display to the cancelled state (stage "cancelled", 0%).
// A cancellation error is returned to the caller and does not block
// retrying Cancel.
func (t *Tracker) Cancel(ctx context.Context) error {
	t.mu.Lock()
	if !t.halted {
		t.halted = true
		close(t.halt)
	}
	t.state = StateCancelled
	t.status = models.StatusCancelled
	t.stage = "cancelled"
	t.percent = 0
	t.message = "Processing cancelled"
	t.mu.Unlock()

	if _, err := t.api.CancelTakeoff(ctx, t.projectID); err != nil {
		t.mu.Lock()
		t.errMsg = "Failed to cancel processing: " + err.Error()
		t.mu.Unlock()
		return err
	}
	return nil
}
