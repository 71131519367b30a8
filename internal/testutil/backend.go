// A shared fake of the takeoff service for tests: the REST surface the
// client consumes plus the websocket progress endpoint.

package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/takeoffhq/takeoff-go/internal/models"
)

// FakeBackend is an in-memory takeoff service. Tests mutate its maps and
// knobs directly; all access is guarded by Mu.
type FakeBackend struct {
	Mu       sync.Mutex
	Projects map[string]*models.Project
	Results  map[string]*models.TakeoffResult
	Reviews  map[string]*models.Review
	Trades   []models.TradeInfo

	// Failure knobs: fail the next N calls of each endpoint.
	FailTakeoffGets int
	FailProjectGets int
	FailStarts      int
	FailCancels     int

	// Raw text frames sent verbatim to every websocket client on
	// connect, before ProgressScript. Lets tests exercise malformed
	// payload handling.
	RawFrames []string
	// Frames replayed to every websocket client on connect.
	ProgressScript []models.ProgressUpdate
	// Payload returned by the export endpoint.
	ExportPayload []byte

	Server *httptest.Server
}

// SetupBackend starts a fake takeoff service and returns it. The server
// is shut down automatically when the test completes.
func SetupBackend(t *testing.T) *FakeBackend {
	t.Helper()

	fb := &FakeBackend{
		Projects: make(map[string]*models.Project),
		Results:  make(map[string]*models.TakeoffResult),
		Reviews:  make(map[string]*models.Review),
		Trades: []models.TradeInfo{
			{ID: "flooring", Name: "Flooring", Enabled: true, Unit: "sqft"},
			{ID: "painting", Name: "Painting", Enabled: true, Unit: "sqft"},
			{ID: "doors_windows", Name: "Doors Windows", Enabled: true, Unit: "count"},
		},
		ExportPayload: []byte("col1,col2\nv1,v2\n"),
	}

	fb.Server = httptest.NewServer(fb.router())
	t.Cleanup(fb.Server.Close)
	return fb
}

// URL returns the fake server's base URL.
func (fb *FakeBackend) URL() string {
	return fb.Server.URL
}

// AddProject seeds a project (and optional result) into the fake.
func (fb *FakeBackend) AddProject(p *models.Project) {
	fb.Mu.Lock()
	defer fb.Mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
		p.UpdatedAt = p.CreatedAt
	}
	fb.Projects[p.ProjectID] = p
}

// SetStatus updates a seeded project's status.
func (fb *FakeBackend) SetStatus(projectID string, status models.ProjectStatus) {
	fb.Mu.Lock()
	defer fb.Mu.Unlock()
	if p, ok := fb.Projects[projectID]; ok {
		p.Status = status
	}
}

var upgrader = websocket.Upgrader{}

func (fb *FakeBackend) router() http.Handler {
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]string{
			"message": "Construction Document Intelligence API",
			"version": "1.0.0",
			"status":  "operational",
		})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/projects/", fb.handleCreateProject)
		r.Get("/projects/", fb.handleListProjects)
		r.Get("/projects/trades/supported", fb.handleTrades)
		r.Get("/projects/{projectID}", fb.handleGetProject)

		r.Post("/takeoffs/{projectID}/process", fb.handleStartTakeoff)
		r.Post("/takeoffs/{projectID}/cancel", fb.handleCancelTakeoff)
		r.Get("/takeoffs/{projectID}", fb.handleGetTakeoff)

		r.Get("/reviews/queue", fb.handleReviewQueue)
		r.Get("/reviews/project/{projectID}", fb.handleReviewByProject)
		r.Get("/reviews/{reviewID}", fb.handleGetReview)
		r.Post("/reviews/{reviewID}/approve", fb.handleApproveReview)
		r.Post("/reviews/{reviewID}/update", fb.handleUpdateReview)

		r.Get("/exports/{projectID}/{format}", fb.handleExport)
	})

	r.Post("/generate-report", fb.handleGenerateReport)
	r.Get("/ws/{clientID}", fb.handleSocket)
	return r
}

func respond(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func respondDetail(w http.ResponseWriter, code int, detail string) {
	respond(w, code, map[string]string{"detail": detail})
}

func (fb *FakeBackend) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondDetail(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondDetail(w, http.StatusBadRequest, "missing file")
		return
	}
	file.Close()

	trades := r.FormValue("trades")
	if trades == "" {
		respondDetail(w, http.StatusBadRequest, "missing trades")
		return
	}

	fb.Mu.Lock()
	id := fmt.Sprintf("proj-%d", len(fb.Projects)+1)
	fb.Projects[id] = &models.Project{
		ProjectID: id,
		Name:      r.FormValue("name"),
		FileName:  header.Filename,
		Status:    models.StatusUploaded,
		CreatedBy: r.FormValue("created_by"),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	fb.Mu.Unlock()

	respond(w, http.StatusOK, map[string]string{
		"project_id": id,
		"status":     string(models.StatusUploaded),
		"message":    "Project created successfully",
	})
}

func (fb *FakeBackend) handleListProjects(w http.ResponseWriter, r *http.Request) {
	fb.Mu.Lock()
	projects := make([]models.Project, 0, len(fb.Projects))
	for _, p := range fb.Projects {
		projects = append(projects, *p)
	}
	fb.Mu.Unlock()
	respond(w, http.StatusOK, map[string]interface{}{"projects": projects, "total": len(projects)})
}

func (fb *FakeBackend) handleTrades(w http.ResponseWriter, r *http.Request) {
	fb.Mu.Lock()
	trades := fb.Trades
	fb.Mu.Unlock()
	respond(w, http.StatusOK, map[string]interface{}{"trades": trades})
}

func (fb *FakeBackend) handleGetProject(w http.ResponseWriter, r *http.Request) {
	fb.Mu.Lock()
	defer fb.Mu.Unlock()
	if fb.FailProjectGets > 0 {
		fb.FailProjectGets--
		respondDetail(w, http.StatusServiceUnavailable, "temporarily unavailable")
		return
	}
	p, ok := fb.Projects[chi.URLParam(r, "projectID")]
	if !ok {
		respondDetail(w, http.StatusNotFound, "Project not found")
		return
	}
	respond(w, http.StatusOK, p)
}

func (fb *FakeBackend) handleStartTakeoff(w http.ResponseWriter, r *http.Request) {
	fb.Mu.Lock()
	defer fb.Mu.Unlock()
	if fb.FailStarts > 0 {
		fb.FailStarts--
		respondDetail(w, http.StatusInternalServerError, "pipeline unavailable")
		return
	}
	id := chi.URLParam(r, "projectID")
	p, ok := fb.Projects[id]
	if !ok {
		respondDetail(w, http.StatusNotFound, "Project not found")
		return
	}
	if p.Status.IsTerminalSuccess() {
		respondDetail(w, http.StatusBadRequest, "Cannot start processing. Current status: "+string(p.Status))
		return
	}
	p.Status = models.StatusProcessing
	respond(w, http.StatusOK, map[string]string{
		"project_id": id, "status": "processing", "message": "Takeoff processing started",
	})
}

func (fb *FakeBackend) handleCancelTakeoff(w http.ResponseWriter, r *http.Request) {
	fb.Mu.Lock()
	defer fb.Mu.Unlock()
	if fb.FailCancels > 0 {
		fb.FailCancels--
		respondDetail(w, http.StatusInternalServerError, "cancel failed")
		return
	}
	id := chi.URLParam(r, "projectID")
	p, ok := fb.Projects[id]
	if !ok {
		respondDetail(w, http.StatusNotFound, "Project not found")
		return
	}
	p.Status = models.StatusCancelled
	respond(w, http.StatusOK, map[string]string{
		"project_id": id, "status": "cancelled", "message": "Processing cancelled successfully",
	})
}

func (fb *FakeBackend) handleGetTakeoff(w http.ResponseWriter, r *http.Request) {
	fb.Mu.Lock()
	defer fb.Mu.Unlock()
	if fb.FailTakeoffGets > 0 {
		fb.FailTakeoffGets--
		respondDetail(w, http.StatusServiceUnavailable, "temporarily unavailable")
		return
	}
	id := chi.URLParam(r, "projectID")
	p, ok := fb.Projects[id]
	if !ok {
		respondDetail(w, http.StatusNotFound, "Project not found")
		return
	}

	payload := map[string]interface{}{
		"project_id": id,
		"status":     p.Status,
	}
	if result, ok := fb.Results[id]; ok {
		payload["trades"] = result.Trades
		payload["quantities"] = result.Quantities
		payload["confidence_scores"] = result.ConfidenceScores
		payload["verification_results"] = result.VerificationResults
		payload["processing_time_seconds"] = result.ProcessingTimeSeconds
	}
	respond(w, http.StatusOK, payload)
}

func (fb *FakeBackend) handleReviewQueue(w http.ResponseWriter, r *http.Request) {
	fb.Mu.Lock()
	queue := make([]models.Review, 0)
	for _, rv := range fb.Reviews {
		if rv.Status == models.ReviewPending {
			queue = append(queue, *rv)
		}
	}
	fb.Mu.Unlock()
	respond(w, http.StatusOK, map[string]interface{}{"queue": queue, "count": len(queue)})
}

func (fb *FakeBackend) handleGetReview(w http.ResponseWriter, r *http.Request) {
	fb.Mu.Lock()
	defer fb.Mu.Unlock()
	rv, ok := fb.Reviews[chi.URLParam(r, "reviewID")]
	if !ok {
		respondDetail(w, http.StatusNotFound, "Review not found")
		return
	}
	respond(w, http.StatusOK, rv)
}

func (fb *FakeBackend) handleReviewByProject(w http.ResponseWriter, r *http.Request) {
	fb.Mu.Lock()
	defer fb.Mu.Unlock()
	projectID := chi.URLParam(r, "projectID")
	for _, rv := range fb.Reviews {
		if rv.ProjectID == projectID {
			respond(w, http.StatusOK, rv)
			return
		}
	}
	respondDetail(w, http.StatusNotFound, "Review not found")
}

func (fb *FakeBackend) handleApproveReview(w http.ResponseWriter, r *http.Request) {
	fb.Mu.Lock()
	defer fb.Mu.Unlock()
	id := chi.URLParam(r, "reviewID")
	rv, ok := fb.Reviews[id]
	if !ok {
		respondDetail(w, http.StatusNotFound, "Review not found")
		return
	}
	rv.Status = models.ReviewApproved
	if p, ok := fb.Projects[rv.ProjectID]; ok {
		p.Status = models.StatusCompleted
	}
	respond(w, http.StatusOK, map[string]string{"message": "Review approved", "review_id": id})
}

func (fb *FakeBackend) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	var req models.ReviewUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDetail(w, http.StatusBadRequest, "invalid payload")
		return
	}
	fb.Mu.Lock()
	defer fb.Mu.Unlock()
	id := chi.URLParam(r, "reviewID")
	rv, ok := fb.Reviews[id]
	if !ok {
		respondDetail(w, http.StatusNotFound, "Review not found")
		return
	}
	rv.ExpertID = req.ExpertID
	rv.ExpertName = req.ExpertName
	rv.Notes = req.Notes
	if req.Status != "" {
		rv.Status = models.ReviewStatus(req.Status)
	}
	respond(w, http.StatusOK, map[string]string{"message": "Review updated", "review_id": id})
}

func (fb *FakeBackend) handleExport(w http.ResponseWriter, r *http.Request) {
	fb.Mu.Lock()
	defer fb.Mu.Unlock()
	id := chi.URLParam(r, "projectID")
	if _, ok := fb.Results[id]; !ok {
		respondDetail(w, http.StatusNotFound, "Takeoff not found")
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	w.Write(fb.ExportPayload)
}

func (fb *FakeBackend) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<html><body><h1>Takeoff Report</h1><h2>Quantities</h2>`+
		`<table><tr><th>Trade</th><th>Total</th></tr><tr><td>flooring</td><td>1200</td></tr></table>`+
		`</body></html>`)
}

// handleSocket upgrades the connection and replays the scripted progress
// frames, then keeps the connection open until the client closes it.
func (fb *FakeBackend) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	fb.Mu.Lock()
	raw := make([]string, len(fb.RawFrames))
	copy(raw, fb.RawFrames)
	script := make([]models.ProgressUpdate, len(fb.ProgressScript))
	copy(script, fb.ProgressScript)
	fb.Mu.Unlock()

	for _, frame := range raw {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			return
		}
	}
	for _, frame := range script {
		data, err := json.Marshal(frame)
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}

	// Block until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
