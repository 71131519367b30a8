package intake_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takeoffhq/takeoff-go/internal/client"
	"github.com/takeoffhq/takeoff-go/internal/config"
	"github.com/takeoffhq/takeoff-go/internal/intake"
	"github.com/takeoffhq/takeoff-go/internal/models"
	"github.com/takeoffhq/takeoff-go/internal/testutil"
)

// minimalPDF is a one-page PDF small enough to inline. MuPDF repairs
// the xref table on load, so the offsets do not need to be exact.
const minimalPDF = `%PDF-1.4
1 0 obj
<< /Type /Catalog /Pages 2 0 R >>
endobj
2 0 obj
<< /Type /Pages /Kids [3 0 R] /Count 1 >>
endobj
3 0 obj
<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>
endobj
trailer
<< /Root 1 0 R >>
%%EOF
`

func TestPreflightRejectsNonPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	_, err := intake.Preflight(path, 50)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only PDF plans")
}

func TestPreflightRejectsMissingFile(t *testing.T) {
	_, err := intake.Preflight(filepath.Join(t.TempDir(), "ghost.pdf"), 50)
	require.Error(t, err)
}

func TestPreflightRejectsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "huge.pdf")
	// 2MB of padding against a 1MB limit. The size check runs before
	// the document is opened, so the content does not matter.
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 2<<20)), 0644))

	_, err := intake.Preflight(path, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file too large")
}

func TestPreflightRejectsCorruptPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf at all"), 0644))

	_, err := intake.Preflight(path, 50)
	require.Error(t, err)
}

func TestPreflightAcceptsValidPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.pdf")
	require.NoError(t, os.WriteFile(path, []byte(minimalPDF), 0644))

	pf, err := intake.Preflight(path, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, pf.Pages)
	assert.Greater(t, pf.FileSizeMB, 0.0)
}

func intakeConfig(dir string) *config.Config {
	cfg := &config.Config{MaxFileSizeMB: 50}
	cfg.Intake.Path = dir
	cfg.Intake.DebounceSeconds = 1
	cfg.Intake.Trades = []string{"flooring"}
	return cfg
}

func waitForProjects(t *testing.T, fb *testutil.FakeBackend, want int) []*models.Project {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		fb.Mu.Lock()
		n := len(fb.Projects)
		fb.Mu.Unlock()
		if n >= want {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("Timed out waiting for %d project(s), have %d", want, n)
		case <-time.After(20 * time.Millisecond):
		}
	}
	fb.Mu.Lock()
	defer fb.Mu.Unlock()
	projects := make([]*models.Project, 0, len(fb.Projects))
	for _, p := range fb.Projects {
		projects = append(projects, p)
	}
	return projects
}

func TestWatcherUploadsDroppedPlan(t *testing.T) {
	fb := testutil.SetupBackend(t)
	dir := t.TempDir()

	w := intake.NewWatcher(intakeConfig(dir), client.New(fb.URL()))
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "site plan.pdf"), []byte(minimalPDF), 0644))

	projects := waitForProjects(t, fb, 1)
	require.Len(t, projects, 1)
	assert.Equal(t, "site plan.pdf", projects[0].FileName)
	assert.Equal(t, "site plan", projects[0].Name)
	// The watcher also kicked off processing.
	assert.Equal(t, models.StatusProcessing, projects[0].Status)
}

func TestWatcherIgnoresNonPDFFiles(t *testing.T) {
	fb := testutil.SetupBackend(t)
	dir := t.TempDir()

	w := intake.NewWatcher(intakeConfig(dir), client.New(fb.URL()))
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.pdf"), []byte("garbage"), 0644))

	// Give the debounce window time to pass; nothing should upload.
	time.Sleep(2500 * time.Millisecond)
	fb.Mu.Lock()
	defer fb.Mu.Unlock()
	assert.Empty(t, fb.Projects)
}
