// This file implements the drop-folder watcher. It uses OS-level file
// system events to detect new plan documents and uploads them after a
// debounce window so half-copied files are not picked up.

package intake

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/takeoffhq/takeoff-go/internal/client"
	"github.com/takeoffhq/takeoff-go/internal/config"
)

// Uploader is the slice of the API client the watcher needs.
type Uploader interface {
	CreateProject(ctx context.Context, in client.CreateProjectInput) (*client.CreateProjectResponse, error)
	StartTakeoff(ctx context.Context, projectID string) (*client.TakeoffAck, error)
}

// Watcher watches the intake directory and turns dropped PDFs into
// processing projects.
type Watcher struct {
	cfg      *config.Config
	api      Uploader
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	pending  map[string]bool
	debounce *time.Timer
	delay    time.Duration
	stopChan chan struct{}
	uploaded map[string]bool
}

// NewWatcher creates a watcher for the configured intake directory.
func NewWatcher(cfg *config.Config, api Uploader) *Watcher {
	delay := time.Duration(cfg.Intake.DebounceSeconds) * time.Second
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Watcher{
		cfg:      cfg,
		api:      api,
		pending:  make(map[string]bool),
		uploaded: make(map[string]bool),
		delay:    delay,
		stopChan: make(chan struct{}),
	}
}

// Start begins watching the intake directory. The directory is created
// if it does not exist yet.
func (w *Watcher) Start() error {
	if err := os.MkdirAll(w.cfg.Intake.Path, 0755); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	if err := watcher.Add(w.cfg.Intake.Path); err != nil {
		watcher.Close()
		return err
	}

	log.Printf("Intake watcher started for: %s", w.cfg.Intake.Path)
	go w.processEvents()
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	close(w.stopChan)
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".pdf") {
				continue
			}
			w.markPending(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Intake watcher error: %v", err)
		}
	}
}

// markPending records a changed file and (re)arms the debounce timer so
// uploading only starts once writes have settled.
func (w *Watcher) markPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = true
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.delay, w.flush)
}

// flush uploads every settled file exactly once.
func (w *Watcher) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		if !w.uploaded[p] {
			paths = append(paths, p)
		}
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	for _, path := range paths {
		if err := w.upload(path); err != nil {
			log.Printf("Intake: %v", err)
			continue
		}
		w.mu.Lock()
		w.uploaded[path] = true
		w.mu.Unlock()
	}
}

// upload preflights one plan file, creates a project for it and starts
// processing.
func (w *Watcher) upload(path string) error {
	pf, err := Preflight(path, w.cfg.MaxFileSizeMB)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	resp, err := w.api.CreateProject(context.Background(), client.CreateProjectInput{
		FileName: filepath.Base(path),
		File:     f,
		Trades:   w.cfg.Intake.Trades,
		Name:     name,
	})
	if err != nil {
		return err
	}
	log.Printf("Intake: created project %s from %s (%d pages)", resp.ProjectID, filepath.Base(path), pf.Pages)

	if _, err := w.api.StartTakeoff(context.Background(), resp.ProjectID); err != nil {
		log.Printf("Intake: project %s created but processing failed to start: %v", resp.ProjectID, err)
	}
	return nil
}
