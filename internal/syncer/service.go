// Package syncer mirrors the server's project list into the local cache
// so listings work offline and finished results are kept around.
package syncer

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/takeoffhq/takeoff-go/internal/client"
	"github.com/takeoffhq/takeoff-go/internal/core"
	"github.com/takeoffhq/takeoff-go/internal/store"
)

// Service pulls projects and completed takeoff results into the cache.
type Service struct {
	api *client.Client
	st  *store.Store
}

// NewService creates a sync service from the shared app components.
func NewService(app *core.App) *Service {
	return &Service{
		api: app.API,
		st:  store.New(app.DB),
	}
}

// SyncAll refreshes the cached project list, fetches result snapshots
// for newly finished projects and prunes rows the server no longer
// reports. Per-project failures are logged and skipped; the sync keeps
// going.
func (s *Service) SyncAll(ctx context.Context) error {
	projects, err := s.api.ListProjects(ctx, client.ListProjectsOptions{})
	if err != nil {
		return err
	}

	keep := make([]string, 0, len(projects))
	for i := range projects {
		p := &projects[i]
		keep = append(keep, p.ProjectID)
		if err := s.st.UpsertProject(p); err != nil {
			log.Printf("Sync: failed to cache project %s: %v", p.ProjectID, err)
			continue
		}
		if !p.Status.IsTerminalSuccess() {
			continue
		}

		// Results are immutable once present, so fetch each at most once.
		cached, err := s.st.GetResult(p.ProjectID)
		if err != nil {
			log.Printf("Sync: failed to read cached result for %s: %v", p.ProjectID, err)
			continue
		}
		if cached != nil {
			continue
		}
		ts, err := s.api.GetTakeoff(ctx, p.ProjectID)
		if err != nil {
			log.Printf("Sync: failed to fetch result for %s: %v", p.ProjectID, err)
			continue
		}
		result := ts.TakeoffResult
		result.ProjectID = p.ProjectID
		result.Status = p.Status
		if err := s.st.SaveResult(p.ProjectID, &result); err != nil {
			log.Printf("Sync: failed to cache result for %s: %v", p.ProjectID, err)
		}
	}

	pruned, err := s.st.PruneMissing(keep)
	if err != nil {
		log.Printf("Sync: failed to prune cache: %v", err)
	} else if pruned > 0 {
		log.Printf("Sync: pruned %d stale cached project(s)", pruned)
	}
	return nil
}

// StartScheduler runs SyncAll on the configured interval in the
// background. An interval of 0 disables scheduled syncing.
func StartScheduler(app *core.App) *gocron.Scheduler {
	interval := app.Config.SyncInterval
	if interval == 0 {
		log.Println("Sync interval is 0, scheduled sync is disabled.")
		return nil
	}

	svc := NewService(app)
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	log.Printf("Scheduling cache sync to run every %d minutes.", interval)
	_, err := s.Every(interval).Minutes().Do(func() {
		if err := svc.SyncAll(context.Background()); err != nil {
			log.Printf("Scheduled sync failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("Error scheduling cache sync: %v", err)
	}

	s.StartAsync()
	return s
}
