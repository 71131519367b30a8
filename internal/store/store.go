// To handle all cache database interactions. This is our data access
// layer, keeping SQL queries separate from command logic.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/takeoffhq/takeoff-go/internal/models"
)

// Store provides all functions to interact with the local cache.
type Store struct {
	db *sql.DB
}

// New creates a new Store instance.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// UpsertProject writes a server-fetched project into the cache.
func (s *Store) UpsertProject(p *models.Project) error {
	_, err := s.db.Exec(`
        INSERT INTO projects
        (project_id, name, file_name, file_size_mb, selected_trades, status, created_by, created_at, updated_at, last_synced_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(project_id) DO UPDATE SET
            name = excluded.name,
            file_name = excluded.file_name,
            file_size_mb = excluded.file_size_mb,
            selected_trades = excluded.selected_trades,
            status = excluded.status,
            created_by = excluded.created_by,
            updated_at = excluded.updated_at,
            last_synced_at = excluded.last_synced_at
    `, p.ProjectID, p.Name, p.FileName, p.FileSizeMB, strings.Join(p.SelectedTrades, ","),
		string(p.Status), p.CreatedBy, p.CreatedAt, p.UpdatedAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert project %s: %w", p.ProjectID, err)
	}
	return nil
}

// GetProject reads one cached project, or nil when it is not cached.
func (s *Store) GetProject(projectID string) (*models.Project, error) {
	row := s.db.QueryRow(`
        SELECT project_id, name, file_name, file_size_mb, selected_trades, status, created_by, created_at, updated_at
        FROM projects WHERE project_id = ?`, projectID)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// ListProjects returns all cached projects, optionally filtered by status.
func (s *Store) ListProjects(status models.ProjectStatus) ([]models.Project, error) {
	query := `
        SELECT project_id, name, file_name, file_size_mb, selected_trades, status, created_by, created_at, updated_at
        FROM projects`
	args := []interface{}{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var p models.Project
	var trades, status string
	err := row.Scan(&p.ProjectID, &p.Name, &p.FileName, &p.FileSizeMB, &trades, &status,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if trades != "" {
		p.SelectedTrades = strings.Split(trades, ",")
	}
	p.Status = models.ProjectStatus(status)
	return &p, nil
}

// SaveResult stores the immutable takeoff snapshot for a project. The
// project row must already be cached (foreign key).
func (s *Store) SaveResult(projectID string, result *models.TakeoffResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode takeoff result: %w", err)
	}
	_, err = s.db.Exec(`
        INSERT INTO takeoff_results (project_id, result_json, fetched_at)
        VALUES (?, ?, ?)
        ON CONFLICT(project_id) DO UPDATE SET
            result_json = excluded.result_json,
            fetched_at = excluded.fetched_at
    `, projectID, string(data), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save takeoff result for %s: %w", projectID, err)
	}
	return nil
}

// GetResult reads the cached takeoff snapshot, or nil when absent.
func (s *Store) GetResult(projectID string) (*models.TakeoffResult, error) {
	var data string
	err := s.db.QueryRow(`SELECT result_json FROM takeoff_results WHERE project_id = ?`, projectID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result models.TakeoffResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached takeoff result for %s: %w", projectID, err)
	}
	return &result, nil
}

// PruneMissing removes cached projects the server no longer reports.
func (s *Store) PruneMissing(keepIDs []string) (int64, error) {
	if len(keepIDs) == 0 {
		res, err := s.db.Exec("DELETE FROM projects")
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	}

	placeholders := strings.Repeat("?,", len(keepIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(keepIDs))
	for i, id := range keepIDs {
		args[i] = id
	}

	res, err := s.db.Exec("DELETE FROM projects WHERE project_id NOT IN ("+placeholders+")", args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
