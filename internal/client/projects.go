package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/takeoffhq/takeoff-go/internal/models"
)

// CreateProjectInput carries the upload parameters for a new project.
type CreateProjectInput struct {
	FileName  string
	File      io.Reader
	Trades    []string
	Name      string
	CreatedBy string
}

// CreateProjectResponse is the server's acknowledgement of a new project.
type CreateProjectResponse struct {
	ProjectID string `json:"project_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// CreateProject uploads a plan document and registers a new project with
// the selected trades.
func (c *Client) CreateProject(ctx context.Context, in CreateProjectInput) (*CreateProjectResponse, error) {
	if len(in.Trades) == 0 {
		return nil, fmt.Errorf("at least one trade must be selected")
	}

	buf := new(bytes.Buffer)
	mw := multipart.NewWriter(buf)

	part, err := mw.CreateFormFile("file", filepath.Base(in.FileName))
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart file field: %w", err)
	}
	if _, err := io.Copy(part, in.File); err != nil {
		return nil, fmt.Errorf("failed to read upload file: %w", err)
	}
	if err := mw.WriteField("trades", strings.Join(in.Trades, ",")); err != nil {
		return nil, err
	}
	if in.Name != "" {
		if err := mw.WriteField("name", in.Name); err != nil {
			return nil, err
		}
	}
	if in.CreatedBy != "" {
		if err := mw.WriteField("created_by", in.CreatedBy); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/projects/", buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp CreateProjectResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetProject fetches a single project by ID.
func (c *Client) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	var p models.Project
	if err := c.getJSON(ctx, "/api/v1/projects/"+url.PathEscape(projectID), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjectsOptions filters the project listing. Zero values are omitted.
type ListProjectsOptions struct {
	CreatedBy string
	Status    models.ProjectStatus
	Limit     int
}

// ListProjects fetches projects matching the given filters.
func (c *Client) ListProjects(ctx context.Context, opts ListProjectsOptions) ([]models.Project, error) {
	q := url.Values{}
	if opts.CreatedBy != "" {
		q.Set("created_by", opts.CreatedBy)
	}
	if opts.Status != "" {
		q.Set("status", string(opts.Status))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	path := "/api/v1/projects/"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Projects []models.Project `json:"projects"`
		Total    int              `json:"total"`
	}
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Projects, nil
}

// SupportedTrades fetches the trades the server can extract.
func (c *Client) SupportedTrades(ctx context.Context) ([]models.TradeInfo, error) {
	var resp struct {
		Trades []models.TradeInfo `json:"trades"`
	}
	if err := c.getJSON(ctx, "/api/v1/projects/trades/supported", &resp); err != nil {
		return nil, err
	}
	return resp.Trades, nil
}
