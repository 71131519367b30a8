package client

import (
	"context"
	"net/url"

	"github.com/takeoffhq/takeoff-go/internal/models"
)

// TakeoffAck is the server's acknowledgement of a start or cancel request.
type TakeoffAck struct {
	ProjectID string `json:"project_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// StartTakeoff asks the server to begin processing a project's takeoff.
// The server rejects projects that already finished successfully.
func (c *Client) StartTakeoff(ctx context.Context, projectID string) (*TakeoffAck, error) {
	var ack TakeoffAck
	path := "/api/v1/takeoffs/" + url.PathEscape(projectID) + "/process"
	if err := c.postJSON(ctx, path, nil, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// CancelTakeoff requests cancellation of in-flight processing.
func (c *Client) CancelTakeoff(ctx context.Context, projectID string) (*TakeoffAck, error) {
	var ack TakeoffAck
	path := "/api/v1/takeoffs/" + url.PathEscape(projectID) + "/cancel"
	if err := c.postJSON(ctx, path, nil, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// TakeoffStatus is the polling view of a takeoff: always carries the
// project status, plus the result fields once they exist.
type TakeoffStatus struct {
	ProjectID string               `json:"project_id"`
	Status    models.ProjectStatus `json:"status"`
	Message   string               `json:"message,omitempty"`
	models.TakeoffResult
}

// GetTakeoff fetches the current takeoff status and, when finished, the
// result snapshot for a project.
func (c *Client) GetTakeoff(ctx context.Context, projectID string) (*TakeoffStatus, error) {
	var ts TakeoffStatus
	if err := c.getJSON(ctx, "/api/v1/takeoffs/"+url.PathEscape(projectID), &ts); err != nil {
		return nil, err
	}
	return &ts, nil
}
