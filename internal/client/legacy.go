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
)

// ProcessDocument calls the legacy single-shot processing endpoint: it
// uploads a document and blocks until the pipeline returns the full
// results payload. New code should create a project and use StartTakeoff
// instead; this exists for servers still exposing the old flow.
func (c *Client) ProcessDocument(ctx context.Context, fileName string, file io.Reader, clientID string) (map[string]interface{}, error) {
	buf := new(bytes.Buffer)
	mw := multipart.NewWriter(buf)

	part, err := mw.CreateFormFile("file", filepath.Base(fileName))
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart file field: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read upload file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	path := c.baseURL + "/process-document"
	if clientID != "" {
		path += "?client_id=" + url.QueryEscape(clientID)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, path, buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var results map[string]interface{}
	if err := c.do(req, &results); err != nil {
		return nil, err
	}
	return results, nil
}
