package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ExportFormat is one of the server's takeoff export formats.
type ExportFormat string

const (
	ExportExcel ExportFormat = "excel"
	ExportCSV   ExportFormat = "csv"
	ExportPDF   ExportFormat = "pdf"
)

// ValidExportFormat reports whether the given string names a supported
// export format.
func ValidExportFormat(s string) bool {
	switch ExportFormat(s) {
	case ExportExcel, ExportCSV, ExportPDF:
		return true
	}
	return false
}

// Export streams a takeoff export in the given format into w. It returns
// the number of bytes written.
func (c *Client) Export(ctx context.Context, projectID string, format ExportFormat, w io.Writer) (int64, error) {
	if !ValidExportFormat(string(format)) {
		return 0, fmt.Errorf("unsupported export format %q", format)
	}

	path := fmt.Sprintf("%s/api/v1/exports/%s/%s", c.baseURL, url.PathEscape(projectID), format)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("export request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, decodeError(resp)
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to stream export: %w", err)
	}
	return n, nil
}

// GenerateReport calls the legacy report endpoint with a results payload
// and streams the rendered report (HTML, or PDF when supported) into w.
func (c *Client) GenerateReport(ctx context.Context, results interface{}, format string, w io.Writer) error {
	if format == "" {
		format = "html"
	}
	body, err := encodeJSON(results)
	if err != nil {
		return err
	}

	path := c.baseURL + "/generate-report?format=" + url.QueryEscape(format)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, path, strings.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("report request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to stream report: %w", err)
	}
	return nil
}
