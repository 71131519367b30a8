package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// MinServerVersion is the oldest takeoff service this client is known to
// work against.
const MinServerVersion = "1.0.0"

// CheckCompatibility fetches the server's version and verifies it is at
// least MinServerVersion. Servers that do not report a parseable version
// are rejected.
func (c *Client) CheckCompatibility(ctx context.Context) (string, error) {
	info, err := c.Info(ctx)
	if err != nil {
		return "", err
	}

	reported := strings.TrimPrefix(info.Version, "v")
	server, err := semver.NewVersion(reported)
	if err != nil {
		return info.Version, fmt.Errorf("server reported invalid version %q: %w", info.Version, err)
	}
	minimum := semver.MustParse(MinServerVersion)
	if server.LessThan(minimum) {
		return info.Version, fmt.Errorf("server version %s is older than the supported minimum %s", info.Version, MinServerVersion)
	}
	return info.Version, nil
}
