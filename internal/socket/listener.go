// Package socket maintains the real-time connection to the takeoff
// service. A Listener owns exactly one websocket connection for its
// lifetime: dial once, read until closed, no reconnection. A dropped
// connection simply reports disconnected until a new Listener is made.
package socket

import (
	"context"
	"encoding/json"
	"log"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/takeoffhq/takeoff-go/internal/models"
)

// Listener reads progress frames from the server and exposes the most
// recent one. Frames it cannot decode are logged and dropped.
type Listener struct {
	conn *websocket.Conn

	mu        sync.Mutex
	connected bool
	last      *models.ProgressUpdate

	updates chan models.ProgressUpdate
	done    chan struct{}
}

// ClientID returns the socket client identifier for a project, matching
// the server's "client_<project id>" convention.
func ClientID(projectID string) string {
	return "client_" + projectID
}

// Dial connects to the server's websocket endpoint for the given client
// ID and starts the read loop. baseURL is the HTTP base URL of the API;
// the scheme is rewritten to ws/wss.
func Dial(ctx context.Context, baseURL, clientID string) (*Listener, error) {
	wsURL, err := socketURL(baseURL, clientID)
	if err != nil {
		return nil, err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	l := &Listener{
		conn:      conn,
		connected: true,
		updates:   make(chan models.ProgressUpdate, 1),
		done:      make(chan struct{}),
	}
	go l.readLoop()
	return l, nil
}

// socketURL rewrites the API base URL into the ws endpoint for clientID.
func socketURL(baseURL, clientID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws/" + url.PathEscape(clientID)
	return u.String(), nil
}

// Connected reports whether the read loop is still attached to a live
// connection.
func (l *Listener) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connected
}

// Last returns the most recent decoded progress update, or nil if none
// has arrived yet.
func (l *Listener) Last() *models.ProgressUpdate {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.last == nil {
		return nil
	}
	cp := *l.last
	return &cp
}

// Updates delivers decoded progress frames with latest-value semantics:
// the channel holds at most one pending update and a newer frame
// replaces an unread older one.
func (l *Listener) Updates() <-chan models.ProgressUpdate {
	return l.updates
}

// Close tears down the connection. Safe to call more than once.
func (l *Listener) Close() {
	l.mu.Lock()
	if !l.connected {
		l.mu.Unlock()
		return
	}
	l.connected = false
	l.mu.Unlock()
	l.conn.Close()
	<-l.done
}

// readLoop consumes text frames until the connection drops. Each frame
// may carry several newline-delimited JSON objects.
func (l *Listener) readLoop() {
	defer close(l.done)
	for {
		_, data, err := l.conn.ReadMessage()
		if err != nil {
			l.mu.Lock()
			wasConnected := l.connected
			l.connected = false
			l.mu.Unlock()
			if wasConnected {
				log.Printf("Socket read ended: %v", err)
			}
			return
		}

		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			var update models.ProgressUpdate
			if err := json.Unmarshal([]byte(line), &update); err != nil {
				log.Printf("Dropping malformed socket frame: %v", err)
				continue
			}
			if update.Type != "progress" {
				continue
			}
			l.publish(update)
		}
	}
}

// publish records the update and pushes it onto the channel, discarding
// a stale unread value first.
func (l *Listener) publish(update models.ProgressUpdate) {
	l.mu.Lock()
	cp := update
	l.last = &cp
	l.mu.Unlock()

	select {
	case l.updates <- update:
	default:
		select {
		case <-l.updates:
		default:
		}
		l.updates <- update
	}
}
