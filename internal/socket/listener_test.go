package socket_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takeoffhq/takeoff-go/internal/models"
	"github.com/takeoffhq/takeoff-go/internal/socket"
	"github.com/takeoffhq/takeoff-go/internal/testutil"
)

func waitForUpdate(t *testing.T, l *socket.Listener) models.ProgressUpdate {
	t.Helper()
	select {
	case u := <-l.Updates():
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for a socket update")
		return models.ProgressUpdate{}
	}
}

func TestListenerReceivesProgressFrames(t *testing.T) {
	fb := testutil.SetupBackend(t)
	fb.ProgressScript = []models.ProgressUpdate{
		{Type: "progress", Stage: "extraction", Progress: 20, Message: "Extracting document content..."},
		{Type: "progress", Stage: "quantity", Progress: 40, Message: "Extracting quantities..."},
	}

	l, err := socket.Dial(context.Background(), fb.URL(), socket.ClientID("p1"))
	require.NoError(t, err)
	defer l.Close()

	first := waitForUpdate(t, l)
	assert.Equal(t, "extraction", first.Stage)
	assert.Equal(t, 20.0, first.Progress)

	second := waitForUpdate(t, l)
	assert.Equal(t, "quantity", second.Stage)

	last := l.Last()
	require.NotNil(t, last)
	assert.Equal(t, "quantity", last.Stage)
	assert.True(t, l.Connected())
}

func TestListenerDropsMalformedAndForeignFrames(t *testing.T) {
	fb := testutil.SetupBackend(t)
	fb.RawFrames = []string{
		"this is not json",
		`{"type":"message","data":{}}`,
	}
	fb.ProgressScript = []models.ProgressUpdate{
		{Type: "progress", Stage: "cv", Progress: 60, Message: "Analyzing floor plans..."},
	}

	l, err := socket.Dial(context.Background(), fb.URL(), socket.ClientID("p1"))
	require.NoError(t, err)
	defer l.Close()

	// The only surfaced update is the well-formed progress frame.
	u := waitForUpdate(t, l)
	assert.Equal(t, "cv", u.Stage)
	assert.Equal(t, 60.0, u.Progress)
}

func TestListenerNewlineDelimitedBatch(t *testing.T) {
	fb := testutil.SetupBackend(t)
	fb.RawFrames = []string{
		`{"type":"progress","stage":"upload","progress":10,"message":"a"}` + "\n" +
			`{"type":"progress","stage":"specs","progress":15,"message":"b"}`,
	}

	l, err := socket.Dial(context.Background(), fb.URL(), socket.ClientID("p1"))
	require.NoError(t, err)
	defer l.Close()

	// Latest-value semantics: after both frames land the channel holds
	// the newest one. Either we see them in order or only the second.
	u := waitForUpdate(t, l)
	if u.Stage == "upload" {
		u = waitForUpdate(t, l)
	}
	assert.Equal(t, "specs", u.Stage)
}

func TestListenerCloseStopsReadLoop(t *testing.T) {
	fb := testutil.SetupBackend(t)
	l, err := socket.Dial(context.Background(), fb.URL(), socket.ClientID("p1"))
	require.NoError(t, err)

	assert.True(t, l.Connected())
	l.Close()
	assert.False(t, l.Connected())

	// Close is idempotent.
	l.Close()
}

func TestListenerReportsDisconnectedAfterServerDrop(t *testing.T) {
	fb := testutil.SetupBackend(t)
	l, err := socket.Dial(context.Background(), fb.URL(), socket.ClientID("p1"))
	require.NoError(t, err)
	defer l.Close()

	fb.Server.CloseClientConnections()

	// No reconnection is attempted; the listener just reports
	// disconnected.
	deadline := time.After(2 * time.Second)
	for l.Connected() {
		select {
		case <-deadline:
			t.Fatal("Listener still reports connected after server drop")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestDialFailsWhenServerUnreachable(t *testing.T) {
	_, err := socket.Dial(context.Background(), "http://127.0.0.1:1", socket.ClientID("p1"))
	require.Error(t, err)
}
