package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corrlab/adapters/rng"
	"corrlab/adapters/synth"
	"corrlab/internal"
	"corrlab/internal/explorer"
)

func newHub(t *testing.T) *SSEHub {
	t.Helper()
	hub := NewSSEHub(internal.NewLogger(internal.LogLevelError))
	t.Cleanup(hub.Close)
	return hub
}

func newExplorer(t *testing.T) *explorer.Explorer {
	t.Helper()
	e, err := explorer.New(explorer.DefaultConfig(), synth.NewSynthesizer(rng.NewSeeded(11)))
	require.NoError(t, err)
	return e
}

func receive(t *testing.T, ch <-chan StateEvent) StateEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed unexpectedly")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return StateEvent{}
	}
}

func TestSSEHub_PublishReachesAllClients(t *testing.T) {
	hub := newHub(t)
	e := newExplorer(t)
	e.Subscribe(hub.Publish)

	_, first, ok := hub.Connect()
	require.True(t, ok)
	_, second, ok := hub.Connect()
	require.True(t, ok)
	assert.Equal(t, 2, hub.ClientCount())

	snap := e.Fit()

	for _, ch := range []<-chan StateEvent{first, second} {
		ev := receive(t, ch)
		assert.Equal(t, "state", ev.EventType)
		assert.Equal(t, snap.Revision, ev.Revision)
		assert.Equal(t, "fitted", ev.Mode)
		assert.Equal(t, snap.SummaryText(), ev.Summary)
	}
}

func TestSSEHub_DisconnectClosesChannel(t *testing.T) {
	hub := newHub(t)
	id, ch, ok := hub.Connect()
	require.True(t, ok)

	hub.Disconnect(id)
	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("channel was not closed")
	}
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestSSEHub_ClosedHubRefusesClients(t *testing.T) {
	hub := NewSSEHub(nil)
	hub.Close()
	hub.Close()

	_, _, ok := hub.Connect()
	assert.False(t, ok)
	// publishing after close must not block
	hub.Broadcast(StateEvent{EventType: "state"})
}

// closeNotifyRecorder adds the CloseNotifier gin's Stream expects
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *closeNotifyRecorder) CloseNotify() <-chan bool {
	return r.closed
}

func TestSSEHub_HandleSSESendsInitialState(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := newHub(t)
	e := newExplorer(t)

	rec := &closeNotifyRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}
	c, _ := gin.CreateTestContext(rec)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	c.Request = httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)

	initial := NewStateEvent(e.Snapshot())
	hub.HandleSSE(c, &initial)

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/event-stream"))
	require.True(t, strings.HasPrefix(body, "event:state\n"), "unexpected body %q", body)

	data := strings.TrimPrefix(strings.SplitN(body, "\n", 3)[1], "data:")
	var ev StateEvent
	require.NoError(t, json.Unmarshal([]byte(data), &ev))
	assert.Equal(t, e.Snapshot().Revision, ev.Revision)
	assert.Equal(t, "baseline", ev.Mode)
	assert.True(t, e.Snapshot().GeneratedAt.Time().Equal(ev.GeneratedAt.Time()))
}
