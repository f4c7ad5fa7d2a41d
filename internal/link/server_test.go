package link

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eirikalv1/cc-websockets/internal/config"
	"github.com/Eirikalv1/cc-websockets/internal/metrics"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Defaults().Link
	s := NewServer(cfg, nil, metrics.New())
	hs := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Close()
		hs.Close()
	})
	return s, hs
}

func dial(t *testing.T, hs *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(hs.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func next(t *testing.T, s *Server) Event {
	t.Helper()
	select {
	case ev := <-s.Inbox():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for inbox event")
		return Event{}
	}
}

func TestScannerRoundTrip(t *testing.T) {
	s, hs := newTestServer(t)
	require.ErrorIs(t, s.Send("forward"), ErrNoScanner)

	conn := dial(t, hs)
	defer conn.Close()

	ev := next(t, s)
	require.Equal(t, EventConnected, ev.Kind)
	require.NotEmpty(t, ev.Session)
	id, ok := s.Connected()
	require.True(t, ok)
	assert.Equal(t, ev.Session, id)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("0")))
	ev = next(t, s)
	assert.Equal(t, EventMessage, ev.Kind)
	assert.Equal(t, "0", ev.Text)
	assert.Equal(t, id, ev.Session)

	require.NoError(t, s.Send("turnLeft"))
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	typ, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, typ)
	assert.Equal(t, "turnLeft", string(msg))

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	ev = next(t, s)
	assert.Equal(t, EventDisconnected, ev.Kind)
	assert.Equal(t, id, ev.Session)

	_, ok = s.Connected()
	assert.False(t, ok)
	assert.ErrorIs(t, s.Send("forward"), ErrNoScanner)
}

func TestSecondScannerRejected(t *testing.T) {
	s, hs := newTestServer(t)
	first := dial(t, hs)
	defer first.Close()
	require.Equal(t, EventConnected, next(t, s).Kind)

	second := dial(t, hs)
	defer second.Close()
	_ = second.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := second.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)

	// The first session is unaffected.
	require.NoError(t, first.WriteMessage(websocket.TextMessage, []byte("1No fuel")))
	ev := next(t, s)
	assert.Equal(t, "1No fuel", ev.Text)
}

func TestMetricsEndpoint(t *testing.T) {
	s, hs := newTestServer(t)
	conn := dial(t, hs)
	defer conn.Close()
	next(t, s)

	resp, err := http.Get(hs.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "scanview_scanner_connected 1")
}
