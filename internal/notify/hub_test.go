package notify

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, url, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	opts := &websocket.DialOptions{}
	if origin != "" {
		opts.HTTPHeader = http.Header{"Origin": []string{origin}}
	}
	conn, resp, err := websocket.Dial(ctx, url, opts)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, resp, err
}

func newTestServer(t *testing.T, hub *Hub) string {
	t.Helper()
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		_ = hub.Shutdown(context.Background())
		srv.Close()
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil, nil)
	url := newTestServer(t, hub)

	conn, _, err := dial(t, url, "http://localhost:3000")
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast(Message{
		Type:    TypePassComplete,
		Locales: []string{"en", "fr"},
		Entries: []EntryMessage{{Entry: "index", Artifacts: []string{"index.js"}, Misses: 1}},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, TypePassComplete, msg.Type)
	assert.Equal(t, []string{"en", "fr"}, msg.Locales)
	require.Len(t, msg.Entries, 1)
	assert.Equal(t, "index", msg.Entries[0].Entry)
	assert.Equal(t, 1, msg.Entries[0].Misses)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestHubOriginCheck(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		ok      bool
	}{
		{name: "no origin", origin: "", ok: true},
		{name: "loopback by default", origin: "http://127.0.0.1:5173", ok: true},
		{name: "localhost by default", origin: "https://localhost", ok: true},
		{name: "external by default", origin: "http://evil.example", ok: false},
		{name: "file scheme", origin: "file:///etc/passwd", ok: false},
		{name: "allowlisted", allowed: []string{"http://dev.example:8080"}, origin: "http://dev.example:8080", ok: true},
		{name: "allowlist excludes localhost", allowed: []string{"http://dev.example:8080"}, origin: "http://localhost:3000", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub(tt.allowed, nil)
			url := newTestServer(t, hub)

			conn, resp, err := dial(t, url, tt.origin)
			if tt.ok {
				require.NoError(t, err)
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}
}

func TestHubShutdown(t *testing.T) {
	hub := NewHub(nil, nil)
	url := newTestServer(t, hub)

	conn, _, err := dial(t, url, "")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Equal(t, 0, hub.Clients())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err = conn.Read(ctx)
	assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))

	// Broadcasting after shutdown is a no-op.
	hub.Broadcast(Message{Type: TypePassFailed})
	assert.NoError(t, hub.Shutdown(context.Background()))

	_, resp, err := dial(t, url, "")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServe(t *testing.T) {
	hub := NewHub(nil, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- hub.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	var body map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, 0, body["clients"])

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
}
