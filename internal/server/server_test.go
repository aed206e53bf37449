package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"tactics-server/internal/engine"
	"tactics-server/internal/hexgrid"
	"tactics-server/internal/version"
	"tactics-server/pkg/api"
	"tactics-server/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	logger.Silence()

	os.Exit(m.Run())
}

func testConfig() engine.Config {
	cfg := engine.NewConfig()
	cfg.Seed = 1
	cfg.Grid = engine.GridConfig{Width: 9, Height: 9, HexSize: 10, Template: "open"}
	cfg.Party = []engine.PartyMember{
		{ID: "a", Name: "Альфа", MaxDistance: 3, Initiative: 2},
		{ID: "b", Name: "Бета", MaxDistance: 2, Initiative: 1},
	}
	return cfg
}

func openField(cfg engine.Config) (*hexgrid.Grid, []*hexgrid.Cell) {
	g := hexgrid.NewGrid(cfg.Grid.Width, cfg.Grid.Height, hexgrid.NewLayout(cfg.Grid.HexSize))
	return g, []*hexgrid.Cell{
		g.Cell(hexgrid.Axial{Q: 4, R: 2}),
		g.Cell(hexgrid.Axial{Q: 4, R: 6}),
	}
}

// newTestServer поднимает готовый сервис, его цикл и HTTP-сервер.
func newTestServer(t *testing.T) (*engine.GameService, *httptest.Server) {
	t.Helper()

	svc := engine.NewService(testConfig())
	svc.BuildMap = openField
	require.NoError(t, svc.Bootstrap(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	go svc.Run(ctx)

	ts := httptest.NewServer(New(svc, "0").Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return svc, ts
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)

	code, body := get(t, ts.URL+"/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)

	starting := httptest.NewServer(New(engine.NewService(testConfig()), "0").Handler())
	defer starting.Close()
	code, _ = get(t, starting.URL+"/health")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestVersion(t *testing.T) {
	_, ts := newTestServer(t)

	code, body := get(t, ts.URL+"/version")
	require.Equal(t, http.StatusOK, code)

	var info version.VersionInfo
	require.NoError(t, json.Unmarshal([]byte(body), &info))
}

func TestDebugRoutes(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		status int
		check  func(t *testing.T, body string)
	}{
		{
			name:   "agents",
			path:   "/debug/agents",
			status: http.StatusOK,
			check: func(t *testing.T, body string) {
				var agents []api.AgentView
				require.NoError(t, json.Unmarshal([]byte(body), &agents))
				assert.Len(t, agents, 2)
			},
		},
		{
			name:   "queue",
			path:   "/debug/queue",
			status: http.StatusOK,
			check: func(t *testing.T, body string) {
				var queue []engine.QueueEntry
				require.NoError(t, json.Unmarshal([]byte(body), &queue))
				require.Len(t, queue, 2)
				assert.Equal(t, "a", queue[0].ID)
			},
		},
		{
			name:   "range",
			path:   "/debug/range?agent=b",
			status: http.StatusOK,
			check: func(t *testing.T, body string) {
				var view api.RangeView
				require.NoError(t, json.Unmarshal([]byte(body), &view))
				assert.Equal(t, "b", view.AgentID)
				assert.NotEmpty(t, view.Cells)
			},
		},
		{name: "range unknown agent", path: "/debug/range?agent=ghost", status: http.StatusNotFound},
		{name: "range without agent", path: "/debug/range", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := get(t, ts.URL+tt.path)
			assert.Equal(t, tt.status, code, body)
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func TestDebugNotReady(t *testing.T) {
	ts := httptest.NewServer(New(engine.NewService(testConfig()), "0").Handler())
	defer ts.Close()

	code, _ := get(t, ts.URL+"/debug/agents")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func dial(t *testing.T, ts *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, conn.WriteJSON(api.ClientCommand{Token: token}))
	return conn
}

func read(t *testing.T, conn *websocket.Conn) api.ServerResponse {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var msg api.ServerResponse
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocket_LoginAndCommands(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts, "a")

	msg := read(t, conn)
	assert.Equal(t, api.TypeInit, msg.Type)
	assert.Equal(t, "a", msg.MyAgentID)
	assert.Equal(t, "a", msg.ActiveAgentID)
	require.NotNil(t, msg.Grid)
	assert.Len(t, msg.Grid.Cells, 81)

	require.NoError(t, conn.WriteJSON(api.ClientCommand{Action: "RANGE"}))
	msg = read(t, conn)
	assert.Equal(t, api.TypeUpdate, msg.Type)
	require.NotNil(t, msg.Range)
	assert.Equal(t, "a", msg.Range.AgentID)

	require.NoError(t, conn.WriteJSON(api.ClientCommand{Action: "DANCE"}))
	msg = read(t, conn)
	assert.Equal(t, api.TypeError, msg.Type)
	assert.Contains(t, msg.Error, "DANCE")
}

func TestWebSocket_ObserverLogin(t *testing.T) {
	svc, ts := newTestServer(t)
	conn := dial(t, ts, "")

	msg := read(t, conn)
	assert.Equal(t, api.TypeInit, msg.Type)
	assert.Empty(t, msg.MyAgentID)
	assert.Equal(t, 1, svc.Hub.SubscriberCount())
}
