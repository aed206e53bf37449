package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"tactics-server/internal/domain"
	"tactics-server/internal/hexgrid"
	"tactics-server/pkg/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *GameService {
	t.Helper()
	svc := NewService(testConfig())
	svc.BuildMap = testMap
	require.NoError(t, svc.Bootstrap(context.Background()))
	require.True(t, svc.Ready())
	return svc
}

func command(action domain.ActionType, token string, payload any) domain.InternalCommand {
	var raw json.RawMessage
	if payload != nil {
		raw, _ = json.Marshal(payload)
	}
	return domain.InternalCommand{Action: action, Token: token, Payload: raw}
}

// last вычитывает все сообщения из канала и возвращает последнее.
func last(t *testing.T, ch chan api.ServerResponse) api.ServerResponse {
	t.Helper()
	var msg api.ServerResponse
	got := false
	for {
		select {
		case msg = <-ch:
			got = true
		default:
			require.True(t, got, "no message delivered")
			return msg
		}
	}
}

func TestService_BootstrapTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.BootstrapDeadline = 20 * time.Millisecond
	cfg.Tick = time.Millisecond

	svc := NewService(cfg)
	release := make(chan struct{})
	defer close(release)
	svc.BuildMap = func(cfg Config) (*hexgrid.Grid, []*hexgrid.Cell) {
		<-release
		return testMap(cfg)
	}

	err := svc.Bootstrap(context.Background())
	assert.True(t, errors.Is(err, ErrAwaitTimeout), "got %v", err)
	assert.False(t, svc.Ready())
}

func TestService_BootstrapSessionError(t *testing.T) {
	svc := NewService(testConfig())
	svc.BuildMap = func(cfg Config) (*hexgrid.Grid, []*hexgrid.Cell) {
		g, spawns := testMap(cfg)
		return g, spawns[:1]
	}

	err := svc.Bootstrap(context.Background())
	assert.ErrorIs(t, err, ErrNoSpawn)
	assert.NotErrorIs(t, err, ErrAwaitTimeout)
}

func TestService_ProcessCommand(t *testing.T) {
	svc := NewService(testConfig())

	assert.Error(t, svc.ProcessCommand(api.ClientCommand{Token: "a", Action: "DANCE"}))
	require.NoError(t, svc.ProcessCommand(api.ClientCommand{Token: "a", Action: "end_turn"}))

	cmd := <-svc.CommandChan
	assert.Equal(t, domain.ActionEndTurn, cmd.Action)
	assert.Equal(t, "a", cmd.Token)
}

func TestService_NotReady(t *testing.T) {
	svc := NewService(testConfig())
	ch := svc.Hub.Register("a")

	svc.executeCommand(command(domain.ActionInit, "a", nil))
	msg := last(t, ch)
	assert.Equal(t, api.TypeError, msg.Type)
	assert.Equal(t, ErrNotReady.Error(), msg.Error)

	_, err := svc.DebugAgents()
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestService_InitRepliesWithGrid(t *testing.T) {
	svc := newTestService(t)
	a := svc.Hub.Register("a")
	obs := svc.Hub.Register("observer")

	svc.executeCommand(command(domain.ActionInit, "a", nil))
	msg := last(t, a)
	assert.Equal(t, api.TypeInit, msg.Type)
	require.NotNil(t, msg.Grid)
	assert.Len(t, msg.Grid.Cells, 81)
	assert.Equal(t, "a", msg.MyAgentID)
	assert.Equal(t, "a", msg.ActiveAgentID)
	assert.Len(t, msg.Agents, 2)

	select {
	case <-obs:
		t.Fatal("INIT must only reply to the sender")
	default:
	}

	svc.executeCommand(command(domain.ActionInit, "observer", nil))
	msg = last(t, obs)
	assert.Empty(t, msg.MyAgentID)
}

func TestService_PlanAndRangeBroadcast(t *testing.T) {
	svc := newTestService(t)
	a := svc.Hub.Register("a")
	b := svc.Hub.Register("b")

	svc.executeCommand(command(domain.ActionRange, "a", nil))
	msg := last(t, b)
	require.NotNil(t, msg.Range)
	assert.Equal(t, "a", msg.Range.AgentID)
	assert.Len(t, msg.Range.Cells, 37)
	assert.Len(t, msg.Boundary, 1)
	last(t, a)

	svc.executeCommand(command(domain.ActionPlan, "a", api.CellPayload{Q: 4, R: 4}))
	msg = last(t, a)
	require.NotNil(t, msg.Plan)
	assert.Equal(t, 2, msg.Plan.Distance)
	assert.Len(t, msg.Plan.Path, 3)
	assert.NotEmpty(t, msg.Plan.Smoothed)
	assert.NotEmpty(t, msg.Logs)
	last(t, b)

	svc.executeCommand(command(domain.ActionExecute, "a", nil))
	last(t, a)
	for i := 0; i < 50 && svc.session.Busy(); i++ {
		svc.tick(time.Now())
	}
	msg = last(t, a)
	assert.Nil(t, msg.Progress)
	assert.Nil(t, msg.Plan)
	assert.Equal(t, 1, msg.Agents[1].Remaining)
	require.NotNil(t, msg.Agents[1].Cell)
	assert.Equal(t, api.Coord{Q: 4, R: 4}, *msg.Agents[1].Cell)
}

func TestService_Rejections(t *testing.T) {
	svc := newTestService(t)
	b := svc.Hub.Register("b")
	obs := svc.Hub.Register("observer")

	tests := []struct {
		name  string
		ch    chan api.ServerResponse
		cmd   domain.InternalCommand
		match error
	}{
		{"out of turn", b, command(domain.ActionPlan, "b", api.CellPayload{Q: 4, R: 5}), ErrNotYourTurn},
		{"observer cannot plan", obs, command(domain.ActionPlan, "observer", api.CellPayload{Q: 4, R: 5}), nil},
		{"missing payload", b, command(domain.ActionPlan, "b", nil), nil},
		{"toggle without enabled", obs, command(domain.ActionToggle, "observer", map[string]int{"q": 1, "r": 1}), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc.executeCommand(tt.cmd)
			msg := last(t, tt.ch)
			assert.Equal(t, api.TypeError, msg.Type)
			assert.NotEmpty(t, msg.Error)
			if tt.match != nil {
				assert.Equal(t, tt.match.Error(), msg.Error)
			}
		})
	}
}

func TestService_ToggleSendsGrid(t *testing.T) {
	svc := newTestService(t)
	obs := svc.Hub.Register("observer")

	off := false
	svc.executeCommand(command(domain.ActionToggle, "observer", api.TogglePayload{Q: 1, R: 1, Enabled: &off}))
	msg := last(t, obs)
	assert.Equal(t, api.TypeInit, msg.Type)
	require.NotNil(t, msg.Grid)

	disabled := 0
	for _, c := range msg.Grid.Cells {
		if !c.Enabled {
			disabled++
			assert.Equal(t, api.Coord{Q: 1, R: 1}, c.Coord)
		}
	}
	assert.Equal(t, 1, disabled)
}

func TestService_TurnTimeout(t *testing.T) {
	svc := newTestService(t)
	svc.cfg.TurnTimeout = time.Second

	now := time.Now()
	svc.lastActivity = now.Add(-500 * time.Millisecond)
	svc.tick(now)
	assert.Equal(t, domain.AgentID("a"), svc.session.ActiveAgent().ID)

	svc.lastActivity = now.Add(-2 * time.Second)
	svc.tick(now)
	assert.Equal(t, domain.AgentID("b"), svc.session.ActiveAgent().ID)
}

func TestService_Debug(t *testing.T) {
	svc := newTestService(t)

	agents, err := svc.DebugAgents()
	require.NoError(t, err)
	assert.Len(t, agents, 2)

	queue, err := svc.DebugQueue()
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, "a", queue[0].ID)

	view, err := svc.DebugRange("b")
	require.NoError(t, err)
	assert.Equal(t, "b", view.AgentID)
	assert.NotEmpty(t, view.Cells)
	assert.Nil(t, svc.session.Range(), "debug range must not replace session range")

	_, err = svc.DebugRange("ghost")
	assert.ErrorIs(t, err, ErrUnknownAgent)
}

func TestService_RunStopsOnCancel(t *testing.T) {
	svc := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	ch := svc.Hub.Register("a")
	require.NoError(t, svc.ProcessCommand(api.ClientCommand{Token: "a", Action: "INIT"}))
	select {
	case msg := <-ch:
		assert.Equal(t, api.TypeInit, msg.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no reply from loop")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
}
