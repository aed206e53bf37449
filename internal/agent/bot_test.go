package agent

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"tactics-server/internal/engine"
	"tactics-server/internal/hexgrid"
	"tactics-server/internal/server"
	"tactics-server/pkg/api"
	"tactics-server/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	logger.Silence()

	os.Exit(m.Run())
}

func rangeOf(agent string, costs ...int) *api.RangeView {
	rv := &api.RangeView{AgentID: agent}
	for i, c := range costs {
		rv.Cells = append(rv.Cells, api.CostView{Coord: api.Coord{Q: i, R: 0}, Cost: c})
	}
	return rv
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name   string
		state  api.ServerResponse
		action string
		target *api.CellPayload
		silent bool
	}{
		{
			name:   "not my turn",
			state:  api.ServerResponse{ActiveAgentID: "other"},
			silent: true,
		},
		{
			name:   "fresh turn asks for range",
			state:  api.ServerResponse{ActiveAgentID: "me"},
			action: "RANGE",
		},
		{
			name:   "range of another agent is ignored",
			state:  api.ServerResponse{ActiveAgentID: "me", Range: rangeOf("other", 0, 1)},
			action: "RANGE",
		},
		{
			name:   "plans the farthest cell",
			state:  api.ServerResponse{ActiveAgentID: "me", Range: rangeOf("me", 0, 2, 1, 2)},
			action: "PLAN",
			target: &api.CellPayload{Q: 1, R: 0},
		},
		{
			name:   "no budget left ends the turn",
			state:  api.ServerResponse{ActiveAgentID: "me", Range: rangeOf("me", 0)},
			action: "END_TURN",
		},
		{
			name: "plan is executed",
			state: api.ServerResponse{
				ActiveAgentID: "me",
				Range:         rangeOf("me", 0, 1),
				Plan:          &api.PlanView{AgentID: "me"},
			},
			action: "EXECUTE",
		},
		{
			name: "waits while moving",
			state: api.ServerResponse{
				ActiveAgentID: "me",
				Plan:          &api.PlanView{AgentID: "me"},
				Progress:      &api.ProgressView{AgentID: "me", State: "executing"},
			},
			silent: true,
		},
		{
			name:   "rejected command ends the turn",
			state:  api.ServerResponse{Type: api.TypeError, ActiveAgentID: "me", Error: "boom"},
			action: "END_TURN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok := Decide(tt.state, "me")
			if tt.silent {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.action, cmd.Action)

			if tt.target != nil {
				var got api.CellPayload
				require.NoError(t, json.Unmarshal(cmd.Payload, &got))
				assert.Equal(t, *tt.target, got)
			} else {
				assert.Empty(t, cmd.Payload)
			}
		})
	}
}

func TestBot_NextSkipsRepeats(t *testing.T) {
	b := NewBot("ws://unused", "me")
	state := api.ServerResponse{
		ActiveAgentID: "me",
		Agents:        []api.AgentView{{ID: "me", Remaining: 3}},
	}

	cmd, ok := b.Next(state)
	require.True(t, ok)
	assert.Equal(t, "RANGE", cmd.Action)

	_, ok = b.Next(state)
	assert.False(t, ok, "same state must not resend the command")

	state.Agents[0].Remaining = 1
	cmd, ok = b.Next(state)
	require.True(t, ok, "spent budget is a new state")
	assert.Equal(t, "RANGE", cmd.Action)
}

func TestBot_PlaysTurnAgainstServer(t *testing.T) {
	cfg := engine.NewConfig()
	cfg.Seed = 1
	cfg.Grid = engine.GridConfig{Width: 9, Height: 9, HexSize: 10, Template: "open"}
	cfg.Party = []engine.PartyMember{
		{ID: "bot", Name: "Бот", MaxDistance: 3, Initiative: 2},
		{ID: "idle", Name: "Статист", MaxDistance: 2, Initiative: 1},
	}

	svc := engine.NewService(cfg)
	svc.BuildMap = func(cfg engine.Config) (*hexgrid.Grid, []*hexgrid.Cell) {
		g := hexgrid.NewGrid(cfg.Grid.Width, cfg.Grid.Height, hexgrid.NewLayout(cfg.Grid.HexSize))
		return g, []*hexgrid.Cell{g.Cell(hexgrid.Axial{Q: 4, R: 2}), g.Cell(hexgrid.Axial{Q: 4, R: 6})}
	}
	require.NoError(t, svc.Bootstrap(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	go svc.Run(ctx)

	ts := httptest.NewServer(server.New(svc, "0").Handler())
	defer ts.Close()

	bot := NewBot("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", "bot")
	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx) }()

	require.Eventually(t, func() bool {
		queue, err := svc.DebugQueue()
		return err == nil && len(queue) == 2 && queue[0].ID == "idle"
	}, 8*time.Second, 20*time.Millisecond, "bot did not finish its turn")

	agents, err := svc.DebugAgents()
	require.NoError(t, err)
	require.NotNil(t, agents[0].Cell)
	assert.NotEqual(t, api.Coord{Q: 4, R: 2}, *agents[0].Cell, "bot moved before ending the turn")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("bot did not stop")
	}
}
