package movement

import (
	"testing"

	"tactics-server/internal/hexgrid"
	"tactics-server/internal/navrange"
	"tactics-server/internal/pathfind"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAgent struct {
	id        string
	cell      *hexgrid.Cell
	remaining int
}

func (a *stubAgent) ID() string { return a.id }
func (a *stubAgent) CurrentCell() *hexgrid.Cell { return a.cell }
func (a *stubAgent) Controller() navrange.Locatable { return nil }
func (a *stubAgent) RemainingDistance() int { return a.remaining }

func newGrid() *hexgrid.Grid {
	return hexgrid.NewGrid(9, 9, hexgrid.NewLayout(10))
}

func column(g *hexgrid.Grid, from hexgrid.Axial, n int) []*hexgrid.Cell {
	var out []*hexgrid.Cell
	a := from
	for i := 0; i < n; i++ {
		out = append(out, g.Cell(a))
		a = a.Neighbor(hexgrid.DirS)
	}
	return out
}

func TestTruncate(t *testing.T) {
	g := newGrid()
	path := column(g, hexgrid.Axial{}, 8)
	require.Equal(t, 7, pathfind.Cost(path))

	cut := Truncate(path, 3)
	assert.Equal(t, 3, pathfind.Cost(cut))
	assert.Same(t, path[3], cut[len(cut)-1])

	assert.Len(t, Truncate(path, 7), 8)
	assert.Len(t, Truncate(path, 20), 8)
	assert.Len(t, Truncate(path, 0), 1)
	assert.Empty(t, Truncate(nil, 3))
}

func TestPlanMovement_TruncatesToBudget(t *testing.T) {
	g := newGrid()
	planner := NewPlanner(g, pathfind.NewAStar(g))
	start := g.Cell(hexgrid.Axial{Q: 0, R: 0})
	target := g.Cell(hexgrid.Axial{Q: 0, R: 7})

	plan, err := planner.PlanMovement(&stubAgent{id: "a1", cell: start, remaining: 3}, target)

	require.NoError(t, err)
	assert.Equal(t, "a1", plan.AgentID)
	assert.Equal(t, 3, plan.Distance)
	assert.Same(t, target, plan.Target)
	assert.Same(t, start, plan.Path[0])
	assert.Equal(t, 3, hexgrid.Distance(start.Coord, plan.Destination().Coord))
	assert.Same(t, plan, planner.Current())
	assert.Len(t, plan.Points(), 4)
}

func TestPlanMovement_Failures(t *testing.T) {
	g := newGrid()
	start := g.Cell(hexgrid.Axial{Q: 1, R: 1})
	target := g.Cell(hexgrid.Axial{Q: 4, R: 2})
	disabled := g.Cell(hexgrid.Axial{Q: 2, R: 2})
	require.NoError(t, g.SetEnabled(disabled.Coord, false))

	walled := g.Cell(hexgrid.Axial{Q: 6, R: 3})
	for _, n := range walled.Coord.Neighbors() {
		require.NoError(t, g.SetEnabled(n, false))
	}

	oracle := pathfind.NewAStar(g)
	tests := []struct {
		name    string
		planner *Planner
		agent   navrange.Agent
		target  *hexgrid.Cell
		want    error
	}{
		{"nil target", NewPlanner(g, oracle), &stubAgent{cell: start, remaining: 3}, nil, ErrInvalidTarget},
		{"disabled target", NewPlanner(g, oracle), &stubAgent{cell: start, remaining: 3}, disabled, ErrInvalidTarget},
		{"no budget", NewPlanner(g, oracle), &stubAgent{cell: start, remaining: 0}, target, ErrNoBudget},
		{"nil agent", NewPlanner(g, oracle), nil, target, ErrNoBudget},
		{"no oracle", NewPlanner(g, nil), &stubAgent{cell: start, remaining: 3}, target, ErrNotConfigured},
		{"no grid", NewPlanner(nil, oracle), &stubAgent{cell: start, remaining: 3}, target, ErrNotConfigured},
		{"unknown cell", NewPlanner(g, oracle), &stubAgent{remaining: 3}, target, ErrNoCurrentCell},
		{"walled off", NewPlanner(g, oracle), &stubAgent{cell: start, remaining: 9}, walled, ErrNoPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var events []PlanEvent
			tt.planner.Subscribe(func(ev PlanEvent) { events = append(events, ev) })

			plan, err := tt.planner.PlanMovement(tt.agent, tt.target)

			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, plan)
			assert.Nil(t, tt.planner.Current())
			require.Len(t, events, 1)
			assert.Equal(t, PlanFailed, events[0].Kind)
			assert.ErrorIs(t, events[0].Reason, tt.want)
		})
	}
}

func TestPlanMovement_FailureClearsPreviousPlan(t *testing.T) {
	g := newGrid()
	planner := NewPlanner(g, pathfind.NewAStar(g))
	agent := &stubAgent{cell: g.Cell(hexgrid.Axial{}), remaining: 4}

	_, err := planner.PlanMovement(agent, g.Cell(hexgrid.Axial{Q: 2, R: 0}))
	require.NoError(t, err)

	var kinds []PlanEventKind
	planner.Subscribe(func(ev PlanEvent) { kinds = append(kinds, ev.Kind) })

	_, err = planner.PlanMovement(agent, nil)
	assert.ErrorIs(t, err, ErrInvalidTarget)
	assert.Nil(t, planner.Current())
	assert.Equal(t, []PlanEventKind{PlanCleared, PlanFailed}, kinds)
}

func TestPlanMovement_ReplaceAndCancel(t *testing.T) {
	g := newGrid()
	planner := NewPlanner(g, pathfind.NewAStar(g))
	agent := &stubAgent{cell: g.Cell(hexgrid.Axial{}), remaining: 4}

	var kinds []PlanEventKind
	planner.Subscribe(func(ev PlanEvent) { kinds = append(kinds, ev.Kind) })

	first, err := planner.PlanMovement(agent, g.Cell(hexgrid.Axial{Q: 2, R: 0}))
	require.NoError(t, err)
	second, err := planner.PlanMovement(agent, g.Cell(hexgrid.Axial{Q: 0, R: 3}))
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Same(t, second, planner.Current())

	planner.Cancel()
	planner.Cancel()
	assert.Nil(t, planner.Current())
	assert.Equal(t, []PlanEventKind{PlanCreated, PlanCleared, PlanCreated, PlanCleared}, kinds)
}
