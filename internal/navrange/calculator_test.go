package navrange

import (
	"testing"

	"tactics-server/internal/hexgrid"
	"tactics-server/internal/pathfind"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBody struct {
	cell *hexgrid.Cell
	pos  hexgrid.Point
}

func (b *fakeBody) CurrentCell() *hexgrid.Cell { return b.cell }
func (b *fakeBody) WorldPosition() hexgrid.Point { return b.pos }

type fakeAgent struct {
	cell      *hexgrid.Cell
	body      *fakeBody
	remaining int
}

func (a *fakeAgent) CurrentCell() *hexgrid.Cell { return a.cell }
func (a *fakeAgent) RemainingDistance() int { return a.remaining }
func (a *fakeAgent) Controller() Locatable {
	if a.body == nil {
		return nil
	}
	return a.body
}

func flatGrid() *hexgrid.Grid {
	return hexgrid.NewGrid(5, 5, hexgrid.NewLayout(10))
}

func coords(cells []*hexgrid.Cell) map[hexgrid.Axial]bool {
	out := make(map[hexgrid.Axial]bool, len(cells))
	for _, c := range cells {
		out[c.Coord] = true
	}
	return out
}

func TestResolveCell_FallbackChain(t *testing.T) {
	g := flatGrid()
	explicit := g.CellAtOffset(hexgrid.Offset{Col: 1, Row: 1})
	bodyCell := g.CellAtOffset(hexgrid.Offset{Col: 2, Row: 2})
	byPos := g.CellAtOffset(hexgrid.Offset{Col: 3, Row: 3})

	tests := []struct {
		name  string
		agent Agent
		want  *hexgrid.Cell
	}{
		{"explicit cell wins", &fakeAgent{cell: explicit, body: &fakeBody{cell: bodyCell}}, explicit},
		{"controller cell", &fakeAgent{body: &fakeBody{cell: bodyCell, pos: byPos.Pos}}, bodyCell},
		{"controller position lookup", &fakeAgent{body: &fakeBody{pos: byPos.Pos}}, byPos},
		{"nothing known", &fakeAgent{}, nil},
		{"position off grid", &fakeAgent{body: &fakeBody{pos: hexgrid.Point{X: -999, Y: -999}}}, nil},
		{"nil agent", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.want, ResolveCell(tt.agent, g))
		})
	}
}

func TestContext_Valid(t *testing.T) {
	g := flatGrid()
	cell := g.CellAtOffset(hexgrid.Offset{})

	assert.True(t, NewContext(&fakeAgent{cell: cell, remaining: 1}, g, nil).Valid())
	assert.False(t, NewContext(&fakeAgent{cell: cell, remaining: 0}, g, nil).Valid())
	assert.False(t, NewContext(&fakeAgent{remaining: 3}, g, nil).Valid())
	assert.False(t, NewContext(&fakeAgent{cell: cell, remaining: 3}, nil, nil).Valid())
	assert.False(t, NewContext(nil, g, nil).Valid())
}

func TestCalculate_FlatGridBudgetTwo(t *testing.T) {
	g := flatGrid()
	oracle := pathfind.NewAStar(g)
	start := g.CellAtOffset(hexgrid.Offset{Col: 0, Row: 0})
	agent := &fakeAgent{cell: start, remaining: 2}

	layout := g.Layout
	policies := []Policy{
		NoFilter{},
		ProjectionTolerance{Layout: layout, Projection: Identity, Tolerance: 1},
		PathVerify{},
	}

	for _, policy := range policies {
		t.Run(policy.Name(), func(t *testing.T) {
			got := coords(NewCalculator(policy).Calculate(agent, g, oracle))
			for _, c := range g.Cells() {
				cost := pathfind.Cost(oracle.FindPath(start, c))
				if cost <= 2 {
					assert.True(t, got[c.Coord], "cell %v at cost %d missing", c.Coord, cost)
				} else {
					assert.False(t, got[c.Coord], "cell %v at cost %d included", c.Coord, cost)
				}
			}
		})
	}
}

func TestCalculate_InvalidContextIsEmpty(t *testing.T) {
	g := flatGrid()
	calc := NewCalculator(nil)

	assert.Empty(t, calc.Calculate(&fakeAgent{remaining: 2}, g, nil))
	assert.Empty(t, calc.Calculate(&fakeAgent{cell: g.CellAtOffset(hexgrid.Offset{}), remaining: 0}, g, nil))
}

func TestProjectionTolerance_TrimsSkewedCells(t *testing.T) {
	g := hexgrid.NewGrid(9, 9, hexgrid.NewLayout(10))
	start := g.CellAtOffset(hexgrid.Offset{Col: 4, Row: 4})
	agent := &fakeAgent{cell: start, remaining: 3}

	full := NewCalculator(NoFilter{}).Calculate(agent, g, nil)

	// Сильное растяжение по X: клетки по горизонтали визуально дальше.
	skew := ProjectionTolerance{
		Layout:     g.Layout,
		Projection: Projection{ScaleX: 2, ScaleY: 0.5},
		Tolerance:  1,
	}
	trimmed := NewCalculator(skew).Calculate(agent, g, nil)

	assert.Less(t, len(trimmed), len(full))
	assert.Contains(t, coords(trimmed), start.Coord)
	for c := range coords(trimmed) {
		assert.True(t, coords(full)[c], "filtered result must be a subset")
	}
}

func TestPathVerify_WithoutOracleRejectsEverything(t *testing.T) {
	g := flatGrid()
	agent := &fakeAgent{cell: g.CellAtOffset(hexgrid.Offset{Col: 2, Row: 2}), remaining: 2}
	assert.Empty(t, NewCalculator(PathVerify{}).Calculate(agent, g, nil))
}

func TestParsePolicy(t *testing.T) {
	layout := hexgrid.NewLayout(10)

	p, err := ParsePolicy("", layout, Identity, 0)
	require.NoError(t, err)
	assert.Equal(t, PolicyNone, p.Name())

	p, err = ParsePolicy("Projection", layout, Isometric, 1.2)
	require.NoError(t, err)
	assert.Equal(t, PolicyProjection, p.Name())

	_, err = ParsePolicy("projection", layout, Isometric, 0)
	assert.Error(t, err)

	p, err = ParsePolicy("path-verify", layout, Identity, 0)
	require.NoError(t, err)
	assert.Equal(t, PolicyPathVerify, p.Name())

	_, err = ParsePolicy("teleport", layout, Identity, 0)
	assert.Error(t, err)
}
