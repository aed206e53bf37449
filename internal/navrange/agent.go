package navrange

import (
	"tactics-server/internal/hexgrid"
	"tactics-server/internal/pathfind"
)

// Locatable - все, что знает свою клетку и/или позицию в мире.
type Locatable interface {
	// CurrentCell возвращает клетку или nil, если она неизвестна
	// (например, агент сейчас между клетками).
	CurrentCell() *hexgrid.Cell
	WorldPosition() hexgrid.Point
}

// Agent - то, что калькулятор и планировщик знают об агенте.
type Agent interface {
	// CurrentCell - явная ссылка на клетку агента, может быть nil.
	CurrentCell() *hexgrid.Cell
	// Controller - контроллер движения (физическое тело), может быть nil.
	Controller() Locatable
	// RemainingDistance - остаток бюджета движения на этот ход.
	RemainingDistance() int
}

// ResolveCell находит текущую клетку агента по цепочке:
// явная клетка -> клетка контроллера -> обратный поиск по позиции контроллера.
func ResolveCell(agent Agent, grid hexgrid.Index) *hexgrid.Cell {
	if agent == nil {
		return nil
	}
	if c := agent.CurrentCell(); c != nil {
		return c
	}
	ctrl := agent.Controller()
	if ctrl == nil {
		return nil
	}
	if c := ctrl.CurrentCell(); c != nil {
		return c
	}
	if grid == nil {
		return nil
	}
	return grid.CellAtWorldPosition(ctrl.WorldPosition())
}

// Context - вход одного расчета.
type Context struct {
	Agent     Agent
	Cell      *hexgrid.Cell
	Grid      hexgrid.Index
	Oracle    pathfind.Oracle
	Remaining int
}

// NewContext собирает контекст для агента.
func NewContext(agent Agent, grid hexgrid.Index, oracle pathfind.Oracle) Context {
	ctx := Context{
		Agent:  agent,
		Grid:   grid,
		Oracle: oracle,
	}
	if agent != nil {
		ctx.Cell = ResolveCell(agent, grid)
		ctx.Remaining = agent.RemainingDistance()
	}
	return ctx
}

// Valid - false, если чего-то не хватает или бюджет исчерпан.
// Oracle обязателен только для политики, которая его использует.
func (c Context) Valid() bool {
	return c.Agent != nil && c.Cell != nil && c.Grid != nil && c.Remaining > 0
}
