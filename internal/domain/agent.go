package domain

import (
	"tactics-server/internal/hexgrid"
	"tactics-server/internal/navrange"
)

// AgentID - идентификатор агента; совпадает с токеном клиента, который им управляет.
type AgentID string

func (id AgentID) String() string { return string(id) }

// Body - физическое тело агента. Пока агент стоит, знает свою клетку;
// во время движения известна только позиция.
type Body struct {
	cell *hexgrid.Cell
	pos  hexgrid.Point
}

func (b *Body) CurrentCell() *hexgrid.Cell { return b.cell }

func (b *Body) WorldPosition() hexgrid.Point { return b.pos }

// Place ставит тело в центр клетки.
func (b *Body) Place(c *hexgrid.Cell) {
	b.cell = c
	if c != nil {
		b.pos = c.Pos
	}
}

// MoveTo двигает тело в произвольную точку; клетка становится неизвестной.
func (b *Body) MoveTo(p hexgrid.Point) {
	b.cell = nil
	b.pos = p
}

// Agent - участник партии.
type Agent struct {
	ID   AgentID
	Name string
	Team string

	// Cell - явная ссылка на клетку. nil во время исполнения пути.
	Cell *hexgrid.Cell
	Body *Body

	MaxDistance int // бюджет движения на ход
	Remaining   int // остаток бюджета в текущем ходу
	Initiative  int // больше - раньше в очереди
	NextTick    int // приоритет в очереди ходов
}

// NewAgent создает агента с полным бюджетом.
func NewAgent(id AgentID, name string, maxDistance int) *Agent {
	return &Agent{
		ID:          id,
		Name:        name,
		Body:        &Body{},
		MaxDistance: maxDistance,
		Remaining:   maxDistance,
	}
}

func (a *Agent) CurrentCell() *hexgrid.Cell { return a.Cell }

func (a *Agent) RemainingDistance() int { return a.Remaining }

// Controller возвращает тело; nil-тело отдается как nil-интерфейс.
func (a *Agent) Controller() navrange.Locatable {
	if a.Body == nil {
		return nil
	}
	return a.Body
}

func (a *Agent) Position() hexgrid.Point {
	if a.Body != nil {
		return a.Body.WorldPosition()
	}
	if a.Cell != nil {
		return a.Cell.Pos
	}
	return hexgrid.Point{}
}

// PlaceAt ставит агента и его тело в клетку.
func (a *Agent) PlaceAt(c *hexgrid.Cell) {
	a.Cell = c
	if a.Body == nil {
		a.Body = &Body{}
	}
	a.Body.Place(c)
}

// Detach снимает явную клетку перед движением.
func (a *Agent) Detach() {
	a.Cell = nil
	if a.Body != nil {
		a.Body.cell = nil
	}
}

// StartTurn восстанавливает бюджет.
func (a *Agent) StartTurn() {
	a.Remaining = a.MaxDistance
}

// Spend списывает пройденные шаги, не уходя в минус.
func (a *Agent) Spend(hops int) {
	if hops <= 0 {
		return
	}
	a.Remaining -= hops
	if a.Remaining < 0 {
		a.Remaining = 0
	}
}
