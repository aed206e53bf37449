// Package movement планирует и исполняет перемещение агента по пути.
package movement

import (
	"errors"

	"tactics-server/internal/hexgrid"
	"tactics-server/internal/navrange"
	"tactics-server/internal/pathfind"
	"tactics-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Причины отказа планировщика.
var (
	ErrInvalidTarget = errors.New("target cell missing or disabled")
	ErrNoBudget      = errors.New("no remaining movement distance")
	ErrNotConfigured = errors.New("planner is missing grid or path oracle")
	ErrNoCurrentCell = errors.New("agent cell could not be resolved")
	ErrNoPath        = errors.New("no path found")
)

// Plan - путь, уже урезанный до бюджета агента.
type Plan struct {
	AgentID  string
	Path     []*hexgrid.Cell
	Target   *hexgrid.Cell
	Distance int
}

// Destination - последняя клетка урезанного пути (может отличаться от Target).
func (p *Plan) Destination() *hexgrid.Cell {
	if p == nil || len(p.Path) == 0 {
		return nil
	}
	return p.Path[len(p.Path)-1]
}

// Points - мировые позиции клеток пути.
func (p *Plan) Points() []hexgrid.Point {
	if p == nil {
		return nil
	}
	out := make([]hexgrid.Point, len(p.Path))
	for i, c := range p.Path {
		out[i] = c.Pos
	}
	return out
}

type PlanEventKind int

const (
	PlanCleared PlanEventKind = iota
	PlanCreated
	PlanFailed
)

func (k PlanEventKind) String() string {
	switch k {
	case PlanCleared:
		return "cleared"
	case PlanCreated:
		return "created"
	case PlanFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PlanEvent получают подписчики при каждой смене текущего плана.
type PlanEvent struct {
	Kind   PlanEventKind
	Plan   *Plan
	Reason error
}

// Identified - агент, который умеет назвать себя. Необязательно.
type Identified interface {
	ID() string
}

// Planner держит единственный активный план.
type Planner struct {
	Grid   hexgrid.Index
	Oracle pathfind.Oracle

	current   *Plan
	observers []func(PlanEvent)
	log       *logrus.Entry
}

func NewPlanner(grid hexgrid.Index, oracle pathfind.Oracle) *Planner {
	return &Planner{
		Grid:   grid,
		Oracle: oracle,
		log:    logger.Log.WithField("component", "planner"),
	}
}

// Subscribe добавляет наблюдателя. Вызывается синхронно из PlanMovement/Cancel.
func (p *Planner) Subscribe(fn func(PlanEvent)) {
	if fn != nil {
		p.observers = append(p.observers, fn)
	}
}

func (p *Planner) Current() *Plan {
	return p.current
}

// PlanMovement строит путь к target и урезает его до остатка бюджета.
// Любая ошибка сбрасывает прежний план.
func (p *Planner) PlanMovement(agent navrange.Agent, target *hexgrid.Cell) (*Plan, error) {
	if target == nil || !target.Enabled {
		return nil, p.fail(ErrInvalidTarget)
	}
	if agent == nil || agent.RemainingDistance() <= 0 {
		return nil, p.fail(ErrNoBudget)
	}
	if p.Grid == nil || p.Oracle == nil {
		return nil, p.fail(ErrNotConfigured)
	}

	start := navrange.ResolveCell(agent, p.Grid)
	if start == nil {
		return nil, p.fail(ErrNoCurrentCell)
	}

	path := p.Oracle.FindPath(start, target)
	if len(path) == 0 {
		return nil, p.fail(ErrNoPath)
	}

	budget := agent.RemainingDistance()
	path = Truncate(path, budget)
	plan := &Plan{
		Path:     path,
		Target:   target,
		Distance: pathfind.Cost(path),
	}
	if id, ok := agent.(Identified); ok {
		plan.AgentID = id.ID()
	}

	p.clear()
	p.current = plan
	p.emit(PlanEvent{Kind: PlanCreated, Plan: plan})

	p.log.WithFields(logrus.Fields{
		"agent":    plan.AgentID,
		"from":     start.Coord,
		"target":   target.Coord,
		"distance": plan.Distance,
		"budget":   budget,
	}).Debug("Movement planned")

	return plan, nil
}

// Cancel сбрасывает текущий план.
func (p *Planner) Cancel() {
	p.clear()
}

func (p *Planner) clear() {
	if p.current == nil {
		return
	}
	old := p.current
	p.current = nil
	p.emit(PlanEvent{Kind: PlanCleared, Plan: old})
}

func (p *Planner) fail(reason error) error {
	p.clear()
	p.emit(PlanEvent{Kind: PlanFailed, Reason: reason})
	p.log.WithError(reason).Debug("Movement plan rejected")
	return reason
}

func (p *Planner) emit(ev PlanEvent) {
	for _, fn := range p.observers {
		fn(ev)
	}
}

// Truncate оставляет первые budget+1 клеток, если путь длиннее бюджета.
// Дробная точка на разрезе здесь не считается, только при исполнении.
func Truncate(path []*hexgrid.Cell, budget int) []*hexgrid.Cell {
	if budget < 0 {
		budget = 0
	}
	if pathfind.Cost(path) <= budget {
		return path
	}
	return path[:budget+1]
}
