package engine

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"tactics-server/internal/boundary"
	"tactics-server/internal/domain"
	"tactics-server/internal/hexgrid"
	"tactics-server/internal/movement"
	"tactics-server/internal/navrange"
	"tactics-server/internal/pathfind"
	"tactics-server/internal/reach"
	"tactics-server/internal/smooth"
	"tactics-server/pkg/api"
	"tactics-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Ошибки команд сессии.
var (
	ErrUnknownAgent = errors.New("unknown agent")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrBusy         = errors.New("movement in progress")
	ErrNoPlan       = errors.New("no movement plan")
	ErrOccupied     = errors.New("cell is occupied by an agent")
	ErrNoSpawn      = errors.New("not enough spawn cells for the party")
)

// RangeState - последний расчет досягаемости и его контуры.
type RangeState struct {
	AgentID  domain.AgentID
	Policy   string
	Result   reach.Result
	Chains   []boundary.Chain
	Smoothed [][]hexgrid.Point
}

// Session - одна партия на одной карте. Не потокобезопасна:
// все вызовы идут из цикла Service.
type Session struct {
	cfg    Config
	grid   *hexgrid.Grid
	oracle pathfind.Oracle

	calc             *navrange.Calculator
	boundarySmoother smooth.Smoother
	pathSmoother     smooth.Smoother
	planner          *movement.Planner
	exec             *movement.Executor
	turns            *TurnManager

	agents map[domain.AgentID]*domain.Agent
	order  []*domain.Agent // порядок из конфига

	runner     *domain.Agent // агент, который сейчас идет
	rangeState *RangeState
	turn       int

	logs []api.LogEntry
	log  *logrus.Entry
}

// identified отдает планировщику ID агента.
type identified struct{ *domain.Agent }

func (a identified) ID() string { return string(a.Agent.ID) }

// NewSession расставляет партию по стартовым клеткам и открывает первый ход.
func NewSession(cfg Config, grid *hexgrid.Grid, spawns []*hexgrid.Cell) (*Session, error) {
	if grid == nil {
		return nil, errors.New("session: grid is nil")
	}
	if len(spawns) < len(cfg.Party) {
		return nil, fmt.Errorf("%w: need %d, got %d", ErrNoSpawn, len(cfg.Party), len(spawns))
	}

	policy, err := cfg.Policy()
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	boundarySmoother, err := smooth.New(cfg.Smoothing.Boundary.Kind, cfg.Smoothing.Boundary.Param)
	if err != nil {
		return nil, fmt.Errorf("session: boundary smoothing: %w", err)
	}
	pathSmoother, err := smooth.New(cfg.Smoothing.Path.Kind, cfg.Smoothing.Path.Param)
	if err != nil {
		return nil, fmt.Errorf("session: path smoothing: %w", err)
	}

	oracle := pathfind.NewAStar(grid)
	s := &Session{
		cfg:              cfg,
		grid:             grid,
		oracle:           oracle,
		calc:             navrange.NewCalculator(policy),
		boundarySmoother: boundarySmoother,
		pathSmoother:     pathSmoother,
		planner:          movement.NewPlanner(grid, oracle),
		exec:             movement.NewExecutor(cfg.ExecutorConfig()),
		turns:            NewTurnManager(),
		agents:           make(map[domain.AgentID]*domain.Agent),
		log:              logger.Log.WithField("component", "session"),
	}

	for i, m := range cfg.Party {
		a := domain.NewAgent(domain.AgentID(m.ID), m.Name, m.MaxDistance)
		a.Team = m.Team
		a.Initiative = m.Initiative
		a.PlaceAt(spawns[i])
		s.agents[a.ID] = a
		s.order = append(s.order, a)
	}

	// Очередь: сначала большая инициатива, при равной - порядок конфига.
	byInitiative := append([]*domain.Agent(nil), s.order...)
	sort.SliceStable(byInitiative, func(i, j int) bool {
		return byInitiative[i].Initiative > byInitiative[j].Initiative
	})
	for _, a := range byInitiative {
		s.turns.AddAgent(a)
	}

	s.exec.Subscribe(s.onExecEvent)

	if active := s.turns.Active(); active != nil {
		active.StartTurn()
		s.AddLog(fmt.Sprintf("Ход %d: %s.", s.turn, active.Name), "INFO")
	}
	return s, nil
}

func (s *Session) Grid() *hexgrid.Grid { return s.grid }

func (s *Session) Config() Config { return s.cfg }

func (s *Session) TurnNumber() int { return s.turn }

func (s *Session) ActiveAgent() *domain.Agent { return s.turns.Active() }

func (s *Session) Agent(id domain.AgentID) *domain.Agent { return s.agents[id] }

// Agents возвращает агентов в порядке конфига.
func (s *Session) Agents() []*domain.Agent { return s.order }

func (s *Session) Queue() []QueueEntry { return s.turns.DebugDump() }

func (s *Session) Range() *RangeState { return s.rangeState }

func (s *Session) CurrentPlan() *movement.Plan { return s.planner.Current() }

func (s *Session) Executor() *movement.Executor { return s.exec }

// Runner - агент в движении или nil.
func (s *Session) Runner() *domain.Agent { return s.runner }

func (s *Session) Busy() bool { return s.runner != nil }

// SmoothedPlan - сглаженная линия текущего плана для отрисовки.
func (s *Session) SmoothedPlan() []hexgrid.Point {
	plan := s.planner.Current()
	if plan == nil {
		return nil
	}
	return s.pathSmoother.Smooth(plan.Points(), false)
}

func (s *Session) checkTurn(agent *domain.Agent) error {
	if agent == nil {
		return ErrUnknownAgent
	}
	if s.turns.Active() != agent {
		return ErrNotYourTurn
	}
	return nil
}

// ComputeRange считает досягаемость агента и контуры области.
// Можно вызывать не в свой ход (подсказка для наблюдателя).
func (s *Session) ComputeRange(agent *domain.Agent) (reach.Result, error) {
	if agent == nil {
		return reach.Empty(), ErrUnknownAgent
	}
	s.rangeState = s.buildRange(agent)
	return s.rangeState.Result, nil
}

func (s *Session) buildRange(agent *domain.Agent) *RangeState {
	res := s.calc.Reachability(agent, s.grid, s.oracle)
	chains := boundary.BuildChains(res.Cells, res.Set(), s.grid.Layout.Corners())
	smoothed := make([][]hexgrid.Point, len(chains))
	for i, ch := range chains {
		smoothed[i] = s.boundarySmoother.Smooth(ch.Points, ch.Closed)
	}

	return &RangeState{
		AgentID:  agent.ID,
		Policy:   s.calc.Policy.Name(),
		Result:   res,
		Chains:   chains,
		Smoothed: smoothed,
	}
}

// Plan строит план к клетке target в пределах остатка бюджета.
func (s *Session) Plan(agent *domain.Agent, target hexgrid.Axial) (*movement.Plan, error) {
	if err := s.checkTurn(agent); err != nil {
		return nil, err
	}
	if s.Busy() {
		return nil, ErrBusy
	}
	return s.planner.PlanMovement(identified{agent}, s.grid.Cell(target))
}

// Execute запускает исполнение текущего плана агента.
func (s *Session) Execute(agent *domain.Agent) error {
	if err := s.checkTurn(agent); err != nil {
		return err
	}
	if s.Busy() {
		return ErrBusy
	}
	plan := s.planner.Current()
	if plan == nil || plan.AgentID != string(agent.ID) {
		return ErrNoPlan
	}

	if err := s.exec.Start(plan.Path); err != nil {
		return err
	}
	agent.Detach()
	s.runner = agent
	s.rangeState = nil
	return nil
}

// Step - один тик симуляции. Возвращает true, если что-то изменилось.
func (s *Session) Step(dt time.Duration) bool {
	if s.runner == nil {
		return false
	}

	s.exec.Update(s.runner.Position(), dt.Seconds())
	switch s.exec.State() {
	case movement.StateExecuting:
		s.runner.Body.MoveTo(s.exec.Position())
	case movement.StateCompleted:
		s.finishRun()
	}
	return true
}

func (s *Session) finishRun() {
	path := s.exec.Path()
	agent := s.runner

	agent.PlaceAt(path[len(path)-1])
	agent.Spend(pathfind.Cost(path))

	s.runner = nil
	s.planner.Cancel()
	s.exec.Reset()
}

// stopRun прерывает движение и ставит агента в клетку, где оказалось тело.
// Списываются только шаги до этой клетки.
func (s *Session) stopRun() {
	agent := s.runner
	path := s.exec.Path()
	reached := s.exec.Waypoint()

	idx := -1
	if c := s.grid.CellAtWorldPosition(agent.Position()); c != nil && c.Enabled {
		for i, pc := range path {
			if pc == c {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		idx = max(reached-1, 0)
	}

	s.exec.Cancel()
	agent.PlaceAt(path[idx])
	agent.Spend(idx)
	s.runner = nil
}

// Cancel прерывает движение (если есть) и сбрасывает план.
func (s *Session) Cancel(agent *domain.Agent) error {
	if err := s.checkTurn(agent); err != nil {
		return err
	}
	if s.Busy() {
		s.stopRun()
		s.rangeState = nil
	}
	s.planner.Cancel()
	return nil
}

// EndTurn завершает ход активного агента и передает ход следующему.
func (s *Session) EndTurn(agent *domain.Agent) error {
	if err := s.checkTurn(agent); err != nil {
		return err
	}
	s.passTurn(agent)
	return nil
}

// ForceEndTurn передает ход по таймауту, не проверяя отправителя.
func (s *Session) ForceEndTurn() {
	if active := s.turns.Active(); active != nil {
		s.AddLog(fmt.Sprintf("%s пропускает ход по таймауту.", active.Name), "WARN")
		s.passTurn(active)
	}
}

func (s *Session) passTurn(agent *domain.Agent) {
	if s.Busy() {
		s.stopRun()
	}
	s.planner.Cancel()
	s.exec.Reset()
	s.rangeState = nil

	next := s.turns.EndTurn(agent.ID)
	s.turn++
	if next == nil {
		return
	}
	next.StartTurn()
	s.AddLog(fmt.Sprintf("Ход %d: %s.", s.turn, next.Name), "INFO")
	s.log.WithFields(logrus.Fields{
		"turn": s.turn,
		"from": agent.ID,
		"to":   next.ID,
	}).Debug("Turn passed")
}

// SetEnabled ставит или убирает препятствие между ходами.
func (s *Session) SetEnabled(target hexgrid.Axial, enabled bool) error {
	if s.Busy() {
		return ErrBusy
	}
	cell := s.grid.Cell(target)
	if cell == nil {
		return fmt.Errorf("toggle %s: %w", target, hexgrid.ErrOutOfBounds)
	}
	if !enabled {
		for _, a := range s.order {
			if a.Cell == cell {
				return fmt.Errorf("toggle %s: %w", target, ErrOccupied)
			}
		}
	}
	if err := s.grid.SetEnabled(target, enabled); err != nil {
		return err
	}

	// Старый план и область могли пройти через эту клетку.
	s.planner.Cancel()
	s.rangeState = nil
	return nil
}

func (s *Session) onExecEvent(ev movement.ExecEvent) {
	name := ""
	if s.runner != nil {
		name = s.runner.Name
	}
	switch ev.Kind {
	case movement.ExecMilestone:
		s.AddLog(fmt.Sprintf("%s: пройдено %.0f%% пути.", name, ev.Milestone*100), "MOVE")
	case movement.ExecWaypoint:
		if ev.Forced {
			s.AddLog(fmt.Sprintf("%s застрял у точки %d, идет дальше.", name, ev.Waypoint), "WARN")
		}
	case movement.ExecCompleted:
		s.AddLog(fmt.Sprintf("%s дошел (%.0f ед.).", name, ev.Distance), "MOVE")
	case movement.ExecCancelled:
		s.AddLog(fmt.Sprintf("%s остановлен.", name), "MOVE")
	}
}
