package movement

import (
	"errors"

	"tactics-server/internal/hexgrid"
	"tactics-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

var ErrEmptyPath = errors.New("cannot execute an empty path")

type State int

const (
	StateIdle State = iota
	StateExecuting
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExecuting:
		return "executing"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

type ExecEventKind int

const (
	ExecStarted ExecEventKind = iota
	ExecWaypoint
	ExecMilestone
	ExecCompleted
	ExecCancelled
)

func (k ExecEventKind) String() string {
	switch k {
	case ExecStarted:
		return "started"
	case ExecWaypoint:
		return "waypoint"
	case ExecMilestone:
		return "milestone"
	case ExecCompleted:
		return "completed"
	case ExecCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ExecEvent - уведомление исполнителя. Заполнены только поля, относящиеся к Kind.
type ExecEvent struct {
	Kind      ExecEventKind
	Waypoint  int
	Forced    bool    // точка пройдена по таймауту
	Milestone float64 // доля пути
	Distance  float64 // полная длина пути в мировых единицах
}

// ExecutorConfig - параметры движения.
type ExecutorConfig struct {
	Speed         float64
	ReachDistance float64
	StuckTimeout  float64
	Milestones    []float64
}

// Executor - машина состояний Idle -> Executing -> Completed для одного пути.
type Executor struct {
	progress  *ProgressTracker
	waypoints *WaypointTracker

	state     State
	path      []*hexgrid.Cell
	points    []hexgrid.Point
	observers []func(ExecEvent)
	log       *logrus.Entry
}

func NewExecutor(cfg ExecutorConfig) *Executor {
	return &Executor{
		progress:  NewProgressTracker(cfg.Speed, cfg.Milestones),
		waypoints: NewWaypointTracker(cfg.ReachDistance, cfg.StuckTimeout),
		log:       logger.Log.WithField("component", "executor"),
	}
}

func (e *Executor) Subscribe(fn func(ExecEvent)) {
	if fn != nil {
		e.observers = append(e.observers, fn)
	}
}

func (e *Executor) State() State { return e.state }
func (e *Executor) Path() []*hexgrid.Cell { return e.path }
func (e *Executor) Progress() float64 { return e.progress.Progress() }
func (e *Executor) TotalDistance() float64 { return e.progress.Total() }
func (e *Executor) Waypoint() int { return e.waypoints.Index() }
func (e *Executor) Waypoints() []hexgrid.Point { return e.points }

// Start запускает исполнение пути. Текущее исполнение, если есть,
// прерывается без уведомления о завершении.
func (e *Executor) Start(path []*hexgrid.Cell) error {
	if len(path) == 0 {
		return ErrEmptyPath
	}
	if e.state == StateExecuting {
		e.Cancel()
	}

	e.path = path
	e.points = make([]hexgrid.Point, len(path))
	for i, c := range path {
		e.points[i] = c.Pos
	}
	total := hexgrid.PathLength(e.points)
	e.progress.Reset(total)
	e.waypoints.Reset()
	e.state = StateExecuting

	e.log.WithFields(logrus.Fields{
		"cells":    len(path),
		"distance": total,
	}).Debug("Execution started")
	e.emit(ExecEvent{Kind: ExecStarted, Distance: total})
	return nil
}

// Update - один тик: прогресс по времени и проверка точек по фактической позиции.
func (e *Executor) Update(pos hexgrid.Point, delta float64) {
	if e.state != StateExecuting {
		return
	}

	for _, m := range e.progress.Advance(delta) {
		e.emit(ExecEvent{Kind: ExecMilestone, Milestone: m})
	}

	for _, step := range e.waypoints.Update(pos, e.points, delta) {
		if step.Forced {
			e.log.WithField("waypoint", step.Index).Warn("Agent stuck, forcing waypoint advance")
		}
		e.emit(ExecEvent{Kind: ExecWaypoint, Waypoint: step.Index, Forced: step.Forced})
	}

	if e.waypoints.Done(len(e.points)) {
		e.complete()
	}
}

func (e *Executor) complete() {
	for _, m := range e.progress.Finish() {
		e.emit(ExecEvent{Kind: ExecMilestone, Milestone: m})
	}
	e.state = StateCompleted
	total := e.progress.Total()
	e.log.WithField("distance", total).Debug("Execution completed")
	e.emit(ExecEvent{Kind: ExecCompleted, Distance: total})
}

// Cancel сбрасывает все трекеры и возвращает в Idle. Completed не отправляется.
func (e *Executor) Cancel() {
	wasExecuting := e.state == StateExecuting
	e.resetTrackers()
	if wasExecuting {
		e.emit(ExecEvent{Kind: ExecCancelled})
	}
}

// Reset переводит Completed обратно в Idle.
func (e *Executor) Reset() {
	if e.state == StateExecuting {
		return
	}
	e.resetTrackers()
}

func (e *Executor) resetTrackers() {
	e.progress.Reset(0)
	e.waypoints.Reset()
	e.path = nil
	e.points = nil
	e.state = StateIdle
}

// Position - точка на пути при текущем прогрессе.
func (e *Executor) Position() hexgrid.Point {
	return e.PointAt(e.progress.Progress())
}

// PointAt интерполирует точку на пути по доле пройденного расстояния.
func (e *Executor) PointAt(progress float64) hexgrid.Point {
	return PointAlong(e.points, progress)
}

// PointAlong - точка на ломаной на доле progress от ее длины.
func PointAlong(points []hexgrid.Point, progress float64) hexgrid.Point {
	if len(points) == 0 {
		return hexgrid.Point{}
	}
	total := hexgrid.PathLength(points)
	if total <= 0 {
		return points[0]
	}
	target := clamp01(progress) * total
	for i := 1; i < len(points); i++ {
		seg := points[i-1].DistanceTo(points[i])
		if seg <= 0 {
			continue
		}
		if target <= seg {
			return points[i-1].Lerp(points[i], target/seg)
		}
		target -= seg
	}
	return points[len(points)-1]
}

func (e *Executor) emit(ev ExecEvent) {
	for _, fn := range e.observers {
		fn(ev)
	}
}
