package movement

import (
	"sort"

	"tactics-server/internal/hexgrid"
)

// DefaultMilestones - отметки прогресса по умолчанию.
var DefaultMilestones = []float64{0.25, 0.5, 0.75, 1.0}

// ProgressTracker ведет долю пройденного пути [0,1] и отметки прогресса.
type ProgressTracker struct {
	Speed      float64 // мировых единиц в секунду
	Milestones []float64

	total    float64
	progress float64
	next     int
}

func NewProgressTracker(speed float64, milestones []float64) *ProgressTracker {
	if len(milestones) == 0 {
		milestones = DefaultMilestones
	}
	sorted := append([]float64(nil), milestones...)
	sort.Float64s(sorted)
	return &ProgressTracker{Speed: speed, Milestones: sorted}
}

// Reset начинает новый путь длины total.
func (t *ProgressTracker) Reset(total float64) {
	t.total = total
	t.progress = 0
	t.next = 0
}

func (t *ProgressTracker) Progress() float64 { return t.progress }
func (t *ProgressTracker) Total() float64 { return t.total }

// Advance продвигает прогресс на speed*delta/total и возвращает отметки,
// пересеченные впервые. Индекс отметок только растет.
func (t *ProgressTracker) Advance(delta float64) []float64 {
	if t.total <= 0 {
		t.progress = 1
	} else if delta > 0 {
		t.progress += t.Speed * delta / t.total
	}
	t.progress = clamp01(t.progress)
	return t.crossed()
}

// Finish выставляет 100% и отдает оставшиеся отметки.
func (t *ProgressTracker) Finish() []float64 {
	t.progress = 1
	return t.crossed()
}

func (t *ProgressTracker) crossed() []float64 {
	var out []float64
	for t.next < len(t.Milestones) && t.progress >= t.Milestones[t.next] {
		out = append(out, t.Milestones[t.next])
		t.next++
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// WaypointTracker следит, к какой точке пути агент идет сейчас.
// Точка считается пройденной, если агент ближе ReachDistance, или
// принудительно, если за StuckTimeout секунд он приблизился меньше чем на 1.
type WaypointTracker struct {
	ReachDistance float64
	StuckTimeout  float64

	index     int
	elapsed   float64
	lastCheck float64
	checked   bool
}

func NewWaypointTracker(reach, stuckTimeout float64) *WaypointTracker {
	return &WaypointTracker{ReachDistance: reach, StuckTimeout: stuckTimeout}
}

func (w *WaypointTracker) Reset() {
	w.index = 0
	w.elapsed = 0
	w.lastCheck = 0
	w.checked = false
}

// Index - текущая целевая точка. Равен len(waypoints), когда путь пройден.
func (w *WaypointTracker) Index() int { return w.index }

func (w *WaypointTracker) Done(count int) bool { return w.index >= count }

// WaypointStep - одна пройденная точка за вызов Update.
type WaypointStep struct {
	Index  int
	Forced bool
}

// Update обрабатывает один тик. Может пройти несколько точек подряд, если
// агент уже рядом со следующими.
func (w *WaypointTracker) Update(pos hexgrid.Point, waypoints []hexgrid.Point, delta float64) []WaypointStep {
	if w.index >= len(waypoints) {
		return nil
	}

	var steps []WaypointStep
	for w.index < len(waypoints) && pos.DistanceTo(waypoints[w.index]) < w.ReachDistance {
		steps = append(steps, WaypointStep{Index: w.index})
		w.advance()
	}
	if len(steps) > 0 || w.index >= len(waypoints) {
		return steps
	}

	d := pos.DistanceTo(waypoints[w.index])
	w.elapsed += delta
	if !w.checked {
		w.lastCheck = d
		w.checked = true
		return nil
	}
	if w.elapsed <= w.StuckTimeout {
		return nil
	}

	if w.lastCheck-d < 1 {
		steps = append(steps, WaypointStep{Index: w.index, Forced: true})
		w.advance()
		return steps
	}
	// Приближается, пусть идет дальше.
	w.lastCheck = d
	w.elapsed = 0
	return nil
}

func (w *WaypointTracker) advance() {
	w.index++
	w.elapsed = 0
	w.checked = false
}
