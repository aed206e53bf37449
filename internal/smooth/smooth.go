// Package smooth сглаживает ломаные: контуры области и пути движения.
package smooth

import (
	"fmt"
	"strings"

	"tactics-server/internal/hexgrid"
)

// Smoother - общий контракт стратегий сглаживания.
type Smoother interface {
	Smooth(points []hexgrid.Point, closed bool) []hexgrid.Point
}

// Имена стратегий в конфиге.
const (
	KindNone       = "none"
	KindChaikin    = "chaikin"
	KindCatmullRom = "catmull-rom"
)

// closeEps - допуск, при котором последняя точка считается повтором первой.
const closeEps = 1e-6

// New создает стратегию по имени; param - число итераций (Chaikin)
// или число точек на сегмент (Catmull-Rom).
func New(kind string, param int) (Smoother, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindNone:
		return None{}, nil
	case KindChaikin:
		if param < 0 {
			return nil, fmt.Errorf("chaikin: iterations must be >= 0, got %d", param)
		}
		return Chaikin{Iterations: param}, nil
	case KindCatmullRom, "catmullrom":
		if param < 1 {
			return nil, fmt.Errorf("catmull-rom: samples must be >= 1, got %d", param)
		}
		return CatmullRom{Samples: param}, nil
	default:
		return nil, fmt.Errorf("unknown smoothing kind %q", kind)
	}
}

// None возвращает копию без изменений.
type None struct{}

func (None) Smooth(points []hexgrid.Point, _ bool) []hexgrid.Point {
	return clone(points)
}

func clone(points []hexgrid.Point) []hexgrid.Point {
	if points == nil {
		return nil
	}
	out := make([]hexgrid.Point, len(points))
	copy(out, points)
	return out
}

// openLoop убирает повтор первой точки в конце замкнутой ломаной.
// Второе значение сообщает, был ли повтор.
func openLoop(points []hexgrid.Point) ([]hexgrid.Point, bool) {
	n := len(points)
	if n > 2 && points[0].DistanceTo(points[n-1]) < closeEps {
		return points[:n-1], true
	}
	return points, false
}

// Chaikin - срезание углов: каждый отрезок заменяется точками на 25% и 75%.
// Не выходит за выпуклую оболочку исходной ломаной.
type Chaikin struct {
	Iterations int
}

func (c Chaikin) Smooth(points []hexgrid.Point, closed bool) []hexgrid.Point {
	if len(points) < 2 || c.Iterations <= 0 {
		return clone(points)
	}

	if !closed {
		out := points
		for i := 0; i < c.Iterations; i++ {
			out = chaikinOpen(out)
		}
		return out
	}

	loop, repeated := openLoop(points)
	if len(loop) < 2 {
		return clone(points)
	}
	out := loop
	for i := 0; i < c.Iterations; i++ {
		out = chaikinClosed(out)
	}
	if repeated {
		out = append(out, out[0])
	}
	return out
}

// chaikinOpen сохраняет концы как есть; последний отрезок дает только точку 25%,
// чтобы не скучивать точки у конца.
func chaikinOpen(points []hexgrid.Point) []hexgrid.Point {
	n := len(points)
	out := make([]hexgrid.Point, 0, 2*n)
	out = append(out, points[0])
	for i := 0; i < n-1; i++ {
		a, b := points[i], points[i+1]
		out = append(out, a.Lerp(b, 0.25))
		if i < n-2 {
			out = append(out, a.Lerp(b, 0.75))
		}
	}
	return append(out, points[n-1])
}

func chaikinClosed(points []hexgrid.Point) []hexgrid.Point {
	n := len(points)
	out := make([]hexgrid.Point, 0, 2*n)
	for i := 0; i < n; i++ {
		a, b := points[i], points[(i+1)%n]
		out = append(out, a.Lerp(b, 0.25), a.Lerp(b, 0.75))
	}
	return out
}

// CatmullRom - сплайн через все исходные точки. Samples точек на сегмент,
// первая из них совпадает с началом сегмента. Возле острых углов кривая
// может выходить за выпуклую оболочку.
type CatmullRom struct {
	Samples int
}

func (c CatmullRom) Smooth(points []hexgrid.Point, closed bool) []hexgrid.Point {
	if len(points) < 2 {
		return clone(points)
	}
	samples := c.Samples
	if samples < 1 {
		samples = 1
	}

	if !closed {
		n := len(points)
		out := make([]hexgrid.Point, 0, (n-1)*samples+1)
		for i := 0; i < n-1; i++ {
			p0 := points[max(i-1, 0)]
			p3 := points[min(i+2, n-1)]
			out = appendSegment(out, p0, points[i], points[i+1], p3, samples)
		}
		return append(out, points[n-1])
	}

	loop, repeated := openLoop(points)
	n := len(loop)
	if n < 2 {
		return clone(points)
	}
	out := make([]hexgrid.Point, 0, n*samples+1)
	for i := 0; i < n; i++ {
		p0 := loop[(i-1+n)%n]
		p3 := loop[(i+2)%n]
		out = appendSegment(out, p0, loop[i], loop[(i+1)%n], p3, samples)
	}
	if repeated {
		out = append(out, out[0])
	}
	return out
}

func appendSegment(out []hexgrid.Point, p0, p1, p2, p3 hexgrid.Point, samples int) []hexgrid.Point {
	out = append(out, p1)
	for k := 1; k < samples; k++ {
		out = append(out, catmullRom(p0, p1, p2, p3, float64(k)/float64(samples)))
	}
	return out
}

// catmullRom - стандартный кубический базис (натяжение 0.5).
func catmullRom(p0, p1, p2, p3 hexgrid.Point, t float64) hexgrid.Point {
	t2 := t * t
	t3 := t2 * t
	f := func(a, b, c, d float64) float64 {
		return 0.5 * (2*b +
			(-a+c)*t +
			(2*a-5*b+4*c-d)*t2 +
			(-a+3*b-3*c+d)*t3)
	}
	return hexgrid.Point{
		X: f(p0.X, p1.X, p2.X, p3.X),
		Y: f(p0.Y, p1.Y, p2.Y, p3.Y),
	}
}
