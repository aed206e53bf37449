package hexgrid

import "math"

// Point - точка в мировых координатах.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(o Point) Point { return Point{X: p.X + o.X, Y: p.Y + o.Y} }
func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }
func (p Point) Scale(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// Len возвращает длину вектора.
func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// DistanceTo возвращает евклидово расстояние до другой точки.
func (p Point) DistanceTo(o Point) float64 {
	return p.Sub(o).Len()
}

// Lerp - линейная интерполяция: t=0 -> p, t=1 -> o.
func (p Point) Lerp(o Point, t float64) Point {
	return Point{X: p.X + (o.X-p.X)*t, Y: p.Y + (o.Y-p.Y)*t}
}

// PathLength суммирует длины отрезков ломаной.
func PathLength(points []Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += points[i-1].DistanceTo(points[i])
	}
	return total
}
