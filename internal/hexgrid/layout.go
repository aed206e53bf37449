package hexgrid

import "math"

// CornerTable[parity][dir] - пара индексов углов, образующих сторону гекса,
// которая смотрит на соседа в направлении dir. Четность - это четность столбца
// в odd-q: раскладки с перекосом могут задавать разные таблицы для столбцов.
type CornerTable [2][DirCount][2]int

// Corners - все, что нужно экстрактору границ: смещения углов от центра
// клетки и таблица соответствия направление -> пара углов.
type Corners struct {
	Offsets [DirCount]Point
	Table   CornerTable
}

// DefaultCornerTable для flat-top гекса с осью Y вниз. Углы пронумерованы по
// возрастанию угла (0 - восток, шаг 60°), каждая сторона идет от меньшего
// угла к большему, поэтому обход клетки всегда однонаправленный.
var DefaultCornerTable = CornerTable{
	{{0, 1}, {5, 0}, {4, 5}, {3, 4}, {2, 3}, {1, 2}},
	{{0, 1}, {5, 0}, {4, 5}, {3, 4}, {2, 3}, {1, 2}},
}

// Layout описывает геометрию flat-top сетки в мировых координатах.
type Layout struct {
	Size   float64 `json:"size" yaml:"size"` // Радиус гекса (центр -> угол)
	Origin Point   `json:"origin" yaml:"origin"`
}

// NewLayout создает раскладку с центром клетки (0,0) в начале координат.
func NewLayout(size float64) Layout {
	return Layout{Size: size}
}

// Center возвращает мировую позицию центра клетки.
func (l Layout) Center(a Axial) Point {
	x := l.Size * 1.5 * float64(a.Q)
	y := l.Size * math.Sqrt(3) * (float64(a.R) + float64(a.Q)/2)
	return Point{X: x + l.Origin.X, Y: y + l.Origin.Y}
}

// ToAxial находит клетку, в шестиугольник которой попадает точка.
func (l Layout) ToAxial(p Point) Axial {
	x := (p.X - l.Origin.X) / l.Size
	y := (p.Y - l.Origin.Y) / l.Size
	q := 2.0 / 3.0 * x
	r := -1.0/3.0*x + math.Sqrt(3)/3.0*y
	return cubeRound(q, r)
}

// CornerOffset возвращает смещение i-го угла от центра клетки.
func (l Layout) CornerOffset(i int) Point {
	angle := math.Pi / 3 * float64(i)
	return Point{X: l.Size * math.Cos(angle), Y: l.Size * math.Sin(angle)}
}

// Corners собирает смещения углов и стандартную таблицу сторон.
func (l Layout) Corners() Corners {
	var c Corners
	for i := 0; i < DirCount; i++ {
		c.Offsets[i] = l.CornerOffset(i)
	}
	c.Table = DefaultCornerTable
	return c
}

// StepLength - расстояние между центрами соседних клеток.
func (l Layout) StepLength() float64 {
	return l.Size * math.Sqrt(3)
}

func cubeRound(fq, fr float64) Axial {
	fs := -fq - fr
	q := math.Round(fq)
	r := math.Round(fr)
	s := math.Round(fs)

	dq := math.Abs(q - fq)
	dr := math.Abs(r - fr)
	ds := math.Abs(s - fs)

	if dq > dr && dq > ds {
		q = -r - s
	} else if dr > ds {
		r = -q - s
	}
	return Axial{Q: int(q), R: int(r)}
}
