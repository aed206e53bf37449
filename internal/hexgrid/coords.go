package hexgrid

import "fmt"

// Axial - координата гекса (q, r). Третья кубическая координата s = -q - r.
type Axial struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// Offset - координата в прямоугольной раскладке odd-q (столбец, строка).
// Нечетные столбцы сдвинуты вниз на полклетки.
type Offset struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// DirCount - количество соседей у гекса.
const DirCount = 6

// Направления (flat-top, ось Y вниз). Индекс совпадает в Axial и Offset.
const (
	DirSE = iota
	DirNE
	DirN
	DirNW
	DirSW
	DirS
)

// axialDirections не зависят от четности столбца.
var axialDirections = [DirCount]Axial{
	{Q: 1, R: 0},  // SE
	{Q: 1, R: -1}, // NE
	{Q: 0, R: -1}, // N
	{Q: -1, R: 0}, // NW
	{Q: -1, R: 1}, // SW
	{Q: 0, R: 1},  // S
}

// offsetDirections[parity][dir] - смещения соседей в odd-q.
var offsetDirections = [2][DirCount]Offset{
	{{1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {0, 1}},
	{{1, 1}, {1, 0}, {0, -1}, {-1, 0}, {-1, 1}, {0, 1}},
}

// S возвращает неявную кубическую координату.
func (a Axial) S() int {
	return -a.Q - a.R
}

func (a Axial) Add(b Axial) Axial {
	return Axial{Q: a.Q + b.Q, R: a.R + b.R}
}

// Neighbor возвращает соседа в направлении dir (0..5).
func (a Axial) Neighbor(dir int) Axial {
	return a.Add(axialDirections[((dir%DirCount)+DirCount)%DirCount])
}

// Neighbors возвращает все шесть соседних координат.
func (a Axial) Neighbors() [DirCount]Axial {
	var out [DirCount]Axial
	for i, d := range axialDirections {
		out[i] = a.Add(d)
	}
	return out
}

// ToOffset конвертирует в odd-q.
func (a Axial) ToOffset() Offset {
	return Offset{Col: a.Q, Row: a.R + (a.Q-(a.Q&1))/2}
}

func (a Axial) String() string {
	return fmt.Sprintf("(%d,%d)", a.Q, a.R)
}

// ToAxial конвертирует odd-q обратно в axial.
func (o Offset) ToAxial() Axial {
	return Axial{Q: o.Col, R: o.Row - (o.Col-(o.Col&1))/2}
}

// Parity - четность столбца (0 или 1), от нее зависят смещения соседей.
func (o Offset) Parity() int {
	return o.Col & 1
}

// Neighbor возвращает соседа в направлении dir с учетом четности столбца.
func (o Offset) Neighbor(dir int) Offset {
	d := offsetDirections[o.Parity()][((dir%DirCount)+DirCount)%DirCount]
	return Offset{Col: o.Col + d.Col, Row: o.Row + d.Row}
}

// Distance возвращает гекс-расстояние (количество шагов) между координатами.
func Distance(a, b Axial) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	return max(dq, dr, ds)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
