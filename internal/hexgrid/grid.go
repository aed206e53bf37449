package hexgrid

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds возвращается при обращении к клетке вне карты.
var ErrOutOfBounds = errors.New("cell out of bounds")

// Cell - одна клетка карты. Во время расчета досягаемости неизменна;
// Enabled меняют только внешние системы (препятствия, местность) между ходами.
type Cell struct {
	Coord   Axial `json:"coord"`
	Pos     Point `json:"pos"`
	Enabled bool  `json:"enabled"`
}

func (c *Cell) String() string {
	if c == nil {
		return "<nil>"
	}
	return fmt.Sprintf("cell%s", c.Coord)
}

// Index - то, что ядру нужно знать о карте.
type Index interface {
	EnabledNeighbors(c *Cell) []*Cell
	CellAtWorldPosition(p Point) *Cell
	CellsInRange(c *Cell, radius int) []*Cell
}

// Grid - прямоугольная карта в раскладке odd-q, индексированная по Axial.
type Grid struct {
	Width  int
	Height int
	Layout Layout

	cells []*Cell // row-major по Offset: Row*Width + Col
}

// NewGrid создает карту width x height, все клетки проходимы.
func NewGrid(width, height int, layout Layout) *Grid {
	g := &Grid{
		Width:  width,
		Height: height,
		Layout: layout,
		cells:  make([]*Cell, width*height),
	}
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			a := Offset{Col: col, Row: row}.ToAxial()
			g.cells[g.index(col, row)] = &Cell{
				Coord:   a,
				Pos:     layout.Center(a),
				Enabled: true,
			}
		}
	}
	return g
}

func (g *Grid) index(col, row int) int {
	return row*g.Width + col
}

func (g *Grid) inBounds(o Offset) bool {
	return o.Col >= 0 && o.Col < g.Width && o.Row >= 0 && o.Row < g.Height
}

// Cell возвращает клетку по axial координате или nil.
func (g *Grid) Cell(a Axial) *Cell {
	return g.CellAtOffset(a.ToOffset())
}

// CellAtOffset возвращает клетку по (столбец, строка) или nil.
func (g *Grid) CellAtOffset(o Offset) *Cell {
	if g == nil || !g.inBounds(o) {
		return nil
	}
	return g.cells[g.index(o.Col, o.Row)]
}

// Cells возвращает все клетки в стабильном порядке (по строкам).
func (g *Grid) Cells() []*Cell {
	return g.cells
}

// SetEnabled включает или выключает клетку (препятствие).
func (g *Grid) SetEnabled(a Axial, enabled bool) error {
	c := g.Cell(a)
	if c == nil {
		return fmt.Errorf("set enabled %s: %w", a, ErrOutOfBounds)
	}
	c.Enabled = enabled
	return nil
}

// Neighbors возвращает существующих соседей независимо от флага Enabled.
func (g *Grid) Neighbors(c *Cell) []*Cell {
	if c == nil {
		return nil
	}
	out := make([]*Cell, 0, DirCount)
	for _, n := range c.Coord.Neighbors() {
		if nc := g.Cell(n); nc != nil {
			out = append(out, nc)
		}
	}
	return out
}

// EnabledNeighbors возвращает проходимых соседей (края карты учитываются).
func (g *Grid) EnabledNeighbors(c *Cell) []*Cell {
	if c == nil {
		return nil
	}
	out := make([]*Cell, 0, DirCount)
	for _, n := range c.Coord.Neighbors() {
		if nc := g.Cell(n); nc != nil && nc.Enabled {
			out = append(out, nc)
		}
	}
	return out
}

// CellAtWorldPosition - обратный поиск клетки по мировой позиции.
func (g *Grid) CellAtWorldPosition(p Point) *Cell {
	if g == nil {
		return nil
	}
	return g.Cell(g.Layout.ToAxial(p))
}

// CellsInRange возвращает существующие клетки на гекс-расстоянии <= radius.
func (g *Grid) CellsInRange(c *Cell, radius int) []*Cell {
	if c == nil || radius < 0 {
		return nil
	}
	var out []*Cell
	for dq := -radius; dq <= radius; dq++ {
		lo := max(-radius, -dq-radius)
		hi := min(radius, -dq+radius)
		for dr := lo; dr <= hi; dr++ {
			if nc := g.Cell(Axial{Q: c.Coord.Q + dq, R: c.Coord.R + dr}); nc != nil {
				out = append(out, nc)
			}
		}
	}
	return out
}

// EnabledCount считает проходимые клетки (для дебага и генератора карт).
func (g *Grid) EnabledCount() int {
	n := 0
	for _, c := range g.cells {
		if c.Enabled {
			n++
		}
	}
	return n
}
