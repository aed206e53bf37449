// Package mapgen строит гекс-карты для сессии: препятствия, хребты, озера
// и стартовые клетки партии. Все случайное зависит только от сида.
package mapgen

import (
	"math/rand"

	"tactics-server/internal/hexgrid"
	"tactics-server/internal/reach"
	"tactics-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Значения по умолчанию
const (
	DefaultWidth   = 16
	DefaultHeight  = 12
	DefaultHexSize = 32.0
)

// MapBuilder предоставляет fluent API для создания карты.
// WithSize и WithHexSize вызываются до остальных шагов.
type MapBuilder struct {
	width   int
	height  int
	hexSize float64
	rng     *rand.Rand
	grid    *hexgrid.Grid
	spawns  []*hexgrid.Cell
	log     *logrus.Entry
}

// NewMap создает builder с детерминированным генератором.
func NewMap(seed int64) *MapBuilder {
	return &MapBuilder{
		width:   DefaultWidth,
		height:  DefaultHeight,
		hexSize: DefaultHexSize,
		rng:     rand.New(rand.NewSource(seed)),
		log:     logger.Log.WithFields(logrus.Fields{"component": "mapgen", "seed": seed}),
	}
}

// WithSize устанавливает размер карты в offset-координатах
func (b *MapBuilder) WithSize(width, height int) *MapBuilder {
	if width > 0 && height > 0 {
		b.width = width
		b.height = height
	}
	return b
}

// WithHexSize устанавливает радиус гекса в мировых единицах
func (b *MapBuilder) WithHexSize(size float64) *MapBuilder {
	if size > 0 {
		b.hexSize = size
	}
	return b
}

func (b *MapBuilder) ensureGrid() *hexgrid.Grid {
	if b.grid == nil {
		b.grid = hexgrid.NewGrid(b.width, b.height, hexgrid.NewLayout(b.hexSize))
	}
	return b.grid
}

func (b *MapBuilder) randomCell() *hexgrid.Cell {
	g := b.ensureGrid()
	return g.CellAtOffset(hexgrid.Offset{Col: b.rng.Intn(g.Width), Row: b.rng.Intn(g.Height)})
}

func (b *MapBuilder) disable(c *hexgrid.Cell) {
	if c != nil {
		_ = b.grid.SetEnabled(c.Coord, false)
	}
}

// WithTemplate применяет шаблон местности. Неизвестный шаблон пропускается.
func (b *MapBuilder) WithTemplate(name string) *MapBuilder {
	t, ok := Templates[name]
	if !ok {
		b.log.WithField("template", name).Warn("Unknown map template, using open field")
		return b
	}
	b.Scatter(t.Obstacles)
	for i := 0; i < t.Ridges; i++ {
		b.Ridge(t.RidgeLength)
	}
	for i := 0; i < t.Lakes; i++ {
		b.Lake(t.LakeRadius)
	}
	return b
}

// Scatter выключает случайные клетки с вероятностью density.
func (b *MapBuilder) Scatter(density float64) *MapBuilder {
	g := b.ensureGrid()
	if density <= 0 {
		return b
	}
	for _, c := range g.Cells() {
		if b.rng.Float64() < density {
			b.disable(c)
		}
	}
	return b
}

// Ridge прокладывает непроходимый хребет: случайное блуждание с
// преимущественным направлением.
func (b *MapBuilder) Ridge(length int) *MapBuilder {
	g := b.ensureGrid()
	c := b.randomCell()
	dir := b.rng.Intn(hexgrid.DirCount)
	for i := 0; i < length && c != nil; i++ {
		b.disable(c)
		// Изредка поворачиваем на соседнее направление.
		if b.rng.Intn(4) == 0 {
			dir = (dir + hexgrid.DirCount + b.rng.Intn(3) - 1) % hexgrid.DirCount
		}
		c = g.Cell(c.Coord.Neighbor(dir))
	}
	return b
}

// Lake выключает круг клеток заданного радиуса.
func (b *MapBuilder) Lake(radius int) *MapBuilder {
	g := b.ensureGrid()
	center := b.randomCell()
	for _, c := range g.CellsInRange(center, radius) {
		b.disable(c)
	}
	return b
}

// LargestRegion возвращает самую большую связную область проходимых клеток.
func (b *MapBuilder) LargestRegion() reach.Result {
	g := b.ensureGrid()
	seen := make(map[hexgrid.Axial]bool)
	best := reach.Empty()
	limit := len(g.Cells())

	for _, c := range g.Cells() {
		if !c.Enabled || seen[c.Coord] {
			continue
		}
		region := reach.FloodFill(c, g, limit, nil)
		for _, rc := range region.Cells {
			seen[rc.Coord] = true
		}
		if region.Len() > best.Len() {
			best = region
		}
	}
	return best
}

// PlaceSpawns выбирает count стартовых клеток в самой большой области,
// разнося их как можно дальше друг от друга.
func (b *MapBuilder) PlaceSpawns(count int) *MapBuilder {
	region := b.LargestRegion()
	if region.Len() == 0 || count <= 0 {
		return b
	}
	if count > region.Len() {
		count = region.Len()
	}

	chosen := []*hexgrid.Cell{region.Cells[b.rng.Intn(region.Len())]}
	for len(chosen) < count {
		var next *hexgrid.Cell
		bestDist := -1
		for _, c := range region.Cells {
			d := minDistance(c, chosen)
			if d > bestDist {
				bestDist = d
				next = c
			}
		}
		chosen = append(chosen, next)
	}
	b.spawns = chosen
	return b
}

func minDistance(c *hexgrid.Cell, others []*hexgrid.Cell) int {
	best := -1
	for _, o := range others {
		d := hexgrid.Distance(c.Coord, o.Coord)
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

// Build собирает и возвращает готовую карту и стартовые клетки
func (b *MapBuilder) Build() (*hexgrid.Grid, []*hexgrid.Cell) {
	g := b.ensureGrid()
	b.log.WithFields(logrus.Fields{
		"width":   g.Width,
		"height":  g.Height,
		"enabled": g.EnabledCount(),
		"spawns":  len(b.spawns),
	}).Info("Map generated")
	return g, b.spawns
}
