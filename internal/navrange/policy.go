package navrange

import (
	"fmt"
	"strings"

	"tactics-server/internal/hexgrid"
	"tactics-server/internal/pathfind"
	"tactics-server/internal/reach"
)

// Policy - стратегия допуска клеток поверх общего поиска в ширину.
// Все политики выполняют один контракт: результат - клетки, чья стоимость
// движения от клетки агента не превышает остаток бюджета в метрике
// активной проекции сетки. Отличается только предикат.
type Policy interface {
	Name() string
	Filter(ctx Context) reach.Filter
}

// Имена политик в конфиге.
const (
	PolicyNone       = "none"
	PolicyProjection = "projection"
	PolicyPathVerify = "path-verify"
)

// NoFilter допускает все клетки, найденные поиском.
type NoFilter struct{}

func (NoFilter) Name() string { return PolicyNone }
func (NoFilter) Filter(Context) reach.Filter { return nil }

// Projection - линейная проекция мировых координат в экранные
// (например, изометрия: ScaleY = 0.5).
type Projection struct {
	ScaleX float64 `yaml:"scale_x" json:"scaleX"`
	ScaleY float64 `yaml:"scale_y" json:"scaleY"`
	Shear  float64 `yaml:"shear" json:"shear"`
}

// Identity - проекция без искажений.
var Identity = Projection{ScaleX: 1, ScaleY: 1}

// Isometric - стандартное сжатие по вертикали вдвое.
var Isometric = Projection{ScaleX: 1, ScaleY: 0.5}

func (p Projection) Apply(pt hexgrid.Point) hexgrid.Point {
	return hexgrid.Point{X: p.ScaleX*pt.X + p.Shear*pt.Y, Y: p.ScaleY * pt.Y}
}

// ProjectionTolerance сверяет логическую гекс-дистанцию с визуальной:
// клетка допускается, если ее экранное расстояние от агента не больше
// Tolerance * остаток бюджета * средний экранный шаг.
type ProjectionTolerance struct {
	Layout     hexgrid.Layout
	Projection Projection
	Tolerance  float64
}

func (p ProjectionTolerance) Name() string { return PolicyProjection }

// UnitStep - средняя экранная длина шага к шести соседям.
func (p ProjectionTolerance) UnitStep() float64 {
	origin := hexgrid.Axial{}
	c0 := p.Layout.Center(origin)
	sum := 0.0
	for _, n := range origin.Neighbors() {
		sum += p.Projection.Apply(p.Layout.Center(n).Sub(c0)).Len()
	}
	return sum / hexgrid.DirCount
}

func (p ProjectionTolerance) Filter(ctx Context) reach.Filter {
	if ctx.Cell == nil {
		return nil
	}
	origin := p.Projection.Apply(ctx.Cell.Pos)
	limit := p.Tolerance*float64(ctx.Remaining)*p.UnitStep() + 1e-9
	return func(c *hexgrid.Cell) bool {
		return p.Projection.Apply(c.Pos).DistanceTo(origin) <= limit
	}
}

// PathVerify перепроверяет каждую клетку внешним поиском пути.
// Самая дорогая политика; оставлена для сеток с нестандартной стоимостью шага.
type PathVerify struct{}

func (PathVerify) Name() string { return PolicyPathVerify }

func (PathVerify) Filter(ctx Context) reach.Filter {
	return func(c *hexgrid.Cell) bool {
		if ctx.Oracle == nil || ctx.Cell == nil {
			return false
		}
		if c == ctx.Cell {
			return true
		}
		path := ctx.Oracle.FindPath(ctx.Cell, c)
		return len(path) > 0 && pathfind.Cost(path) <= ctx.Remaining
	}
}

// ParsePolicy создает политику по имени из конфига.
func ParsePolicy(name string, layout hexgrid.Layout, projection Projection, tolerance float64) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyNone:
		return NoFilter{}, nil
	case PolicyProjection:
		if tolerance <= 0 {
			return nil, fmt.Errorf("projection policy: tolerance must be positive, got %v", tolerance)
		}
		return ProjectionTolerance{Layout: layout, Projection: projection, Tolerance: tolerance}, nil
	case PolicyPathVerify:
		return PathVerify{}, nil
	default:
		return nil, fmt.Errorf("unknown range policy %q", name)
	}
}
