// Package reach считает множество клеток, достижимых за бюджет хода.
package reach

import (
	"tactics-server/internal/hexgrid"
	"tactics-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Filter - предикат допуска клетки в результат. nil допускает все.
type Filter func(c *hexgrid.Cell) bool

// Result - достигнутые клетки и стоимость (в шагах) до каждой из них.
//
// Инварианты: Cost[Start] == 0; у каждой не стартовой клетки есть проходимый
// сосед со стоимостью на единицу меньше; ни одна стоимость не превышает бюджет.
type Result struct {
	Start *hexgrid.Cell
	Cells []*hexgrid.Cell // В порядке обнаружения
	Cost  map[hexgrid.Axial]int
}

// Empty - нейтральный результат для невалидного ввода.
func Empty() Result {
	return Result{Cost: map[hexgrid.Axial]int{}}
}

// FloodFill - поиск в ширину с единичной ценой шага, ограниченный maxCost.
// На невалидном вводе (нет старта, старт выключен, нет сетки, отрицательный
// бюджет, фильтр отвергает старт) возвращает пустой результат.
func FloodFill(start *hexgrid.Cell, grid hexgrid.Index, maxCost int, filter Filter) Result {
	log := logger.Log.WithFields(logrus.Fields{
		"component": "reach",
		"max_cost":  maxCost,
	})

	if start == nil || !start.Enabled || grid == nil || maxCost < 0 {
		log.Debug("Flood fill skipped: invalid input")
		return Empty()
	}
	if filter != nil && !filter(start) {
		log.WithField("start", start.Coord).Debug("Flood fill skipped: start rejected by filter")
		return Empty()
	}

	res := Result{
		Start: start,
		Cells: []*hexgrid.Cell{start},
		Cost:  map[hexgrid.Axial]int{start.Coord: 0},
	}

	// FIFO фронт. Цена шага одинакова, поэтому первое обнаружение уже минимально.
	queue := []*hexgrid.Cell{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		cost := res.Cost[cur.Coord]
		if cost >= maxCost {
			continue
		}

		for _, n := range grid.EnabledNeighbors(cur) {
			if !n.Enabled {
				continue
			}
			if known, ok := res.Cost[n.Coord]; ok && known <= cost+1 {
				continue
			}
			if filter != nil && !filter(n) {
				continue
			}
			if _, seen := res.Cost[n.Coord]; !seen {
				res.Cells = append(res.Cells, n)
			}
			res.Cost[n.Coord] = cost + 1
			queue = append(queue, n)
		}
	}

	log.WithFields(logrus.Fields{
		"start":   start.Coord,
		"reached": len(res.Cells),
	}).Debug("Flood fill complete")

	return res
}

// Len возвращает количество достигнутых клеток.
func (r Result) Len() int {
	return len(r.Cells)
}

// Contains проверяет, достигнута ли клетка.
func (r Result) Contains(a hexgrid.Axial) bool {
	_, ok := r.Cost[a]
	return ok
}

// CostOf возвращает стоимость клетки, если она достигнута.
func (r Result) CostOf(a hexgrid.Axial) (int, bool) {
	c, ok := r.Cost[a]
	return c, ok
}

// CellsAtCost возвращает клетки с точной стоимостью n.
func (r Result) CellsAtCost(n int) []*hexgrid.Cell {
	return r.CellsInCostRange(n, n)
}

// CellsInCostRange возвращает клетки со стоимостью в [lo, hi] включительно.
func (r Result) CellsInCostRange(lo, hi int) []*hexgrid.Cell {
	var out []*hexgrid.Cell
	for _, c := range r.Cells {
		if cost := r.Cost[c.Coord]; cost >= lo && cost <= hi {
			out = append(out, c)
		}
	}
	return out
}

// Set возвращает множество достигнутых координат (вход экстрактора границ).
func (r Result) Set() map[hexgrid.Axial]bool {
	set := make(map[hexgrid.Axial]bool, len(r.Cells))
	for _, c := range r.Cells {
		set[c.Coord] = true
	}
	return set
}
