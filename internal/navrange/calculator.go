// Package navrange считает клетки, куда агент может дойти в этом ходу.
package navrange

import (
	"tactics-server/internal/hexgrid"
	"tactics-server/internal/pathfind"
	"tactics-server/internal/reach"
	"tactics-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Calculator связывает агента, сетку и политику фильтрации с поиском в ширину.
type Calculator struct {
	Policy Policy
}

// NewCalculator создает калькулятор; nil-политика означает NoFilter.
func NewCalculator(policy Policy) *Calculator {
	if policy == nil {
		policy = NoFilter{}
	}
	return &Calculator{Policy: policy}
}

// Reachability возвращает полный результат поиска (клетки и стоимости).
func (c *Calculator) Reachability(agent Agent, grid hexgrid.Index, oracle pathfind.Oracle) reach.Result {
	ctx := NewContext(agent, grid, oracle)
	log := logger.Log.WithFields(logrus.Fields{
		"component": "navrange",
		"policy":    c.Policy.Name(),
		"remaining": ctx.Remaining,
	})

	if !ctx.Valid() {
		if ctx.Cell == nil && agent != nil {
			log.Warn("Navigable range skipped: agent cell unresolved")
		} else {
			log.Debug("Navigable range skipped: invalid context")
		}
		return reach.Empty()
	}

	res := reach.FloodFill(ctx.Cell, ctx.Grid, ctx.Remaining, c.Policy.Filter(ctx))
	log.WithFields(logrus.Fields{
		"cell":  ctx.Cell.Coord,
		"cells": res.Len(),
	}).Debug("Navigable range calculated")
	return res
}

// Calculate возвращает клетки в пределах остатка бюджета агента.
func (c *Calculator) Calculate(agent Agent, grid hexgrid.Index, oracle pathfind.Oracle) []*hexgrid.Cell {
	return c.Reachability(agent, grid, oracle).Cells
}
