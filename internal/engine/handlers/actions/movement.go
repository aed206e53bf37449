package actions

import (
	"fmt"

	"tactics-server/internal/engine/handlers"
	"tactics-server/internal/hexgrid"
	"tactics-server/pkg/api"
)

// HandleRange считает досягаемость. Наблюдатель получает область активного агента.
func HandleRange(ctx handlers.Context) (handlers.Result, error) {
	agent := ctx.Actor
	if agent == nil {
		agent = ctx.Arena.ActiveAgent()
	}
	if agent == nil {
		return handlers.EmptyResult(), nil
	}

	res, err := ctx.Arena.ComputeRange(agent)
	if err != nil {
		return handlers.Result{}, err
	}
	return handlers.Result{
		Msg:     fmt.Sprintf("%s: доступно клеток %d (запас %d).", agent.Name, res.Len(), agent.Remaining),
		MsgType: "INFO",
	}, nil
}

func HandlePlan(ctx handlers.Context, p api.CellPayload) (handlers.Result, error) {
	plan, err := ctx.Arena.Plan(ctx.Actor, hexgrid.Axial{Q: p.Q, R: p.R})
	if err != nil {
		return handlers.Result{}, err
	}

	msg := fmt.Sprintf("%s прокладывает путь к %s (%d шаг.).", ctx.Actor.Name, plan.Target.Coord, plan.Distance)
	if dest := plan.Destination(); dest != plan.Target {
		msg = fmt.Sprintf("%s дойдет только до %s (%d шаг.).", ctx.Actor.Name, dest.Coord, plan.Distance)
	}
	return handlers.Result{Msg: msg, MsgType: "MOVE"}, nil
}

func HandleExecute(ctx handlers.Context) (handlers.Result, error) {
	if err := ctx.Arena.Execute(ctx.Actor); err != nil {
		return handlers.Result{}, err
	}
	return handlers.Result{
		Msg:     fmt.Sprintf("%s выдвигается.", ctx.Actor.Name),
		MsgType: "MOVE",
	}, nil
}

func HandleCancel(ctx handlers.Context) (handlers.Result, error) {
	if err := ctx.Arena.Cancel(ctx.Actor); err != nil {
		return handlers.Result{}, err
	}
	return handlers.EmptyResult(), nil
}

func HandleEndTurn(ctx handlers.Context) (handlers.Result, error) {
	if err := ctx.Arena.EndTurn(ctx.Actor); err != nil {
		return handlers.Result{}, err
	}
	return handlers.Result{
		Msg:     fmt.Sprintf("%s завершает ход.", ctx.Actor.Name),
		MsgType: "INFO",
	}, nil
}
