package handlers

import (
	"encoding/json"

	"tactics-server/internal/domain"
	"tactics-server/internal/hexgrid"
	"tactics-server/internal/movement"
	"tactics-server/internal/reach"
)

// Arena описывает сессию, над которой работают хендлеры.
// engine.Session неявно реализует этот интерфейс.
type Arena interface {
	ActiveAgent() *domain.Agent
	ComputeRange(agent *domain.Agent) (reach.Result, error)
	Plan(agent *domain.Agent, target hexgrid.Axial) (*movement.Plan, error)
	Execute(agent *domain.Agent) error
	Cancel(agent *domain.Agent) error
	EndTurn(agent *domain.Agent) error
	SetEnabled(target hexgrid.Axial, enabled bool) error
}

// Context передает хендлеру сессию и того, кто выполняет команду.
// Actor == nil для наблюдателя без агента.
type Context struct {
	Arena Arena
	Actor *domain.Agent
}

// Result - возвращает результат выполнения команды.
// Хендлер НЕ пишет в логи сервиса напрямую, он возвращает данные.
type Result struct {
	Msg         string // Текст лога
	MsgType     string // Тип лога (INFO, MOVE, WARN)
	GridChanged bool   // клиентам нужна сетка целиком
	Reply       bool   // полный снимок только отправителю (INIT)
}

// HandlerFunc - это контракт для любой команды (PLAN, EXECUTE, etc).
type HandlerFunc func(ctx Context, payload json.RawMessage) (Result, error)

// EmptyResult - вспомогательная функция для пустого успешного ответа
func EmptyResult() Result {
	return Result{}
}
