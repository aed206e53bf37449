package domain

import "strings"

// ActionType - Внутренний числовой идентификатор действия
type ActionType uint8

const (
	ActionUnknown ActionType = iota
	ActionInit
	ActionRange
	ActionPlan
	ActionExecute
	ActionCancel
	ActionEndTurn
	ActionToggle
)

// Маппинг для конвертации JSON -> Domain
var actionStringToCmd = map[string]ActionType{
	"INIT":     ActionInit,
	"RANGE":    ActionRange,
	"PLAN":     ActionPlan,
	"EXECUTE":  ActionExecute,
	"CANCEL":   ActionCancel,
	"END_TURN": ActionEndTurn,
	"TOGGLE":   ActionToggle,
}

// Маппинг для логов Domain -> String
var actionCmdToString = map[ActionType]string{
	ActionInit:    "INIT",
	ActionRange:   "RANGE",
	ActionPlan:    "PLAN",
	ActionExecute: "EXECUTE",
	ActionCancel:  "CANCEL",
	ActionEndTurn: "END_TURN",
	ActionToggle:  "TOGGLE",
}

// ParseAction конвертирует строку из JSON в ActionType
func ParseAction(s string) ActionType {
	upper := strings.ToUpper(strings.TrimSpace(s))
	if val, ok := actionStringToCmd[upper]; ok {
		return val
	}
	return ActionUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (a ActionType) String() string {
	if val, ok := actionCmdToString[a]; ok {
		return val
	}
	return "UNKNOWN"
}

// IsSystem - действия, которые можно слать не в свой ход.
func (a ActionType) IsSystem() bool {
	return a == ActionInit || a == ActionRange
}
