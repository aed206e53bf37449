package api

import (
	"encoding/json"
)

// Типы сообщений сервера.
const (
	TypeInit   = "INIT"   // полный снимок, включая сетку
	TypeUpdate = "UPDATE" // снимок без сетки
	TypeError  = "ERROR"  // отказ в команде, Error заполнен
)

// --- СЕРВЕР -> КЛИЕНТ ---

// ServerResponse это корневой объект, который сервер отправляет клиенту.
// Отправляется после каждой команды и на каждом тике, пока идет движение.
type ServerResponse struct {
	// Type тип сообщения: INIT, UPDATE или ERROR.
	Type string `json:"type"`

	// Tick номер хода. Увеличивается с каждым END_TURN.
	Tick int `json:"tick"`

	// ActiveAgentID ID агента, чей ход сейчас.
	// КЛИЕНТ ДОЛЖЕН СРАВНИВАТЬ ЭТО ПОЛЕ СО СВОИМ ID.
	ActiveAgentID string `json:"activeAgentId,omitempty"`

	// MyAgentID ID агента, которым управляет данный клиент. Пусто у наблюдателя.
	MyAgentID string `json:"myAgentId,omitempty"`

	// Grid вся сетка. Только в INIT и после TOGGLE.
	Grid *GridView `json:"grid,omitempty"`

	// Range клетки, достижимые активным агентом в этом ходу.
	Range *RangeView `json:"range,omitempty"`

	// Boundary сглаженные контуры области Range.
	Boundary []ChainView `json:"boundary,omitempty"`

	// Plan текущий план движения активного агента.
	Plan *PlanView `json:"plan,omitempty"`

	// Progress состояние исполнения пути.
	Progress *ProgressView `json:"progress,omitempty"`

	// Agents все агенты партии.
	Agents []AgentView `json:"agents,omitempty"`

	// Logs новые сообщения с прошлой рассылки.
	Logs []LogEntry `json:"logs,omitempty"`

	// Error причина отказа (для Type == ERROR).
	Error string `json:"error,omitempty"`
}

// Coord - осевые координаты клетки.
type Coord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// PointView - точка в мировых координатах.
type PointView struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GridView описывает сетку: размеры в offset-координатах и все клетки.
type GridView struct {
	Width   int        `json:"w"`
	Height  int        `json:"h"`
	HexSize float64    `json:"hexSize"`
	Cells   []CellView `json:"cells"`
}

// CellView это DTO одной клетки.
type CellView struct {
	Coord
	Col     int       `json:"col"`
	Row     int       `json:"row"`
	Pos     PointView `json:"pos"`
	Enabled bool      `json:"enabled"`
}

// RangeView - результат расчета досягаемости.
type RangeView struct {
	AgentID   string     `json:"agentId"`
	Policy    string     `json:"policy"`
	Remaining int        `json:"remaining"`
	Cells     []CostView `json:"cells"`
}

// CostView - клетка и стоимость пути до нее.
type CostView struct {
	Coord
	Cost int `json:"cost"`
}

// ChainView - одна ломаная контура.
type ChainView struct {
	Closed bool        `json:"closed"`
	Points []PointView `json:"points"`
}

// PlanView - план движения, уже урезанный до бюджета.
type PlanView struct {
	AgentID  string      `json:"agentId"`
	Path     []Coord     `json:"path"`
	Target   Coord       `json:"target"`
	Distance int         `json:"distance"`
	Smoothed []PointView `json:"smoothed,omitempty"`
}

// ProgressView - состояние исполнителя.
type ProgressView struct {
	AgentID  string    `json:"agentId"`
	State    string    `json:"state"` // idle, executing, completed
	Progress float64   `json:"progress"`
	Waypoint int       `json:"waypoint"`
	Position PointView `json:"position"`
}

// AgentView это DTO агента.
type AgentView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Team        string    `json:"team,omitempty"`
	Cell        *Coord    `json:"cell,omitempty"` // nil во время движения
	Pos         PointView `json:"pos"`
	Remaining   int       `json:"remaining"`
	MaxDistance int       `json:"maxDistance"`
}

// LogEntry представляет одну запись в логе.
type LogEntry struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Type      string `json:"type"`      // INFO, MOVE, WARN, ERROR
	Timestamp int64  `json:"timestamp"` // Unix milliseconds
}

// --- КЛИЕНТ -> СЕРВЕР ---

// ClientCommand это корневой объект для всех сообщений от клиента к серверу.
type ClientCommand struct {
	// Token ID агента. Обязателен только для первого сообщения (логин).
	Token string `json:"token,omitempty"`

	// Action название действия: INIT, RANGE, PLAN, EXECUTE, CANCEL, END_TURN, TOGGLE.
	Action string `json:"action"`

	// Payload JSON-объект с данными для действия. Его структура зависит от Action.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// --- Payloads ---

// CellPayload используется для PLAN: целевая клетка.
type CellPayload struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// TogglePayload используется для TOGGLE: включить или выключить клетку.
type TogglePayload struct {
	Q       int   `json:"q"`
	R       int   `json:"r"`
	Enabled *bool `json:"enabled"`
}
