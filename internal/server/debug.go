package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"tactics-server/internal/engine"
)

// DebugHandler предоставляет доступ к внутреннему состоянию движка
type DebugHandler struct {
	Service *engine.GameService
}

func NewDebugHandler(s *engine.GameService) *DebugHandler {
	return &DebugHandler{Service: s}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/agents", h.handleAgents)
	mux.HandleFunc("/debug/queue", h.handleTurnQueue)
	mux.HandleFunc("/debug/range", h.handleRange)
}

// /debug/agents - все агенты с позицией и остатком бюджета
func (h *DebugHandler) handleAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.Service.DebugAgents()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, agents)
}

// /debug/queue - очередь ходов в порядке извлечения
func (h *DebugHandler) handleTurnQueue(w http.ResponseWriter, r *http.Request) {
	queue, err := h.Service.DebugQueue()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, queue)
}

// /debug/range?agent=ID - досягаемость агента без изменения сессии
func (h *DebugHandler) handleRange(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("agent")
	if id == "" {
		http.Error(w, "agent is required", http.StatusBadRequest)
		return
	}

	view, err := h.Service.DebugRange(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, view)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrNotReady):
		status = http.StatusServiceUnavailable
	case errors.Is(err, engine.ErrUnknownAgent):
		status = http.StatusNotFound
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	// Разрешаем запросы с любого источника (нужно для локального debug-клиента)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	w.Header().Set("Content-Type", "application/json")

	if data == nil {
		_, _ = w.Write([]byte("[]"))
		return
	}

	_ = json.NewEncoder(w).Encode(data)
}
