package engine

import (
	"container/heap"
	"sort"

	"tactics-server/internal/domain"
	"tactics-server/pkg/logger"
)

// RoundLength - на сколько сдвигается приоритет агента после END_TURN.
const RoundLength = 100

// QueueEntry - строка дебаг-дампа очереди.
type QueueEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Priority int    `json:"priority"`
	Seq      int    `json:"seq"`
}

// TurnManager manages the priority queue of agent turns.
type TurnManager struct {
	queue   TurnQueue
	itemMap map[domain.AgentID]*TurnItem
	seq     int
}

func NewTurnManager() *TurnManager {
	return &TurnManager{
		queue:   make(TurnQueue, 0),
		itemMap: make(map[domain.AgentID]*TurnItem),
	}
}

// AddAgent registers an agent in the turn system. Agents added earlier win ties.
func (tm *TurnManager) AddAgent(a *domain.Agent) {
	if a == nil {
		return
	}
	if _, ok := tm.itemMap[a.ID]; ok {
		return
	}

	item := &TurnItem{
		Value:    a,
		Priority: a.NextTick,
		Seq:      tm.seq,
	}
	tm.seq++

	heap.Push(&tm.queue, item)
	tm.itemMap[a.ID] = item

	logger.Log.WithField("agent_id", a.ID).Debug("Agent added to TurnManager")
}

// UpdatePriority updates an agent's position in the queue (e.g. after END_TURN).
func (tm *TurnManager) UpdatePriority(id domain.AgentID, newTick int) {
	if item, ok := tm.itemMap[id]; ok {
		item.Value.NextTick = newTick
		tm.queue.Update(item, newTick)
	}
}

// EndTurn сдвигает агента на раунд вперед и возвращает следующего.
func (tm *TurnManager) EndTurn(id domain.AgentID) *domain.Agent {
	if item, ok := tm.itemMap[id]; ok {
		tm.UpdatePriority(id, item.Priority+RoundLength)
	}
	return tm.Active()
}

// PeekNext returns the item whose turn is next, without removing it.
func (tm *TurnManager) PeekNext() *TurnItem {
	if tm.queue.Len() == 0 {
		return nil
	}
	return tm.queue[0]
}

// Active - агент, чей сейчас ход.
func (tm *TurnManager) Active() *domain.Agent {
	if next := tm.PeekNext(); next != nil {
		return next.Value
	}
	return nil
}

// RemoveAgent removes an agent from the turn system.
func (tm *TurnManager) RemoveAgent(id domain.AgentID) {
	if item, ok := tm.itemMap[id]; ok {
		heap.Remove(&tm.queue, item.Index)
		delete(tm.itemMap, id)
	}
}

func (tm *TurnManager) Len() int {
	return tm.queue.Len()
}

// DebugDump возвращает очередь в порядке ходов.
func (tm *TurnManager) DebugDump() []QueueEntry {
	// Пустой слайс, а не nil: в JSON это "[]", а не "null"
	result := make([]QueueEntry, 0, tm.queue.Len())

	items := append([]*TurnItem(nil), tm.queue...)
	sort.Slice(items, func(i, j int) bool { return TurnQueue(items).Less(i, j) })
	for _, item := range items {
		result = append(result, QueueEntry{
			ID:       string(item.Value.ID),
			Name:     item.Value.Name,
			Priority: item.Priority,
			Seq:      item.Seq,
		})
	}
	return result
}
