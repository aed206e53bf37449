package network

import (
	"sort"
	"sync"

	"tactics-server/pkg/api"
	"tactics-server/pkg/logger"
)

// Broadcaster занимается только рассылкой снимков подписчикам
type Broadcaster struct {
	mu sync.RWMutex
	// Мапа: токен клиента (ID агента или наблюдателя) -> личный канал
	subscribers map[string]chan api.ServerResponse
	buffer      int
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]chan api.ServerResponse),
		buffer:      100,
	}
}

// Register создает личный канал для токена. Старый канал с тем же токеном закрывается.
func (b *Broadcaster) Register(token string) chan api.ServerResponse {
	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.subscribers[token]; ok {
		close(old)
	}

	ch := make(chan api.ServerResponse, b.buffer)
	b.subscribers[token] = ch
	return ch
}

// Unregister удаляет подписчика
func (b *Broadcaster) Unregister(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[token]; ok {
		close(ch)
		delete(b.subscribers, token)
	}
}

// Release удаляет подписчика, только если его канал все еще ch.
// Нужен при переподключении: старое соединение не должно снять новое.
func (b *Broadcaster) Release(token string, ch chan api.ServerResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cur, ok := b.subscribers[token]; ok && cur == ch {
		close(cur)
		delete(b.subscribers, token)
	}
}

// SendTo отправляет сообщение конкретному токену (Unicast).
// Медленный клиент теряет сообщение, цикл движка не блокируется.
func (b *Broadcaster) SendTo(token string, msg api.ServerResponse) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ch, ok := b.subscribers[token]
	if !ok {
		return false
	}
	select {
	case ch <- msg:
		return true
	default:
		logger.Log.WithField("token", token).Debug("Hub: channel full, snapshot dropped")
		return false
	}
}

// Broadcast отправляет всем
func (b *Broadcaster) Broadcast(msg api.ServerResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}

// HasSubscriber проверяет, подключен ли кто-то с этим токеном
func (b *Broadcaster) HasSubscriber(token string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.subscribers[token]
	return ok
}

// Tokens возвращает отсортированный список подписчиков.
func (b *Broadcaster) Tokens() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]string, 0, len(b.subscribers))
	for token := range b.subscribers {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

// SubscriberCount возвращает количество активных подписчиков.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
