package notifier

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// Event - сообщение, доставляемое пользователю через WebSocket
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub хранит активные WebSocket-подключения по пользователям.
// Доставка best-effort: если у пользователя нет подключений или буфер клиента
// переполнен, событие отбрасывается - корректность сессий от доставки не зависит.
type Hub struct {
	mu      sync.RWMutex
	clients map[string][]*Client
}

// NewHub создает новый хаб уведомлений
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string][]*Client),
	}
}

// Register добавляет подключение пользователя
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client.UserID] = append(h.clients[client.UserID], client)
	count := len(h.clients[client.UserID])
	h.mu.Unlock()

	log.Printf("[Notifier] Пользователь %s подключен (%d активных подключений)", client.UserID, count)
}

// Unregister удаляет подключение пользователя
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.clients[client.UserID]
	for i, c := range conns {
		if c == client {
			h.clients[client.UserID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.clients[client.UserID]) == 0 {
		delete(h.clients, client.UserID)
	}
}

// SendToUser отправляет событие всем подключениям пользователя
func (h *Hub) SendToUser(userID string, eventType string, data interface{}) error {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal event %q: %w", eventType, err)
	}

	h.mu.RLock()
	conns := h.clients[userID]
	h.mu.RUnlock()

	if len(conns) == 0 {
		// Пользователь не подключен: событие пропадает, это допустимо
		return nil
	}

	for _, client := range conns {
		select {
		case client.send <- payload:
		default:
			log.Printf("[Notifier] Буфер клиента %s переполнен, событие %q отброшено", userID, eventType)
		}
	}
	return nil
}

// ClientCount возвращает число активных подключений (для диагностики)
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, conns := range h.clients {
		count += len(conns)
	}
	return count
}
