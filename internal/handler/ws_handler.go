package handler

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/yourusername/survey-api/internal/notifier"
)

// WSHandler обрабатывает WebSocket соединения для доставки событий опросов
type WSHandler struct {
	hub *notifier.Hub
}

// NewWSHandler создает новый обработчик WebSocket
func NewWSHandler(hub *notifier.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// Пустой Origin - не браузерный клиент (мобильное приложение, curl и т.д.)
		if origin == "" {
			return true
		}

		// Список разрешенных origin (синхронизирован с CORS в main.go)
		allowedOrigins := []string{
			"http://localhost:5173",
			"http://localhost:8000",
			"http://localhost:3000",
		}

		for _, allowed := range allowedOrigins {
			if origin == allowed {
				return true
			}
		}

		log.Printf("[WSHandler] Отклонено подключение с origin: %s", origin)
		return false
	},
}

// HandleConnection апгрейдит HTTP-запрос до WebSocket и регистрирует клиента.
// Идентификатор пользователя берется из query-параметра user_id
// или из заголовка X-User-ID.
func (h *WSHandler) HandleConnection(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		userID = strings.TrimSpace(c.GetHeader("X-User-ID"))
	}
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WSHandler] Ошибка апгрейда соединения для пользователя %s: %v", userID, err)
		return
	}

	client := notifier.NewClient(h.hub, conn, userID)
	h.hub.Register(client)
	client.Start()

	log.Printf("[WSHandler] Пользователь %s подключен (всего клиентов: %d)", userID, h.hub.ClientCount())
}
