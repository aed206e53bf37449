package server

import (
	"net/http"
	"time"

	"tactics-server/internal/engine"
	"tactics-server/pkg/api"
	"tactics-server/pkg/logger"
	"tactics-server/pkg/utils"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client - посредник между Websocket и GameService
type Client struct {
	Game  *engine.GameService
	Conn  *websocket.Conn
	Send  chan api.ServerResponse
	Token string

	done chan struct{}
	log  *logrus.Entry
}

func NewClient(game *engine.GameService, conn *websocket.Conn) *Client {
	return &Client{
		Game: game,
		Conn: conn,
		Send: make(chan api.ServerResponse, 256),
		done: make(chan struct{}),
		log:  logger.For("ws"),
	}
}

// readPump читает команды от клиента.
// Первое сообщение - логин: Token это ID агента. Пустой или чужой токен
// делает клиента наблюдателем.
func (c *Client) readPump() {
	var updates chan api.ServerResponse
	defer func() {
		close(c.done)
		if updates != nil {
			c.Game.Hub.Release(c.Token, updates)
		} else {
			close(c.Send)
		}
		if err := c.Conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection")
		}
		c.log.WithField("token", c.Token).Info("Client disconnected")
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.WithError(err).Warn("failed to set read deadline")
	}
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// 1. HANDSHAKE (LOGIN)
	var loginCmd api.ClientCommand
	if err := c.Conn.ReadJSON(&loginCmd); err != nil {
		c.log.WithError(err).Warn("Handshake failed")
		return
	}

	c.Token = loginCmd.Token
	if c.Token == "" {
		c.Token = utils.GenerateID()
	}
	log := c.log.WithField("token", c.Token)
	log.Info("Client logged in")

	// 2. ПОДПИСКА НА ОБНОВЛЕНИЯ
	updates = c.Game.Hub.Register(c.Token)
	go c.forward(updates)

	// INIT - триггер первой отрисовки
	if err := c.Game.ProcessCommand(api.ClientCommand{Action: "INIT", Token: c.Token}); err != nil {
		log.WithError(err).Error("INIT rejected")
	}

	// 3. ЦИКЛ ЧТЕНИЯ КОМАНД
	for {
		var cmd api.ClientCommand
		if err := c.Conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("WS read error")
			}
			return
		}
		cmd.Token = c.Token
		if err := c.Game.ProcessCommand(cmd); err != nil {
			log.WithError(err).Debug("Command dropped")
			c.Game.Hub.SendTo(c.Token, api.ServerResponse{Type: api.TypeError, Error: err.Error()})
		}
	}
}

// forward пересылает снимки из хаба в writePump.
// Закрытие канала хаба (выход или переподключение) закрывает Send.
func (c *Client) forward(updates chan api.ServerResponse) {
	defer close(c.Send)
	for msg := range updates {
		select {
		case c.Send <- msg:
		case <-c.done:
			return
		}
	}
}

// writePump отправляет данные клиенту + Ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set write deadline")
			}
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				c.log.WithError(err).Debug("write json message failed")
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}
