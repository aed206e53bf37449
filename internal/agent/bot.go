package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"tactics-server/pkg/api"
	"tactics-server/pkg/logger"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"
)

// readLimit - INIT несет всю сетку, дефолтных 32 КБ не хватает.
const readLimit = 4 << 20

// Bot - внешний клиент, который играет за одного агента через WebSocket.
// В свой ход он запрашивает область, идет в самую дальнюю клетку
// и завершает ход, когда бюджет кончился.
type Bot struct {
	URL   string
	Token string

	lastKey string
	log     *logrus.Entry
}

func NewBot(url, token string) *Bot {
	return &Bot{
		URL:   url,
		Token: token,
		log: logger.Log.WithFields(logrus.Fields{
			"component": "bot",
			"agent_id":  token,
		}),
	}
}

// Run подключается к серверу и играет до отмены ctx или закрытия соединения.
func (b *Bot) Run(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, b.URL, nil)
	if err != nil {
		return fmt.Errorf("bot dial %s: %w", b.URL, err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	conn.SetReadLimit(readLimit)

	if err := wsjson.Write(ctx, conn, api.ClientCommand{Token: b.Token}); err != nil {
		return fmt.Errorf("bot login: %w", err)
	}
	b.log.Info("Bot connected")

	for {
		var state api.ServerResponse
		if err := wsjson.Read(ctx, conn, &state); err != nil {
			if ctx.Err() != nil || websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				b.log.Info("Bot stopped")
				return nil
			}
			return fmt.Errorf("bot read: %w", err)
		}

		cmd, ok := b.Next(state)
		if !ok {
			continue
		}
		b.log.WithField("action", cmd.Action).Debug("Bot move")
		if err := wsjson.Write(ctx, conn, cmd); err != nil {
			return fmt.Errorf("bot write: %w", err)
		}
	}
}

// Next решает, что отправить в ответ на снимок, и отсекает повтор той же
// команды на том же состоянии (снимки приходят на каждом тике движения).
func (b *Bot) Next(state api.ServerResponse) (api.ClientCommand, bool) {
	cmd, ok := Decide(state, b.Token)
	if !ok {
		return cmd, false
	}

	key := fmt.Sprintf("%s/%d/%d", cmd.Action, state.Tick, remaining(state, b.Token))
	if key == b.lastKey {
		return cmd, false
	}
	b.lastKey = key
	return cmd, true
}

// Decide - чистая функция решения бота.
func Decide(state api.ServerResponse, me string) (api.ClientCommand, bool) {
	if state.ActiveAgentID != me {
		return api.ClientCommand{}, false
	}

	switch {
	case state.Type == api.TypeError:
		return command("END_TURN", nil), true
	case state.Progress != nil && state.Progress.State == "executing":
		return api.ClientCommand{}, false
	case state.Plan != nil && state.Plan.AgentID == me:
		return command("EXECUTE", nil), true
	case state.Range == nil || state.Range.AgentID != me:
		return command("RANGE", nil), true
	}

	target, ok := farthest(state.Range)
	if !ok {
		return command("END_TURN", nil), true
	}
	return command("PLAN", api.CellPayload{Q: target.Q, R: target.R}), true
}

// farthest выбирает первую клетку с наибольшей стоимостью.
func farthest(rv *api.RangeView) (api.Coord, bool) {
	best, bestCost := api.Coord{}, 0
	for _, c := range rv.Cells {
		if c.Cost > bestCost {
			best, bestCost = c.Coord, c.Cost
		}
	}
	return best, bestCost > 0
}

func remaining(state api.ServerResponse, me string) int {
	for _, a := range state.Agents {
		if a.ID == me {
			return a.Remaining
		}
	}
	return 0
}

func command(action string, payload any) api.ClientCommand {
	cmd := api.ClientCommand{Action: action}
	if payload != nil {
		cmd.Payload, _ = json.Marshal(payload)
	}
	return cmd
}
