package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"tactics-server/internal/domain"
	"tactics-server/internal/engine/handlers"
	"tactics-server/internal/engine/handlers/actions"
	"tactics-server/internal/engine/handlers/admin"
	"tactics-server/internal/hexgrid"
	"tactics-server/internal/network"
	"tactics-server/pkg/api"
	"tactics-server/pkg/logger"
	"tactics-server/pkg/mapgen"

	"github.com/sirupsen/logrus"
)

// ErrNotReady - сессия еще не построена.
var ErrNotReady = errors.New("session is not ready")

// MapBuilderFunc строит карту и стартовые клетки по конфигу.
type MapBuilderFunc func(cfg Config) (*hexgrid.Grid, []*hexgrid.Cell)

// DefaultMapBuilder - генератор карт из pkg/mapgen.
func DefaultMapBuilder(cfg Config) (*hexgrid.Grid, []*hexgrid.Cell) {
	return mapgen.Generate(
		cfg.MapSeed(),
		cfg.Grid.Width, cfg.Grid.Height,
		cfg.Grid.HexSize,
		cfg.Grid.Template,
		cfg.Grid.Obstacles,
		len(cfg.Party),
	).Build()
}

// GameService владеет сессией. Все изменения идут из одной горутины (Run);
// mu нужен только для дебаг-чтений из HTTP.
type GameService struct {
	cfg Config

	mu      sync.RWMutex
	session *Session
	bootErr error
	ready   atomic.Bool

	CommandChan chan domain.InternalCommand
	Hub         *network.Broadcaster
	BuildMap    MapBuilderFunc

	handlers     map[domain.ActionType]handlers.HandlerFunc
	lastActivity time.Time
	log          *logrus.Entry
}

func NewService(cfg Config) *GameService {
	s := &GameService{
		cfg:         cfg,
		CommandChan: make(chan domain.InternalCommand, 100),
		Hub:         network.NewBroadcaster(),
		BuildMap:    DefaultMapBuilder,
		handlers:    make(map[domain.ActionType]handlers.HandlerFunc),
		log:         logger.Log.WithField("component", "service"),
	}
	s.registerHandlers()
	return s
}

func (s *GameService) registerHandlers() {
	s.handlers[domain.ActionInit] = handlers.WithEmptyPayload(actions.HandleInit)
	s.handlers[domain.ActionRange] = handlers.WithEmptyPayload(actions.HandleRange)
	s.handlers[domain.ActionPlan] = handlers.RequireActor(handlers.WithPayload(actions.HandlePlan))
	s.handlers[domain.ActionExecute] = handlers.RequireActor(handlers.WithEmptyPayload(actions.HandleExecute))
	s.handlers[domain.ActionCancel] = handlers.RequireActor(handlers.WithEmptyPayload(actions.HandleCancel))
	s.handlers[domain.ActionEndTurn] = handlers.RequireActor(handlers.WithEmptyPayload(actions.HandleEndTurn))
	s.handlers[domain.ActionToggle] = handlers.WithPayload(admin.HandleToggle)
}

// Bootstrap строит карту в отдельной горутине и ждет ее не дольше
// BootstrapDeadline. Таймаут отличим через errors.Is(err, ErrAwaitTimeout).
func (s *GameService) Bootstrap(ctx context.Context) error {
	started := time.Now()
	go func() {
		grid, spawns := s.BuildMap(s.cfg)
		session, err := NewSession(s.cfg, grid, spawns)

		s.mu.Lock()
		s.session = session
		s.bootErr = err
		s.mu.Unlock()
		s.ready.Store(true)
	}()

	if err := AwaitReady(ctx, s.ready.Load, s.cfg.Tick, s.cfg.BootstrapDeadline); err != nil {
		s.log.WithError(err).Error("Bootstrap failed")
		return err
	}

	s.mu.RLock()
	err := s.bootErr
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	s.log.WithField("elapsed", time.Since(started)).Info("Session ready")
	return nil
}

// Ready сообщает, построена ли сессия.
func (s *GameService) Ready() bool {
	return s.ready.Load()
}

// ProcessCommand принимает команду от внешнего мира (WebSocket).
// Token уже проверен при логине: он равен ID агента или токену наблюдателя.
func (s *GameService) ProcessCommand(externalCmd api.ClientCommand) error {
	actionType := domain.ParseAction(externalCmd.Action)
	if actionType == domain.ActionUnknown {
		return fmt.Errorf("unknown action %q", externalCmd.Action)
	}

	s.CommandChan <- domain.InternalCommand{
		Action:  actionType,
		Token:   externalCmd.Token,
		Payload: externalCmd.Payload,
	}
	return nil
}

// --- GAME LOOP ---

// Run обрабатывает команды и тики движения до отмены ctx.
func (s *GameService) Run(ctx context.Context) {
	s.log.WithField("tick", s.cfg.Tick).Info("Game loop started")

	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()
	s.lastActivity = time.Now()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Game loop stopped")
			return

		case cmd := <-s.CommandChan:
			s.mu.Lock()
			s.executeCommand(cmd)
			s.mu.Unlock()

		case now := <-ticker.C:
			s.mu.Lock()
			s.tick(now)
			s.mu.Unlock()
		}
	}
}

func (s *GameService) tick(now time.Time) {
	if s.session == nil {
		return
	}
	if s.session.Step(s.cfg.Tick) {
		s.lastActivity = now
		s.publishUpdate(false)
		return
	}

	if s.cfg.TurnTimeout > 0 && now.Sub(s.lastActivity) > s.cfg.TurnTimeout {
		s.log.WithField("agent_id", s.session.ActiveAgent().ID).Warn("Turn timed out")
		s.session.ForceEndTurn()
		s.lastActivity = now
		s.publishUpdate(false)
	}
}

// executeCommand выполняет хендлер, пишет логи и рассылает результат
func (s *GameService) executeCommand(cmd domain.InternalCommand) {
	log := s.log.WithFields(logrus.Fields{
		"action": cmd.Action,
		"token":  cmd.Token,
	})

	if s.session == nil {
		s.sendError(cmd.Token, ErrNotReady)
		return
	}
	handler, ok := s.handlers[cmd.Action]
	if !ok {
		log.Warn("No handler for action")
		return
	}

	ctx := handlers.Context{
		Arena: s.session,
		Actor: s.session.Agent(domain.AgentID(cmd.Token)),
	}

	result, err := handler(ctx, cmd.Payload)
	if err != nil {
		log.WithError(err).Debug("Command rejected")
		s.sendError(cmd.Token, err)
		return
	}

	if ctx.Actor != nil && ctx.Actor == s.session.ActiveAgent() {
		s.lastActivity = time.Now()
	}
	if result.Msg != "" {
		msgType := result.MsgType
		if msgType == "" {
			msgType = "INFO"
		}
		s.session.AddLog(result.Msg, msgType)
	}

	if result.Reply {
		s.Hub.SendTo(cmd.Token, *s.session.BuildStateFor(cmd.Token, true, nil))
		return
	}
	s.publishUpdate(result.GridChanged)
}

// publishUpdate рассылает снимок всем подписчикам и очищает журнал.
func (s *GameService) publishUpdate(withGrid bool) {
	logs := s.session.DrainLogs()
	for _, token := range s.Hub.Tokens() {
		s.Hub.SendTo(token, *s.session.BuildStateFor(token, withGrid, logs))
	}
}

func (s *GameService) sendError(token string, err error) {
	resp := api.ServerResponse{Type: api.TypeError, Error: err.Error()}
	if s.session != nil {
		resp.Tick = s.session.TurnNumber()
		if active := s.session.ActiveAgent(); active != nil {
			resp.ActiveAgentID = string(active.ID)
		}
	}
	s.Hub.SendTo(token, resp)
}

// --- DEBUG ---

// DebugAgents возвращает всех агентов.
func (s *GameService) DebugAgents() ([]api.AgentView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, ErrNotReady
	}
	return s.session.agentViews(), nil
}

// DebugQueue возвращает очередь ходов.
func (s *GameService) DebugQueue() ([]QueueEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, ErrNotReady
	}
	return s.session.Queue(), nil
}

// DebugRange считает досягаемость агента, не трогая состояние сессии.
func (s *GameService) DebugRange(id string) (*api.RangeView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, ErrNotReady
	}
	agent := s.session.Agent(domain.AgentID(id))
	if agent == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAgent, id)
	}
	return s.session.PreviewRange(agent), nil
}
