package engine

import (
	"fmt"
	"time"

	"tactics-server/pkg/api"
	"tactics-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// AddLog добавляет запись в журнал сессии до следующей рассылки
func (s *Session) AddLog(text, logType string) {
	s.logs = append(s.logs, api.LogEntry{
		ID:        fmt.Sprintf("%d_%d", s.turn, time.Now().UnixNano()),
		Text:      text,
		Type:      logType,
		Timestamp: time.Now().UnixMilli(),
	})
	logger.Log.WithFields(logrus.Fields{
		"turn":      s.turn,
		"component": "game_log",
		"log_type":  logType,
	}).Info(text)
}

// DrainLogs отдает накопленные записи и очищает журнал.
func (s *Session) DrainLogs() []api.LogEntry {
	out := s.logs
	s.logs = nil
	return out
}
