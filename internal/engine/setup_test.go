package engine

import (
	"os"
	"testing"

	"tactics-server/pkg/logger"
)

func TestMain(m *testing.M) {
	// Глобальный логгер до запуска тестов; журнал сессии пишет на Info
	logger.Init()
	logger.Silence()

	os.Exit(m.Run())
}
