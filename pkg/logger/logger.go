package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log является глобальным экземпляром логгера для всего приложения.
// До вызова Init пишет в stderr с уровнем по умолчанию, поэтому пакеты ядра
// можно использовать в тестах без явной инициализации.
var Log = logrus.New()

// Init инициализирует глобальный логгер из переменных окружения.
// Вызывается один раз при старте приложения в main.go.
func Init() {
	// LOG_LEVEL: по умолчанию "info". Для отладки поиска можно выставить "debug".
	logLevel, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		logLevel = "info"
	}

	// LOG_FORMAT: "json" - для продакшена, "text" - для разработки.
	Configure(logLevel, os.Getenv("LOG_FORMAT"))
	Log.SetOutput(os.Stdout)
}

// Configure применяет уровень и формат (обычно из конфига сервера).
// Неизвестный уровень откатывается на info.
func Configure(level, format string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if strings.ToLower(format) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}
}

// Silence глушит вывод (для тестов с большим количеством поисков).
func Silence() {
	Log.SetOutput(io.Discard)
}

// For возвращает запись логгера с полем component.
func For(component string) *logrus.Entry {
	return Log.WithField("component", component)
}
