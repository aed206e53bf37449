package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tactics-server/internal/engine"
	"tactics-server/internal/server"
	"tactics-server/internal/version"
	"tactics-server/pkg/logger"
)

func init() {
	logger.Init()
}

func main() {
	// 1. Парсинг конфигурации
	var seed int64
	var configPath string
	var mapName string
	flag.Int64Var(&seed, "seed", 0, "Map seed (0 keeps the config value)")
	flag.StringVar(&configPath, "config", "", "Path to YAML config")
	flag.StringVar(&mapName, "map", "", "Map name mixed into the seed")
	flag.Parse()

	cfg := engine.NewConfig()
	if configPath != "" {
		loaded, err := engine.LoadConfig(configPath)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to load config")
		}
		cfg = loaded
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if mapName != "" {
		cfg.Grid.Name = mapName
	}
	if port := os.Getenv("TACTICS_PORT"); port != "" {
		cfg.Port = port
	}
	if err := cfg.Validate(); err != nil {
		logger.Log.WithError(err).Fatal("Invalid config")
	}

	logger.Configure(cfg.LogLevel, cfg.LogFormat)
	logger.Log.Info("Starting tactics server...")
	logger.Log.Info(version.String())
	logger.Log.Infof("Using map seed: %d (%q)", cfg.MapSeed(), cfg.Grid.Name)

	// 2. Сессия
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gameService := engine.NewService(cfg)
	if err := gameService.Bootstrap(ctx); err != nil {
		logger.Log.WithError(err).Fatal("Session bootstrap failed")
	}
	go gameService.Run(ctx)

	// Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 3. Запуск сервера
	srv := server.New(gameService, cfg.Port)
	go func() {
		if err := srv.Run(); err != nil {
			logger.Log.WithError(err).Fatal("Server start error")
		}
	}()

	<-stop
	logger.Log.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Warn("HTTP shutdown")
	}
	cancel()

	logger.Log.Info("Done.")
}
