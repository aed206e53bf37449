package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"tactics-server/internal/agent"
	"tactics-server/pkg/logger"
)

func init() {
	logger.Init()
}

func main() {
	var url string
	flag.StringVar(&url, "url", "ws://localhost:8080/ws", "Server WebSocket URL")
	flag.Parse()

	tokens := flag.Args()
	if len(tokens) == 0 {
		logger.Log.Fatal("usage: bot [-url ws://host/ws] <agent_id>...")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var wg sync.WaitGroup
	for _, token := range tokens {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			if err := agent.NewBot(url, token).Run(ctx); err != nil {
				logger.Log.WithError(err).WithField("agent_id", token).Error("Bot failed")
			}
		}(token)
	}
	wg.Wait()
}
