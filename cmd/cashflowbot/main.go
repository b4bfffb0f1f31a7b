package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/susu3304/cashflow/internal/api"
	"github.com/susu3304/cashflow/internal/bot"
	"github.com/susu3304/cashflow/internal/config"
	"github.com/susu3304/cashflow/internal/ledger"
	"github.com/susu3304/cashflow/internal/settle"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := cfg.RequireDiscord(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	strategy, err := settle.Lookup(cfg.Strategy)
	if err != nil {
		logger.Fatal("invalid strategy", zap.Error(err))
	}

	// Books live in memory only and are shared by the bot and the API.
	books := ledger.NewService()

	discordBot, err := bot.New(cfg.DiscordToken, books, strategy, logger)
	if err != nil {
		logger.Fatal("failed to create discord bot", zap.Error(err))
	}

	apiServer := api.New(cfg, books, strategy, logger)

	if err := discordBot.Start(); err != nil {
		logger.Fatal("failed to start discord bot", zap.Error(err))
	}
	defer discordBot.Stop()

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("API server error", zap.Error(err))
		}
	}()

	// Wait for signal to stop
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
}
