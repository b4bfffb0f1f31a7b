package main

import (
	"log"
	"os"

	"github.com/susu3304/cashflow/internal/config"
	"github.com/susu3304/cashflow/internal/console"
	"github.com/susu3304/cashflow/internal/settle"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	strategy, err := settle.Lookup(cfg.Strategy)
	if err != nil {
		logger.Fatal("invalid strategy", zap.Error(err))
	}

	if err := console.New(os.Stdin, os.Stdout, strategy, logger).Run(); err != nil {
		logger.Fatal("console session failed", zap.Error(err))
	}
}
