package main

import (
	"log"

	"github.com/bellapacxx/academy-backend/config"
	"github.com/bellapacxx/academy-backend/utils/logger"
)

func main() {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	zl, err := logger.Setup(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	defer logger.Sync()

	if _, err := config.SetupDatabase(cfg, zl); err != nil { // connects + migrates
		log.Fatalf("[FATAL] %v", err)
	}
	logger.Info("✅ Database migration completed successfully")
}
