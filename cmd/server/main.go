package main

import (
	"flag"

	"project-management-api/internal/config"
	"project-management-api/internal/database"
	"project-management-api/internal/routes"

	log "github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	logger := log.New()
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	if err := database.InitDB(cfg.DatabasePath); err != nil {
		logger.WithError(err).Fatal("failed to initialize database")
	}

	router, err := routes.Setup(cfg, database.GetDB(), logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to set up routes")
	}

	logger.WithField("addr", cfg.ListenAddr).Info("server starting")
	if err := router.Run(cfg.ListenAddr); err != nil {
		logger.WithError(err).Fatal("failed to start server")
	}
}
