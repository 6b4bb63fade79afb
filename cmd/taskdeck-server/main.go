package main

import (
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/tgienger/taskdeck/internal/config"
	"github.com/tgienger/taskdeck/internal/db"
	"github.com/tgienger/taskdeck/internal/logging"
	"github.com/tgienger/taskdeck/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.EnsureDataDir(); err != nil {
		log.Fatalf("data dir: %v", err)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)

	store, err := db.Open(cfg.DBPath())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer store.Close()

	auth := server.NewAuth(cfg.JWTSecret, cfg.TokenTTL)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	server.Register(e, store, auth, logger)

	logger.WithField("addr", cfg.ListenAddr).Info("taskdeck-server listening")
	e.Logger.Fatal(e.Start(cfg.ListenAddr))
}
