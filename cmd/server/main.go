package main

import (
	"log/slog"
	"net/http"

	"github.com/VSD-Devs/sandalwood-memories/internal/app"
	"github.com/VSD-Devs/sandalwood-memories/internal/config"
	"github.com/VSD-Devs/sandalwood-memories/internal/logger"
	"github.com/VSD-Devs/sandalwood-memories/internal/routes"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

	app, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		panic(err)
	}
	defer func() {
		closeErr := app.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	if !cfg.HasDatastore() {
		slog.Warn("no datastore configured, quota checks fail open and content routes are disabled")
	}

	handler := routes.SetupRoutes(app)
	slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv, "url", "http://localhost:"+cfg.Port)

	err = http.ListenAndServe(":"+cfg.Port, handler)
	if err != nil {
		slog.Error("server failed", "error", err)
		panic(err)
	}
}
