package main

import (
	"flag"
	"log/slog"
	"os"

	"timesheet/internal/config"
	"timesheet/internal/handler"
	"timesheet/internal/logger"
	"timesheet/internal/middleware"
	"timesheet/internal/model"
	"timesheet/internal/service"
)

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	flag.Parse()

	cfg := config.Load(*configFile)
	logger.Init(cfg.Log)
	middleware.JWTSecret = []byte(cfg.Auth.JWTSecret)
	if cfg.Auth.TokenTTLHours > 0 {
		middleware.TokenTTL = cfg.TokenTTL()
	}

	db, err := cfg.OpenGormDB()
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	if err := model.Migrate(db); err != nil {
		slog.Error("db migrate failed", "err", err)
		os.Exit(1)
	}

	raw, err := cfg.NewRawClient()
	if err != nil {
		slog.Warn("sdk client init failed", "err", err)
	}
	catalogSync := service.NewCatalogSync(raw, cfg.MOI)
	if catalogSync.Ready() {
		slog.Info("catalog sync enabled", "database_id", cfg.MOI.DatabaseID)
	}

	submissions := service.NewSubmissionService(db)
	importer := service.NewImporter(db, cfg.Import)
	if catalogSync.Ready() {
		submissions.SetSyncer(catalogSync)
		importer.SetSyncer(catalogSync)
	}

	origins := cfg.Server.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r := handler.NewRouter(handler.Services{
		Auth:       service.NewAuthService(db),
		Catalog:    service.NewCatalogService(db),
		Submission: submissions,
		Importer:   importer,
	}, origins)

	slog.Info("server starting", "addr", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		slog.Error("server failed", "err", err)
	}
}
