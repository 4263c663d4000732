package main

import (
	"context"
	"flag"
	"log"

	"timesheet/internal/config"
	"timesheet/internal/logger"

	sdk "github.com/matrixorigin/moi-go-sdk"
)

func main() {
	configFile := flag.String("config", "etc/config-dev.yaml", "config file")
	withKnowledge := flag.Bool("knowledge", true, "also register NL2SQL knowledge for the tables")
	flag.Parse()

	logger.Init(config.LogConfig{Level: "info", Console: true})

	cfg := config.Load(*configFile)
	client, err := cfg.NewRawClient()
	if err != nil {
		log.Fatal(err)
	}
	if client == nil {
		log.Fatal("moi.api_key is not set")
	}
	ctx := context.Background()
	catalogID := sdk.CatalogID(cfg.MOI.CatalogID)
	if catalogID == 0 {
		catalogID = 1
	}

	dbID, err := initCatalog(ctx, client, catalogID, cfg.Database.Name)
	if err != nil {
		log.Fatal("catalog init failed:", err)
	}

	if *withKnowledge {
		if err := initKnowledge(ctx, client); err != nil {
			log.Fatal("knowledge init failed:", err)
		}
	}

	// Copy the database id and the logged table ids into the moi config section.
	logger.Info("catalog.ready", "database_id", dbID)
}
