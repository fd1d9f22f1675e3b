package main

import (
	"context"
	"flag"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/danmuck/onboardctl/internal/config"
	"github.com/danmuck/onboardctl/internal/observability"
	"github.com/danmuck/onboardctl/internal/reconcile"
	"github.com/danmuck/onboardctl/internal/schema"
)

func main() {
	configPath := flag.String("config", "", "optional TOML config path; env vars alone are enough")
	flag.Parse()

	observability.InitLogger("onboardctl")

	// A .env next to the binary is a convenience for local runs; absence is
	// not an error.
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	log.Info().Str("database", cfg.Database).Msg("loaded config")

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), cfg.ConnectTimeout.Std())
	defer cancelConnect()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to store")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()
	if err := client.Ping(connectCtx, nil); err != nil {
		log.Fatal().Err(err).Msg("store unreachable")
	}

	runCtx, cancelRun := context.WithTimeout(context.Background(), cfg.RunTimeout.Std())
	defer cancelRun()
	store := reconcile.NewMongoStore(client.Database(cfg.Database))
	if err := reconcile.Run(runCtx, store, schema.DefaultPlan()); err != nil {
		log.Fatal().Err(err).Msg("reconciliation failed")
	}
	log.Info().Str("database", cfg.Database).Msg("reconciliation complete")
}
