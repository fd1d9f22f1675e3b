// Command demouserctl inserts one demo account for local development. It
// assumes onboardctl has already provisioned the database. The demo account
// carries a null password hash; credentials are the backend's business, not
// this tool's.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/danmuck/onboardctl/internal/config"
	"github.com/danmuck/onboardctl/internal/observability"
	"github.com/danmuck/onboardctl/internal/schema"
)

func main() {
	configPath := flag.String("config", "", "optional TOML config path")
	email := flag.String("email", "demo@example.com", "demo account email")
	username := flag.String("username", "demo", "demo account username")
	flag.Parse()

	observability.InitLogger("demouserctl")
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout.Std())
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to store")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	users := client.Database(cfg.Database).Collection(schema.UsersCollection)
	existing, err := users.CountDocuments(ctx, bson.M{"email": *email})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to check for existing demo user")
	}
	if existing > 0 {
		log.Info().Str("email", *email).Msg("demo user already exists, skipped")
		return
	}

	now := time.Now().UTC()
	doc := bson.M{
		"email":        *email,
		"passwordHash": nil,
		"username":     *username,
		"onboarding": bson.M{
			"currentStep":    0,
			"completedSteps": bson.A{},
			"startedAt":      now,
			"completedAt":    nil,
		},
		"profile": bson.M{
			"displayName": "Demo User",
		},
		"createdAt": now,
		"updatedAt": now,
	}
	if _, err := users.InsertOne(ctx, doc); err != nil {
		log.Fatal().Err(err).Msg("failed to insert demo user")
	}
	log.Info().Str("email", *email).Str("username", *username).Msg("demo user created")
}
