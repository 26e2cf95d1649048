package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mcstatusbot/internal/bot"
	"mcstatusbot/internal/common"
	"mcstatusbot/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Msg(fmt.Sprintf("Could not load configuration: %s", err))
	}
	common.SetupLogging(cfg.LogLevel, cfg.LogPretty)

	// Storage for the stats messages
	database, closeDatabase, err := openDatabase(cfg.Registry)
	if err != nil {
		log.Fatal().Msg(fmt.Sprintf("Could not open the registry: %s", err))
	}
	defer closeDatabase()

	// Create bot
	bot, err := bot.NewBot(cfg, database)
	if err != nil {
		log.Fatal().Msg(fmt.Sprintf("Could not create discord bot: %s", err))
	}

	// Run bot until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := bot.Run(ctx); err != nil {
		log.Error().Msg(err.Error())
		return
	}
	log.Info().Msg("Bye")
}

func openDatabase(cfg config.RegistryConfig) (common.Database, func(), error) {
	switch cfg.Backend {
	case config.BACKEND_REDIS:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis at %s: %w", cfg.RedisAddr, err)
		}
		log.Info().Msg(fmt.Sprintf("Stats registry in redis %s under key %s", cfg.RedisAddr, cfg.RedisKey))
		return common.NewRedisDatabase(client, cfg.RedisKey), func() { _ = client.Close() }, nil
	default:
		log.Info().Msg(fmt.Sprintf("Stats registry in file %s", cfg.File))
		return common.NewFileDatabase(cfg.File), func() {}, nil
	}
}
