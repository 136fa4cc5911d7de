package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/KirkDiggler/blacksheep/internal/common/clock"
	"github.com/KirkDiggler/blacksheep/internal/common/logger"
	"github.com/KirkDiggler/blacksheep/internal/common/roomcode"
	"github.com/KirkDiggler/blacksheep/internal/common/uuid"
	"github.com/KirkDiggler/blacksheep/internal/handlers/web"
	"github.com/KirkDiggler/blacksheep/internal/lifecycle"
	"github.com/KirkDiggler/blacksheep/internal/repositories/history"
	"github.com/KirkDiggler/blacksheep/internal/repositories/message"
	"github.com/KirkDiggler/blacksheep/internal/repositories/room"
	"github.com/KirkDiggler/blacksheep/internal/repositories/session"
	"github.com/KirkDiggler/blacksheep/internal/services/game"
	"github.com/KirkDiggler/blacksheep/internal/services/messaging"
	"github.com/KirkDiggler/blacksheep/internal/words"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 5 * time.Second

func serve(ctx context.Context, cfg *Config) error {
	level := cfg.logLevel
	if cfg.verbose {
		level = "debug"
	}
	log := logger.New(&logger.Config{
		Level:  level,
		Pretty: cfg.pretty,
	})

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.redisAddr,
		Password: cfg.redisPassword,
		DB:       cfg.redisDB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis at %s: %w", cfg.redisAddr, err)
	}
	log.Info().Str("addr", cfg.redisAddr).Msg("connected to redis")

	roomRepo, err := room.NewRedis(&room.Config{
		RedisClient: redisClient,
		TTL:         cfg.roomTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to create room repository: %w", err)
	}

	messageRepo, err := message.NewRedis(&message.Config{
		RedisClient: redisClient,
		TTL:         cfg.roomTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to create message repository: %w", err)
	}

	sessionRepo, err := session.NewRedis(&session.Config{
		RedisClient: redisClient,
		TTL:         cfg.sessionTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to create session repository: %w", err)
	}

	historyRepo, err := history.NewSQLite(&history.Config{
		Path: cfg.historyDB,
	})
	if err != nil {
		return fmt.Errorf("failed to open game history: %w", err)
	}
	defer func() {
		if err := historyRepo.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close game history")
		}
	}()

	gameClock := clock.New()

	machine, err := lifecycle.New(&lifecycle.Config{
		Assigner:   words.New(&words.Config{}),
		Clock:      gameClock,
		MinPlayers: cfg.minPlayers,
	})
	if err != nil {
		return fmt.Errorf("failed to create room machine: %w", err)
	}

	messagingService, err := messaging.NewService(&messaging.ServiceConfig{})
	if err != nil {
		return fmt.Errorf("failed to create messaging service: %w", err)
	}

	gameService, err := game.NewService(&game.Config{
		RoomRepo:      roomRepo,
		MessageRepo:   messageRepo,
		SessionRepo:   sessionRepo,
		HistoryRepo:   historyRepo,
		Machine:       machine,
		Messaging:     messagingService,
		Clock:         gameClock,
		UUIDGenerator: uuid.New(),
		CodeGenerator: roomcode.New(),
		Logger:        log,
		ResultsDelay:  cfg.resultsDelay,
	})
	if err != nil {
		return fmt.Errorf("failed to create game service: %w", err)
	}

	recovered, err := gameService.RecoverPending(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to recover pending rounds")
	} else if len(recovered.Resolved) > 0 {
		log.Info().Strs("rooms", recovered.Resolved).Msg("resolved rounds left pending by restart")
	}

	handler, err := web.New(&web.Config{
		GameService:   gameService,
		Logger:        log,
		Prefix:        cfg.prefix,
		PublicURL:     cfg.publicURL,
		Version:       releaseVersion,
		SecureCookies: cfg.secureCookies,
		MessageRate:   cfg.messageRate,
		MessageBurst:  cfg.messageBurst,
	})
	if err != nil {
		return fmt.Errorf("failed to create web handler: %w", err)
	}

	// No WriteTimeout: the room feed holds its connection open
	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port)),
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()

		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	log.Info().Str("addr", srv.Addr).Str("version", releaseVersion).Msg("serving")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done

	return nil
}
