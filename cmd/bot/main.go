package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/masroufy/masroufy/internal/bot"
	"github.com/masroufy/masroufy/internal/classifier"
	"github.com/masroufy/masroufy/internal/metrics"
	"github.com/masroufy/masroufy/internal/orchestrator"
	"github.com/masroufy/masroufy/internal/repository"
	"github.com/masroufy/masroufy/internal/storage"
	"github.com/masroufy/masroufy/pkg/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Best-effort: a local .env is a dev convenience, not a requirement.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", configPath))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		confirmations storage.ConfirmationStore
		conversations storage.ConversationStore
		finance       repository.Finance
	)

	switch cfg.Store.Backend {
	case "redis":
		logger.Info("Using Redis state stores", zap.String("address", cfg.Redis.Address))
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer client.Close()
		confirmations = storage.NewRedisConfirmationStore(client)
		conversations = storage.NewRedisConversationStore(client)
	case "postgres":
		logger.Info("Using PostgreSQL state stores")
		db, err := storage.OpenPostgres(storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer db.Close()
		confirmations = storage.NewPostgresConfirmationStore(db)
		conversations = storage.NewPostgresConversationStore(db)
		finance, err = repository.NewPostgresFinance(db)
		if err != nil {
			logger.Fatal("Failed to initialize finance repository", zap.Error(err))
		}
	default:
		logger.Info("Using in-memory state stores")
		confirmations = storage.NewMemoryConfirmationStore()
		conversations = storage.NewMemoryConversationStore()
	}

	if finance == nil {
		logger.Warn("No PostgreSQL backend configured, accounts live in memory only")
		finance = repository.NewMemoryFinance()
	}

	fallback := classifier.NewFallbackClassifier(nil, logger)
	var clf classifier.Classifier
	if cfg.NLU.Backend == "openai" {
		logger.Info("Using OpenAI classifier backend", zap.String("model", cfg.OpenAI.Model))
		clf = classifier.NewOpenAIClassifier(cfg.OpenAI.APIKey, cfg.OpenAI.Model,
			cfg.OpenAI.MaxTokens, cfg.OpenAI.Temperature, cfg.NLU.Timeout, fallback, logger)
	} else {
		logger.Info("Using HTTP NLU classifier backend", zap.String("url", cfg.NLU.URL))
		clf = classifier.NewHTTPClassifier(cfg.NLU.URL, cfg.NLU.Timeout, fallback, logger)
	}

	b, err := bot.New(cfg.Telegram.Token, logger)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	orch := orchestrator.New(clf, confirmations, conversations, finance, b, orchestrator.Config{
		ConfidenceThreshold: cfg.Classifier.ConfidenceThreshold,
		ConfirmationTTL:     cfg.Confirmation.TTL,
		ConversationTTL:     cfg.Conversation.TTL,
		HistoryDepth:        cfg.Classifier.HistoryDepth,
		HistoryTTL:          cfg.Classifier.HistoryTTL,
	}, logger)

	sweeper := storage.NewSweeper(confirmations, conversations, cfg.Store.SweepInterval, logger)
	go sweeper.Run(ctx)

	if cfg.Metrics.Addr != "" {
		go func() {
			logger.Info("Serving metrics", zap.String("addr", cfg.Metrics.Addr))
			if err := metrics.Serve(cfg.Metrics.Addr); err != nil {
				logger.Error("Metrics listener failed", zap.Error(err))
			}
		}()
	}

	if err := b.Start(ctx, orch); err != nil {
		logger.Fatal("Bot error", zap.Error(err))
	}
}
