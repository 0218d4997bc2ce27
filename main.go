package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"consultancy-cms/cmd"
	"consultancy-cms/internal/data/entity"
	"consultancy-cms/internal/data/repository"
	"consultancy-cms/internal/usecase"
	"consultancy-cms/internal/wire"
	"consultancy-cms/pkg/database"
	"consultancy-cms/pkg/mailer"
	"consultancy-cms/pkg/storage"
	"consultancy-cms/pkg/token"
	"consultancy-cms/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.Int("admins", len(config.Admin.Emails)),
		zap.Strings("trusted_proxies", config.App.TrustedProxies),
	)
	if len(config.Admin.Emails) == 0 {
		logger.Warn("ADMIN_EMAILS is empty, nobody can sign in")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	if err := repository.Migrate(ctx, db, entity.Kinds, logger); err != nil {
		logger.Fatal("Failed to prepare schema", zap.Error(err))
	}

	// Verification codes move to Redis when it is configured
	var codeStore redis.Cmdable
	if config.Redis.URL != "" {
		rdb, err := connectRedis(ctx, config.Redis.URL)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		codeStore = rdb
		logger.Info("Redis connected, verification codes stored in redis")
	}

	repos := repository.NewRepository(db, codeStore, logger)

	var objects usecase.ObjectStore
	if config.Storage.IsConfigured() {
		client, err := storage.NewClient(ctx, config.Storage)
		if err != nil {
			logger.Fatal("Failed to init object storage", zap.Error(err))
		}
		objects = storage.NewStore(client, config.Storage.Bucket)
		logger.Info("Object storage ready", zap.String("bucket", config.Storage.Bucket))
	} else {
		logger.Warn("Object storage not configured, upload routes will return 503")
	}

	secret := config.Session.Secret
	if secret == "" {
		secret, err = utils.GenerateSecret(32)
		if err != nil {
			logger.Fatal("Failed to generate session secret", zap.Error(err))
		}
		logger.Warn("SESSION_SECRET not set, using a random secret; sessions will not survive a restart")
	}
	signer, err := token.NewSigner(secret)
	if err != nil {
		logger.Fatal("Invalid session secret", zap.Error(err))
	}

	service := usecase.NewService(usecase.Dependencies{
		Repo:   repos,
		Config: config,
		Mailer: mailer.NewDispatcher(config.Email, logger),
		Signer: signer,
		Store:  objects,
		Log:    logger,
	})

	// Wire all dependencies
	app, err := wire.Wiring(service, db, config, logger)
	if err != nil {
		logger.Fatal("Failed to wire routes", zap.Error(err))
	}
	defer app.Close()

	go service.Janitor.Run(ctx)

	// Start server
	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
		return
	}
	logger.Info("Server stopped")
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}
