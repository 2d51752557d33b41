package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	echoapi "go.idgate.dev/idgate/api/echo"
	"go.idgate.dev/idgate/config"
	"go.idgate.dev/idgate/domain"
	"go.idgate.dev/idgate/internal/auth"
	"go.idgate.dev/idgate/log"
	"go.idgate.dev/idgate/memory"
	"go.idgate.dev/idgate/mongodb"
	"go.idgate.dev/idgate/services"
	"go.idgate.dev/idgate/session"
	sessionredis "go.idgate.dev/idgate/session/redis"
)

var appLogger log.Logger

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger := zerolog.New(os.Stdout).With().Timestamp().Logger()
		bootLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logLevel, parseErr := zerolog.ParseLevel(cfg.LogLevel)
	if parseErr != nil {
		logLevel = zerolog.InfoLevel
	}
	appLogger = log.NewZerologAdapter(logLevel, cfg.LogPretty)

	ctx := context.Background()
	appLogger.Info(ctx, "Starting idgate server", map[string]interface{}{
		"http_port":       cfg.HTTPPort,
		"storage_backend": cfg.StorageBackend,
		"session_backend": cfg.SessionBackend,
		"login_path":      cfg.LoginPath,
	})

	clientRepo, userRepo, err := buildRepositories(ctx, cfg)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize storage", err)
	}

	sessionStore, err := buildSessionStore(ctx, cfg)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize session store", err)
	}

	hasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	userService := services.NewUserService(userRepo, hasher)
	clientService := services.NewClientService(clientRepo, hasher)

	sessionTTL := time.Duration(cfg.SessionTTLMin) * time.Minute
	sessions := session.NewManager(sessionStore, sessionTTL)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	api := echoapi.NewAPI(userService, clientService, cfg.LoginPath)
	api.RegisterRoutes(e, sessions)

	go func() {
		if serveErr := e.Start(":" + cfg.HTTPPort); serveErr != nil {
			appLogger.Info(ctx, "HTTP server stopped", map[string]interface{}{
				"reason": serveErr.Error(),
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info(ctx, "Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "HTTP server shutdown failed", err)
	}
	if cfg.StorageBackend == config.StorageMongo {
		if err := mongodb.CloseMongoDB(shutdownCtx); err != nil {
			appLogger.Error(shutdownCtx, "MongoDB disconnect failed", err)
		}
	}
}

func buildRepositories(ctx context.Context, cfg *config.ServerConfig) (domain.ClientRepository, domain.UserRepository, error) {
	switch cfg.StorageBackend {
	case config.StorageMongo:
		if err := mongodb.InitMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName); err != nil {
			return nil, nil, err
		}
		db, err := mongodb.GetDatabase()
		if err != nil {
			return nil, nil, err
		}
		clientRepo, err := mongodb.NewClientRepository(ctx, db)
		if err != nil {
			return nil, nil, err
		}
		userRepo, err := mongodb.NewUserRepository(ctx, db)
		if err != nil {
			return nil, nil, err
		}
		return clientRepo, userRepo, nil
	case config.StorageMemory:
		return memory.NewClientRepository(), memory.NewUserRepository(), nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func buildSessionStore(ctx context.Context, cfg *config.ServerConfig) (domain.SessionStore, error) {
	switch cfg.SessionBackend {
	case config.SessionsRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping failed: %w", err)
		}
		return sessionredis.NewStore(client, "idgate"), nil
	case config.SessionsMemory:
		ttl := time.Duration(cfg.SessionTTLMin) * time.Minute
		return session.NewMemoryStore(ttl), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}
