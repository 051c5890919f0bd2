package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"poster-backend/internal/diagnosis"
	"poster-backend/internal/llm"
	"poster-backend/internal/llm/gemini"
	openai "poster-backend/internal/llm/openai"
	"poster-backend/internal/services/health"
	"poster-backend/internal/session"
	"poster-backend/internal/shared/config"
	"poster-backend/internal/shared/server"
	"poster-backend/internal/shared/server/middleware"
	localstore "poster-backend/internal/shared/storage/object/local"
	s3store "poster-backend/internal/shared/storage/object/s3"
	"poster-backend/internal/shared/telemetry"
)

const redisPingTimeout = 3 * time.Second

// App holds shared dependencies.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	Model          llm.Model
	Diagnosis      *diagnosis.Client
	SessionStore   session.Store
	SessionService *session.Service
	SessionHandler *session.Handler
	Health         *health.Service

	closers []func() error
}

// Build prepares every dependency and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	client, err := BuildDiagnosis(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		Model:     client.Model,
		Diagnosis: client,
	}

	store, closer, err := buildSessionStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}

	app.Health = health.NewService()
	if rs, ok := store.(*session.RedisStore); ok {
		app.Health.Register("session_store", rs.Ping)
	}
	app.Health.Register("llm", func(context.Context) error {
		if _, ok := app.Model.(llm.PlaceholderModel); ok {
			return llm.ErrNotConfigured
		}
		return nil
	})

	app.SessionStore = store
	app.SessionService = session.NewService(store, client)
	app.SessionHandler = session.NewHandler(app.SessionService)
	app.Router = server.NewRouter(server.RouterDeps{
		Config:         cfg,
		SessionHandler: app.SessionHandler,
		RateLimiter:    middleware.NewRateLimiter(nil),
		Health:         app.Health,
	})
	return app, nil
}

// Close releases external connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildDiagnosis wires the image fetcher and model into a diagnosis client.
func BuildDiagnosis(ctx context.Context, cfg config.Config) (*diagnosis.Client, error) {
	model, err := BuildModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	fetcher, err := buildFetcher(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := diagnosis.NewClient(fetcher, model)
	client.Temperature = cfg.LLMTemperature
	client.FetchTimeout = cfg.ImageFetchTimeout
	client.ModelTimeout = cfg.LLMTimeout
	return client, nil
}

// BuildModel selects the inference provider. Outside production a missing key
// falls back to the placeholder model, which fails every diagnosis.
func BuildModel(ctx context.Context, cfg config.Config) (llm.Model, error) {
	var (
		model llm.Model
		err   error
	)
	switch cfg.LLMProvider {
	case "openai":
		model, err = openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, "")
	case "gemini":
		model, err = gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	default:
		return llm.PlaceholderModel{}, nil
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.llm_unavailable", map[string]any{
				"provider": cfg.LLMProvider,
				"error":    err,
			})
			return llm.PlaceholderModel{}, nil
		}
		return nil, fmt.Errorf("init %s model: %w", cfg.LLMProvider, err)
	}
	return model, nil
}

func buildFetcher(ctx context.Context, cfg config.Config) (*diagnosis.ImageFetcher, error) {
	fetcher := &diagnosis.ImageFetcher{
		HTTP:     diagnosis.NewImageHTTPClient(cfg.ImageFetchTimeout),
		MaxBytes: cfg.ImageMaxBytes,
	}
	if dir := strings.TrimSpace(cfg.LocalImageDir); dir != "" {
		fetcher.Local = localstore.New(dir)
	}
	if region := strings.TrimSpace(cfg.AWSRegion); region != "" {
		store, err := s3store.New(ctx, region, "")
		if err != nil {
			return nil, fmt.Errorf("init s3 image source: %w", err)
		}
		fetcher.S3 = store
	}
	return fetcher, nil
}

func buildSessionStore(ctx context.Context, cfg config.Config) (session.Store, func() error, error) {
	if cfg.SessionStore != "redis" {
		return session.NewMemoryStore(cfg.SessionTTL, nil), nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.redis_unavailable", map[string]any{"error": err})
			return session.NewMemoryStore(cfg.SessionTTL, nil), nil, nil
		}
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	store := session.NewRedisStore(redis.NewClient(opts), cfg.SessionTTL)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		_ = store.Close()
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.redis_unavailable", map[string]any{"error": err})
			return session.NewMemoryStore(cfg.SessionTTL, nil), nil, nil
		}
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	return store, store.Close, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
