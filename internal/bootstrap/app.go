package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"assignment-helper/internal/ai"
	"assignment-helper/internal/app"
	"assignment-helper/internal/cache"
	"assignment-helper/internal/config"
	"assignment-helper/internal/metrics"
	"assignment-helper/internal/notify"
	postgresClient "assignment-helper/internal/platform/postgres"
	rabbitmqClient "assignment-helper/internal/platform/rabbitmq"
	redisClient "assignment-helper/internal/platform/redis"
	"assignment-helper/internal/repository"
	"assignment-helper/internal/storage"
	"assignment-helper/internal/worker"
)

type Services struct {
	Auth      *app.AuthService
	Retrieval *app.RetrievalService
	Backfill  *app.BackfillService
	Analyzer  *app.ContentAnalyzer
	Ingestion *app.IngestionService
	Analysis  *app.AnalysisService
	Upload    *app.UploadService
}

type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	DB      *gorm.DB
	// Redis and MQConn are nil when the feature is disabled.
	Redis        *redis.Client
	MQConn       *amqp.Connection
	Notifier     notify.Multi
	ResultWorker *worker.AnalysisResultWorker
	Services     Services

	StartedAt time.Time
}

// Deps are the connections Assemble builds the application on.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection
}

// New connects to every configured backend and assembles the application.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	deps, err := Connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := postgresClient.Migrate(ctx, deps.DB, cfg.Postgres.EnableExtension); err != nil {
		closeDeps(deps)
		return nil, err
	}

	application, err := Assemble(ctx, cfg, logger, deps)
	if err != nil {
		closeDeps(deps)
		return nil, err
	}
	return application, nil
}

// Connect opens postgres and, when enabled, redis and rabbitmq.
func Connect(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Deps, error) {
	var deps Deps

	db, err := postgresClient.New(ctx, cfg.Postgres)
	if err != nil {
		return deps, err
	}
	deps.DB = db

	if cfg.Redis.Enabled {
		redisCli, err := redisClient.New(ctx, cfg.Redis)
		if err != nil {
			closeDeps(deps)
			return Deps{}, err
		}
		deps.Redis = redisCli
	}

	if cfg.RabbitMQ.Enabled {
		mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			closeDeps(deps)
			return Deps{}, err
		}
		deps.MQConn = mqConn
	}

	logger.Info("backends connected",
		zap.Bool("redis", deps.Redis != nil),
		zap.Bool("rabbitmq", deps.MQConn != nil),
	)
	return deps, nil
}

// Assemble wires services on top of already-open connections.
func Assemble(ctx context.Context, cfg *config.Config, logger *zap.Logger, deps Deps) (*App, error) {
	m := metrics.New()

	files, err := storage.NewLocalStorage(cfg.Upload.Dir)
	if err != nil {
		return nil, err
	}

	studentRepo := repository.NewStudentRepository(deps.DB)
	assignmentRepo := repository.NewAssignmentRepository(deps.DB)
	resultRepo := repository.NewAnalysisResultRepository(deps.DB)
	sourceRepo := repository.NewAcademicSourceRepository(deps.DB)

	llmClient := ai.NewOpenAICompatibleClient(cfg.LLMTimeout())
	embedder := NewEmbedder(cfg, llmClient)
	var queryEmbedder app.Embedder = embedder
	if deps.Redis != nil {
		embeddingCache := cache.NewEmbeddingCache(deps.Redis, cfg.EmbeddingCacheTTL())
		queryEmbedder = app.NewCachedEmbedder(embedder, embeddingCache, embedder.Model(), logger, m)
	}
	completer := ai.NewCompleter(llmClient, ai.ChatConfig{
		BaseURL:  cfg.LLM.BaseURL,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		JSONMode: true,
	})

	notifier := notify.Multi{
		notify.NewWebhookNotifier(cfg.Webhook.URL, cfg.WebhookTimeout(), logger.Named("webhook"), m),
	}
	if deps.MQConn != nil {
		publisher := rabbitmqClient.NewPublisher(deps.MQConn)
		notifier = append(notifier, notify.NewBrokerNotifier(publisher, cfg.RabbitMQ.AssignmentQueue, logger.Named("events"), m))
	}

	retrieval := app.NewRetrievalService(queryEmbedder, sourceRepo, logger.Named("retrieval"), m)
	ingestion := app.NewIngestionService(deps.DB, assignmentRepo, resultRepo, logger.Named("ingestion"), m)
	services := Services{
		Auth:      app.NewAuthService(studentRepo, cfg.Auth.JWTSecret, cfg.TokenTTL(), logger.Named("auth")),
		Retrieval: retrieval,
		Backfill:  app.NewBackfillService(sourceRepo, embedder, logger.Named("backfill"), m),
		Analyzer:  app.NewContentAnalyzer(completer, retrieval, logger.Named("analyzer")),
		Ingestion: ingestion,
		Analysis:  app.NewAnalysisService(assignmentRepo, resultRepo),
		Upload:    app.NewUploadService(deps.DB, assignmentRepo, files, notifier, cfg.Upload.MaxFileSize, logger.Named("upload"), m),
	}

	application := &App{
		Config:    cfg,
		Logger:    logger,
		Metrics:   m,
		DB:        deps.DB,
		Redis:     deps.Redis,
		MQConn:    deps.MQConn,
		Notifier:  notifier,
		Services:  services,
		StartedAt: time.Now(),
	}

	if deps.MQConn != nil {
		resultWorker := worker.NewAnalysisResultWorker(deps.MQConn, ingestion, cfg.RabbitMQ.AnalysisResultQueue, logger.Named("worker"))
		if err := resultWorker.Start(ctx); err != nil {
			return nil, fmt.Errorf("start analysis result worker failed: %w", err)
		}
		application.ResultWorker = resultWorker
	}

	return application, nil
}

// NewEmbedder builds the embedding client from the LLM settings.
func NewEmbedder(cfg *config.Config, client *ai.OpenAICompatibleClient) *ai.Embedder {
	return ai.NewEmbedder(client, ai.EmbeddingConfig{
		BaseURL:    cfg.LLM.BaseURL,
		APIKey:     cfg.LLM.APIKey,
		Model:      cfg.LLM.EmbeddingModel,
		Dimensions: cfg.LLM.EmbeddingDimensions,
	})
}

func (a *App) Close() error {
	if a.ResultWorker != nil {
		a.ResultWorker.Close()
	}
	a.Notifier.Wait()
	return closeDeps(Deps{DB: a.DB, Redis: a.Redis, MQConn: a.MQConn})
}

func closeDeps(deps Deps) error {
	var closeErr error
	if deps.Redis != nil {
		if err := deps.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if deps.MQConn != nil && !deps.MQConn.IsClosed() {
		if err := deps.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if deps.DB != nil {
		sqlDB, err := deps.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
