package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"docchat-backend/internal/conversations"
	"docchat-backend/internal/documents"
	"docchat-backend/internal/extract"
	"docchat-backend/internal/llm"
	"docchat-backend/internal/llm/openai"
	"docchat-backend/internal/qa"
	"docchat-backend/internal/shared/auth"
	"docchat-backend/internal/shared/config"
	"docchat-backend/internal/shared/server"
	"docchat-backend/internal/shared/server/middleware"
	"docchat-backend/internal/shared/storage/db"
	"docchat-backend/internal/shared/storage/object"
	localstore "docchat-backend/internal/shared/storage/object/local"
	s3store "docchat-backend/internal/shared/storage/object/s3"
	"docchat-backend/internal/shared/telemetry"
	"docchat-backend/internal/uploads"
)

// App holds shared dependencies and the HTTP router.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	DB        *sql.DB
	Store     object.ObjectStore
	JWTSecret []byte

	DocumentsRepo     documents.DocumentsRepo
	ConversationsRepo conversations.Repo
	LLM               llm.ChatClient

	DocumentsService     *documents.Service
	QAService            *qa.Service
	ConversationsService *conversations.Service

	DocumentsHandler     *documents.Handler
	QAHandler            *qa.Handler
	ConversationsHandler *conversations.Handler
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	cfg = cfg.WithDefaults()
	telemetry.SetLevel(cfg.LogLevel)
	ctx := context.Background()

	secret, err := auth.ResolveSecret(cfg.Env, cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		telemetry.Warn("bootstrap.jwt.dev_secret", map[string]any{"env": cfg.Env})
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		DB:        sqlDB,
		Store:     store,
		JWTSecret: secret,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:              app.Config,
		JWTSecret:           app.JWTSecret,
		DB:                  app.DB,
		DocumentHandler:     app.DocumentsHandler,
		QAHandler:           app.QAHandler,
		ConversationHandler: app.ConversationsHandler,
		RateLimiter:         middleware.NewRateLimiter(nil),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":            cfg.Env,
		"objectStore":    cfg.ObjectStoreType,
		"database":       sqlDB != nil,
		"llmConfigured":  strings.TrimSpace(cfg.LLMAPIKey) != "",
		"maxUploadBytes": cfg.MaxUploadBytes,
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Info("bootstrap.db.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "connect failed", "err": err})
			return nil, nil
		}
		return nil, err
	}

	if isDevLike(cfg.Env) {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.UploadDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) {
	var (
		docRepo  documents.DocumentsRepo
		convRepo conversations.Repo
	)
	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		convRepo = &conversations.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		convRepo = conversations.NewMemoryRepo()
	}

	cfg := app.Config
	docSvc := &documents.Service{
		Store:        app.Store,
		Repo:         docRepo,
		Extractor:    extract.New(cfg.MinPDFTextChars),
		MaxTextChars: cfg.MaxTextChars,
	}
	intake := &uploads.Intake{Store: app.Store, MaxBytes: cfg.MaxUploadBytes}

	llmClient := openai.NewClient(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMTimeout)
	qaSvc := &qa.Service{
		Docs:            docSvc,
		LLM:             llmClient,
		Model:           cfg.LLMModel,
		ChatModel:       cfg.LLMChatModel,
		MaxContextWords: cfg.MaxContextWords,
	}
	convSvc := conversations.NewService(convRepo, docRepo)

	app.DocumentsRepo = docRepo
	app.ConversationsRepo = convRepo
	app.LLM = llmClient
	app.DocumentsService = docSvc
	app.QAService = qaSvc
	app.ConversationsService = convSvc
	app.DocumentsHandler = documents.NewHandler(docSvc, intake)
	app.QAHandler = qa.NewHandler(qaSvc)
	app.ConversationsHandler = conversations.NewHandler(convSvc)
}
