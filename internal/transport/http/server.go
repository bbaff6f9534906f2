package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"assignment-helper/internal/bootstrap"
	"assignment-helper/internal/pkg/logger"
	"assignment-helper/internal/transport/http/handler"
	"assignment-helper/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), logger.GinMiddleware(app.Logger), middleware.Metrics(app.Metrics))
	router.Use(cors.New(corsConfig(app.Config.CORS.AllowedOrigins)))

	services := app.Services
	healthHandler := handler.NewHealthHandler(app)
	authHandler := handler.NewAuthHandler(services.Auth)
	uploadHandler := handler.NewUploadHandler(services.Upload, app.Config.Upload.MaxFileSize)
	analysisHandler := handler.NewAnalysisHandler(services.Analysis)
	sourceHandler := handler.NewSourceHandler(services.Retrieval)
	internalHandler := handler.NewInternalHandler(services.Ingestion, services.Analyzer)

	router.GET("/", healthHandler.Root)
	router.GET("/health", healthHandler.Health)
	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(app.Metrics.Handler()))

	requireAuth := middleware.AuthJWT(services.Auth)

	authGroup := router.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", requireAuth, authHandler.Me)

	student := router.Group("/")
	student.Use(requireAuth)
	student.POST("/upload", uploadHandler.Upload)
	student.GET("/analysis/:id", analysisHandler.GetAnalysis)
	student.GET("/assignments", analysisHandler.ListAssignments)
	student.GET("/assignments/:id/analysis", analysisHandler.LatestForAssignment)
	student.GET("/sources", sourceHandler.Search)

	internal := router.Group("/internal")
	internal.POST("/store-analysis", internalHandler.StoreAnalysis)
	internal.POST("/analyze-content", internalHandler.AnalyzeContent)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
