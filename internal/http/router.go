package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/atlaspedia/atlaspedia-backend/internal/http/handlers"
	httpMW "github.com/atlaspedia/atlaspedia-backend/internal/http/middleware"
	"github.com/atlaspedia/atlaspedia-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware
	CORSOrigins    []string
	Tracing        bool

	TagHandler         *httpH.TagHandler
	TreeHandler        *httpH.TreeHandler
	RelationHandler    *httpH.RelationHandler
	RecognitionHandler *httpH.RecognitionHandler
	AdminHandler       *httpH.AdminHandler
	HealthHandler      *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		r.Use(otelgin.Middleware("atlaspedia-backend"))
	}
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Read side (public)
		if cfg.TreeHandler != nil {
			api.GET("/tags/tree", cfg.TreeHandler.GetTree)
			api.GET("/tags/search", cfg.TreeHandler.Search)
			api.GET("/tags/suggestions", cfg.TreeHandler.Suggestions)
			api.GET("/tags/popular", cfg.TreeHandler.Popular)
			api.GET("/tags/categories", cfg.TreeHandler.Categories)
			api.POST("/tags/recommended", cfg.TreeHandler.Recommended)
		}
		if cfg.TagHandler != nil {
			api.GET("/tags/similar", cfg.TagHandler.Similar)
			api.GET("/tags/:id", cfg.TagHandler.Get)
			api.GET("/tags/:id/history", cfg.TagHandler.History)
		}
		if cfg.RelationHandler != nil {
			api.GET("/tags/:id/relations", cfg.RelationHandler.ListForTag)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Mutations
		if cfg.TagHandler != nil {
			protected.POST("/tags", cfg.TagHandler.Create)
			protected.PATCH("/tags/:id", cfg.TagHandler.Update)
			protected.DELETE("/tags/:id", cfg.TagHandler.Delete)
			protected.POST("/tags/:id/move", cfg.TagHandler.Move)
			protected.POST("/tags/:id/deprecate", cfg.TagHandler.Deprecate)
			protected.POST("/tags/:id/restore", cfg.TagHandler.Restore)
			protected.POST("/tags/merge", cfg.TagHandler.Merge)
			protected.POST("/tags/validate", cfg.TagHandler.Validate)
			protected.POST("/tags/classify", cfg.TagHandler.Classify)
		}
		if cfg.RecognitionHandler != nil {
			protected.POST("/tags/recognize", cfg.RecognitionHandler.Recognize)
		}
		if cfg.RelationHandler != nil {
			protected.POST("/tag-relations", cfg.RelationHandler.Create)
		}
		if cfg.AdminHandler != nil {
			protected.POST("/admin/seed-taxonomy", cfg.AdminHandler.SeedTaxonomy)
		}
	}

	return r
}
