package app

import (
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/atlaspedia/atlaspedia-backend/internal/http"
	httpH "github.com/atlaspedia/atlaspedia-backend/internal/http/handlers"
	httpMW "github.com/atlaspedia/atlaspedia-backend/internal/http/middleware"
	"github.com/atlaspedia/atlaspedia-backend/internal/pkg/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Tag         *httpH.TagHandler
	Tree        *httpH.TreeHandler
	Relation    *httpH.RelationHandler
	Recognition *httpH.RecognitionHandler
	Admin       *httpH.AdminHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(db),
		Tag:         httpH.NewTagHandler(services.Hierarchy, services.Query, services.Classifier),
		Tree:        httpH.NewTreeHandler(services.Query),
		Relation:    httpH.NewRelationHandler(services.Relations),
		Recognition: httpH.NewRecognitionHandler(services.Recognition),
		Admin:       httpH.NewAdminHandler(services.Seeder),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:            log,
		AuthMiddleware: middleware.Auth,
		CORSOrigins:    cfg.CORSOrigins,
		Tracing:        os.Getenv("OTEL_ENABLED") != "",

		TagHandler:         handlers.Tag,
		TreeHandler:        handlers.Tree,
		RelationHandler:    handlers.Relation,
		RecognitionHandler: handlers.Recognition,
		AdminHandler:       handlers.Admin,
		HealthHandler:      handlers.Health,
	})
}
