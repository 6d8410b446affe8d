package app

import (
	"gorm.io/gorm"

	"github.com/atlaspedia/atlaspedia-backend/internal/pkg/logger"
	"github.com/atlaspedia/atlaspedia-backend/internal/services"
)

type Services struct {
	Permissions services.PermissionService
	Resolver    services.PathResolver
	History     services.HistoryService
	Classifier  services.ClassifierService
	Hierarchy   services.HierarchyService
	Query       services.QueryService
	Relations   services.RelationService
	Seeder      services.SeederService
	Recognition services.RecognitionService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	kb := services.DefaultKnowledgeBase()
	if cfg.KnowledgePath != "" {
		loaded, err := services.LoadKnowledgeBase(cfg.KnowledgePath)
		if err != nil {
			log.Warn("Knowledge base file unreadable, using built-in tables", "path", cfg.KnowledgePath, "error", err)
		} else {
			kb = loaded
		}
	}

	perms := services.NewPermissionService(db, log, repos.User)
	resolver := services.NewPathResolver(db, log, repos.Tag)
	history := services.NewHistoryService(db, log, repos.TagHistory)
	classifier := services.NewClassifierService(db, log, repos.Tag, kb)

	var cacheInvalidator services.CacheInvalidator
	if clients.Cache != nil {
		cacheInvalidator = clients.Cache
	}

	hierarchy := services.NewHierarchyService(
		db, log,
		repos.Tag, repos.EntryTag, repos.TagRelation,
		resolver, history, perms, classifier,
		clients.TagGraph, cacheInvalidator,
	)
	query := services.NewQueryService(db, log, repos.Tag, repos.EntryTag, repos.TagRelation, history, clients.Cache)
	relations := services.NewRelationService(db, log, repos.Tag, repos.TagRelation, perms)
	seeder := services.NewSeederService(db, log, repos.Tag, resolver, clients.TagGraph)
	recognition := services.NewRecognitionService(log, clients.Recognizer)

	return Services{
		Permissions: perms,
		Resolver:    resolver,
		History:     history,
		Classifier:  classifier,
		Hierarchy:   hierarchy,
		Query:       query,
		Relations:   relations,
		Seeder:      seeder,
		Recognition: recognition,
	}, nil
}
