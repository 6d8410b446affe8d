package app

import (
	"gorm.io/gorm"

	"github.com/atlaspedia/atlaspedia-backend/internal/data/repos/taxonomy"
	"github.com/atlaspedia/atlaspedia-backend/internal/pkg/logger"
)

type Repos struct {
	User        taxonomy.UserRepo
	Tag         taxonomy.TagRepo
	TagHistory  taxonomy.TagHistoryRepo
	TagRelation taxonomy.TagRelationRepo
	EntryTag    taxonomy.EntryTagRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:        taxonomy.NewUserRepo(db, log),
		Tag:         taxonomy.NewTagRepo(db, log),
		TagHistory:  taxonomy.NewTagHistoryRepo(db, log),
		TagRelation: taxonomy.NewTagRelationRepo(db, log),
		EntryTag:    taxonomy.NewEntryTagRepo(db, log),
	}
}
