package db

import (
	"gorm.io/gorm"

	"github.com/atlaspedia/atlaspedia-backend/internal/types"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Identity (provenance + capabilities only)
		&types.User{},

		// Taxonomy core
		&types.Tag{},
		&types.TagHistory{},
		&types.TagRelation{},

		// Content tagging references (merge rewrite / delete conflict check)
		&types.EntryTag{},
	)
}
