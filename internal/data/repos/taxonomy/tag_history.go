package taxonomy

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atlaspedia/atlaspedia-backend/internal/pkg/logger"
	"github.com/atlaspedia/atlaspedia-backend/internal/types"
)

type TagHistoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.TagHistory) error
	// ListByTag returns history records most recent first.
	ListByTag(ctx context.Context, tx *gorm.DB, tagID uuid.UUID, limit int) ([]*types.TagHistory, error)
}

type tagHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTagHistoryRepo(db *gorm.DB, baseLog *logger.Logger) TagHistoryRepo {
	return &tagHistoryRepo{db: db, log: baseLog.With("repo", "TagHistoryRepo")}
}

func (r *tagHistoryRepo) Create(ctx context.Context, tx *gorm.DB, row *types.TagHistory) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.WithContext(ctx).Create(row).Error
}

func (r *tagHistoryRepo) ListByTag(ctx context.Context, tx *gorm.DB, tagID uuid.UUID, limit int) ([]*types.TagHistory, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if tagID == uuid.Nil {
		return []*types.TagHistory{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	var out []*types.TagHistory
	if err := t.WithContext(ctx).
		Where("tag_id = ?", tagID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
