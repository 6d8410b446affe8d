package taxonomy

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atlaspedia/atlaspedia-backend/internal/pkg/logger"
	"github.com/atlaspedia/atlaspedia-backend/internal/types"
)

type TagRelationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.TagRelation) error
	// ListForTags returns active relations touching any of the given tags,
	// from either end, strongest first.
	ListForTags(ctx context.Context, tx *gorm.DB, tagIDs []uuid.UUID, limit int) ([]*types.TagRelation, error)
	DeleteByTagID(ctx context.Context, tx *gorm.DB, tagID uuid.UUID) error
}

type tagRelationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTagRelationRepo(db *gorm.DB, baseLog *logger.Logger) TagRelationRepo {
	return &tagRelationRepo{db: db, log: baseLog.With("repo", "TagRelationRepo")}
}

func (r *tagRelationRepo) Create(ctx context.Context, tx *gorm.DB, row *types.TagRelation) error {
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

func (r *tagRelationRepo) ListForTags(ctx context.Context, tx *gorm.DB, tagIDs []uuid.UUID, limit int) ([]*types.TagRelation, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(tagIDs) == 0 {
		return []*types.TagRelation{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	var out []*types.TagRelation
	if err := t.WithContext(ctx).
		Where("(from_tag_id IN ? OR to_tag_id IN ?) AND status = ?", tagIDs, tagIDs, "active").
		Order("strength DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tagRelationRepo) DeleteByTagID(ctx context.Context, tx *gorm.DB, tagID uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if tagID == uuid.Nil {
		return nil
	}
	return t.WithContext(ctx).
		Where("from_tag_id = ? OR to_tag_id = ?", tagID, tagID).
		Delete(&types.TagRelation{}).Error
}
