package taxonomy

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atlaspedia/atlaspedia-backend/internal/pkg/logger"
	"github.com/atlaspedia/atlaspedia-backend/internal/types"
)

// CoUsage is one co-occurrence row: a tag appearing on entries that also
// carry one of the seed tags.
type CoUsage struct {
	TagID uuid.UUID `json:"tag_id"`
	Count int64     `json:"count"`
}

// EntryTagRepo is the content-reference side the taxonomy consults: how
// many entries point at a tag, and the rewrite used by merge.
type EntryTagRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.EntryTag) ([]*types.EntryTag, error)
	CountByTagID(ctx context.Context, tx *gorm.DB, tagID uuid.UUID) (int64, error)
	// ReassignTag rewrites every reference from one tag to another and
	// returns the number of rewritten rows.
	ReassignTag(ctx context.Context, tx *gorm.DB, fromTagID, toTagID uuid.UUID) (int64, error)
	// CoTagged returns tags that co-occur on entries carrying any of the
	// seed tags, most frequent first. Seed tags themselves are excluded.
	CoTagged(ctx context.Context, tx *gorm.DB, seedTagIDs []uuid.UUID, limit int) ([]CoUsage, error)
}

type entryTagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEntryTagRepo(db *gorm.DB, baseLog *logger.Logger) EntryTagRepo {
	return &entryTagRepo{db: db, log: baseLog.With("repo", "EntryTagRepo")}
}

func (r *entryTagRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.EntryTag) ([]*types.EntryTag, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.EntryTag{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *entryTagRepo) CountByTagID(ctx context.Context, tx *gorm.DB, tagID uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if tagID == uuid.Nil {
		return 0, nil
	}
	var count int64
	if err := t.WithContext(ctx).Model(&types.EntryTag{}).
		Where("tag_id = ?", tagID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *entryTagRepo) ReassignTag(ctx context.Context, tx *gorm.DB, fromTagID, toTagID uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if fromTagID == uuid.Nil || toTagID == uuid.Nil {
		return 0, nil
	}
	// Entries already carrying the target tag would trip the
	// (entry_id, tag_id) unique index; drop their source rows first.
	already := t.WithContext(ctx).Model(&types.EntryTag{}).
		Select("entry_id").
		Where("tag_id = ?", toTagID)
	if err := t.WithContext(ctx).
		Where("tag_id = ? AND entry_id IN (?)", fromTagID, already).
		Delete(&types.EntryTag{}).Error; err != nil {
		return 0, err
	}
	res := t.WithContext(ctx).Model(&types.EntryTag{}).
		Where("tag_id = ?", fromTagID).
		Update("tag_id", toTagID)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *entryTagRepo) CoTagged(ctx context.Context, tx *gorm.DB, seedTagIDs []uuid.UUID, limit int) ([]CoUsage, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(seedTagIDs) == 0 {
		return []CoUsage{}, nil
	}
	if limit <= 0 {
		limit = 10
	}
	var out []CoUsage
	if err := t.WithContext(ctx).Model(&types.EntryTag{}).
		Select("tag_id, COUNT(DISTINCT entry_id) AS count").
		Where("entry_id IN (?)",
			t.Session(&gorm.Session{NewDB: true}).Model(&types.EntryTag{}).
				Select("entry_id").
				Where("tag_id IN ?", seedTagIDs),
		).
		Where("tag_id NOT IN ?", seedTagIDs).
		Group("tag_id").
		Order("count DESC").
		Limit(limit).
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
