package taxonomy

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atlaspedia/atlaspedia-backend/internal/pkg/logger"
	"github.com/atlaspedia/atlaspedia-backend/internal/types"
)

// CategoryCount is one row of the category aggregation.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type TagRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Tag) ([]*types.Tag, error)

	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Tag, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Tag, error)
	GetActiveByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Tag, error)
	GetActiveByName(ctx context.Context, tx *gorm.DB, name string) (*types.Tag, error)
	ActiveNameExists(ctx context.Context, tx *gorm.DB, name string) (bool, error)

	ListByParentIDs(ctx context.Context, tx *gorm.DB, parentIDs []uuid.UUID, statuses []string) ([]*types.Tag, error)
	ListRoots(ctx context.Context, tx *gorm.DB, statuses []string) ([]*types.Tag, error)
	CountChildren(ctx context.Context, tx *gorm.DB, parentID uuid.UUID, statuses []string) (int64, error)
	CountAll(ctx context.Context, tx *gorm.DB) (int64, error)

	Search(ctx context.Context, tx *gorm.DB, keyword, category, domain string, limit int) ([]*types.Tag, error)
	SuggestByPrefix(ctx context.Context, tx *gorm.DB, prefix string, limit int) ([]*types.Tag, error)
	Popular(ctx context.Context, tx *gorm.DB, category string, limit int) ([]*types.Tag, error)
	CountByCategory(ctx context.Context, tx *gorm.DB) ([]CategoryCount, error)

	Update(ctx context.Context, tx *gorm.DB, row *types.Tag) error
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

// readableStatuses is the default visibility filter: deleted and merged
// rows never appear in listing results, deprecated rows do.
var readableStatuses = []string{types.TagStatusActive, types.TagStatusDeprecated}

type tagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) TagRepo {
	return &tagRepo{db: db, log: baseLog.With("repo", "TagRepo")}
}

func (r *tagRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Tag) ([]*types.Tag, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Tag{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *tagRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Tag, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *tagRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Tag, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Tag
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tagRepo) GetActiveByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Tag, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Tag
	if err := t.WithContext(ctx).
		Where("id = ? AND status = ?", id, types.TagStatusActive).
		Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *tagRepo) GetActiveByName(ctx context.Context, tx *gorm.DB, name string) (*types.Tag, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	var out []*types.Tag
	if err := t.WithContext(ctx).
		Where("name = ? AND status = ?", name, types.TagStatusActive).
		Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *tagRepo) ActiveNameExists(ctx context.Context, tx *gorm.DB, name string) (bool, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var count int64
	if err := t.WithContext(ctx).Model(&types.Tag{}).
		Where("name = ? AND status = ?", strings.TrimSpace(name), types.TagStatusActive).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *tagRepo) ListByParentIDs(ctx context.Context, tx *gorm.DB, parentIDs []uuid.UUID, statuses []string) ([]*types.Tag, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Tag
	if len(parentIDs) == 0 {
		return out, nil
	}
	if len(statuses) == 0 {
		statuses = readableStatuses
	}
	if err := t.WithContext(ctx).
		Where("parent_id IN ? AND status IN ?", parentIDs, statuses).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tagRepo) ListRoots(ctx context.Context, tx *gorm.DB, statuses []string) ([]*types.Tag, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(statuses) == 0 {
		statuses = readableStatuses
	}
	var out []*types.Tag
	if err := t.WithContext(ctx).
		Where("parent_id IS NULL AND status IN ?", statuses).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tagRepo) CountChildren(ctx context.Context, tx *gorm.DB, parentID uuid.UUID, statuses []string) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(statuses) == 0 {
		statuses = []string{types.TagStatusActive}
	}
	var count int64
	if err := t.WithContext(ctx).Model(&types.Tag{}).
		Where("parent_id = ? AND status IN ?", parentID, statuses).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *tagRepo) CountAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var count int64
	if err := t.WithContext(ctx).Model(&types.Tag{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *tagRepo) Search(ctx context.Context, tx *gorm.DB, keyword, category, domain string, limit int) ([]*types.Tag, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(ctx).Model(&types.Tag{}).
		Where("status IN ?", readableStatuses)

	keyword = strings.TrimSpace(keyword)
	if keyword != "" {
		pattern := "%" + keyword + "%"
		q = q.Where(
			"name ILIKE ? OR name_alt ILIKE ? OR description ILIKE ? OR aliases::text ILIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if domain != "" {
		q = q.Where("domain = ?", domain)
	}
	if limit <= 0 {
		limit = 20
	}

	var out []*types.Tag
	if err := q.
		Order("usage_count DESC").
		Order("quality_score DESC").
		Order("name ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tagRepo) SuggestByPrefix(ctx context.Context, tx *gorm.DB, prefix string, limit int) ([]*types.Tag, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []*types.Tag{}, nil
	}
	if limit <= 0 {
		limit = 10
	}
	var out []*types.Tag
	if err := t.WithContext(ctx).
		Where("status IN ? AND name ILIKE ?", readableStatuses, prefix+"%").
		Order("usage_count DESC").
		Order("quality_score DESC").
		Order("name ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tagRepo) Popular(ctx context.Context, tx *gorm.DB, category string, limit int) ([]*types.Tag, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 20
	}
	q := t.WithContext(ctx).Where("status IN ?", readableStatuses)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var out []*types.Tag
	if err := q.
		Order("usage_count DESC").
		Order("popularity_score DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tagRepo) CountByCategory(ctx context.Context, tx *gorm.DB) ([]CategoryCount, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []CategoryCount
	if err := t.WithContext(ctx).Model(&types.Tag{}).
		Select("category, COUNT(id) AS count").
		Where("status = ?", types.TagStatusActive).
		Group("category").
		Order("count DESC").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tagRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Tag) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.ID == uuid.Nil {
		return nil
	}
	return t.WithContext(ctx).Save(row).Error
}

func (r *tagRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return t.WithContext(ctx).Model(&types.Tag{}).
		Where("id = ?", id).
		Updates(updates).Error
}
