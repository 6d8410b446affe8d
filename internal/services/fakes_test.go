package services

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atlaspedia/atlaspedia-backend/internal/data/repos/taxonomy"
	"github.com/atlaspedia/atlaspedia-backend/internal/pkg/logger"
	"github.com/atlaspedia/atlaspedia-backend/internal/types"
)

// The service tests run against in-memory repo fakes; the repo layer has
// its own postgres-backed tests. A non-nil placeholder tx keeps the
// services from opening real transactions.
var testTx = &gorm.DB{}

func testLogger(t interface{ Fatalf(string, ...interface{}) }) *logger.Logger {
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

type fakeTagRepo struct {
	tags map[uuid.UUID]*types.Tag
}

func newFakeTagRepo(tags ...*types.Tag) *fakeTagRepo {
	r := &fakeTagRepo{tags: map[uuid.UUID]*types.Tag{}}
	for _, tag := range tags {
		if tag.ID == uuid.Nil {
			tag.ID = uuid.New()
		}
		if tag.Status == "" {
			tag.Status = types.TagStatusActive
		}
		if tag.QualityScore == 0 {
			tag.QualityScore = 5.0
		}
		r.tags[tag.ID] = tag
	}
	return r
}

func (r *fakeTagRepo) readable(status string) bool {
	return status == types.TagStatusActive || status == types.TagStatusDeprecated
}

func (r *fakeTagRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Tag) ([]*types.Tag, error) {
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		cp := *row
		r.tags[row.ID] = &cp
	}
	return rows, nil
}

func (r *fakeTagRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Tag, error) {
	tag, ok := r.tags[id]
	if !ok {
		return nil, nil
	}
	cp := *tag
	return &cp, nil
}

func (r *fakeTagRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Tag, error) {
	var out []*types.Tag
	for _, id := range ids {
		if tag, ok := r.tags[id]; ok {
			cp := *tag
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTagRepo) GetActiveByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Tag, error) {
	tag, ok := r.tags[id]
	if !ok || tag.Status != types.TagStatusActive {
		return nil, nil
	}
	cp := *tag
	return &cp, nil
}

func (r *fakeTagRepo) GetActiveByName(ctx context.Context, tx *gorm.DB, name string) (*types.Tag, error) {
	for _, tag := range r.tags {
		if tag.Name == name && tag.Status == types.TagStatusActive {
			cp := *tag
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeTagRepo) ActiveNameExists(ctx context.Context, tx *gorm.DB, name string) (bool, error) {
	tag, _ := r.GetActiveByName(ctx, tx, name)
	return tag != nil, nil
}

func (r *fakeTagRepo) ListByParentIDs(ctx context.Context, tx *gorm.DB, parentIDs []uuid.UUID, statuses []string) ([]*types.Tag, error) {
	match := func(status string) bool {
		if statuses == nil {
			return r.readable(status)
		}
		for _, s := range statuses {
			if s == status {
				return true
			}
		}
		return false
	}
	var out []*types.Tag
	for _, tag := range r.tags {
		if tag.ParentID == nil || !match(tag.Status) {
			continue
		}
		for _, pid := range parentIDs {
			if *tag.ParentID == pid {
				cp := *tag
				out = append(out, &cp)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeTagRepo) ListRoots(ctx context.Context, tx *gorm.DB, statuses []string) ([]*types.Tag, error) {
	var out []*types.Tag
	for _, tag := range r.tags {
		if tag.ParentID == nil && r.readable(tag.Status) {
			cp := *tag
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeTagRepo) CountChildren(ctx context.Context, tx *gorm.DB, parentID uuid.UUID, statuses []string) (int64, error) {
	rows, _ := r.ListByParentIDs(ctx, tx, []uuid.UUID{parentID}, statuses)
	return int64(len(rows)), nil
}

func (r *fakeTagRepo) CountAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	return int64(len(r.tags)), nil
}

func (r *fakeTagRepo) Search(ctx context.Context, tx *gorm.DB, keyword, category, domain string, limit int) ([]*types.Tag, error) {
	kw := strings.ToLower(keyword)
	var out []*types.Tag
	for _, tag := range r.tags {
		if !r.readable(tag.Status) {
			continue
		}
		if kw != "" && !strings.Contains(strings.ToLower(tag.Name), kw) {
			aliasHit := false
			for _, alias := range tag.AliasList() {
				if strings.Contains(strings.ToLower(alias), kw) {
					aliasHit = true
					break
				}
			}
			if !aliasHit {
				continue
			}
		}
		if category != "" && tag.Category != category {
			continue
		}
		if domain != "" && tag.Domain != domain {
			continue
		}
		cp := *tag
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UsageCount != out[j].UsageCount {
			return out[i].UsageCount > out[j].UsageCount
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeTagRepo) SuggestByPrefix(ctx context.Context, tx *gorm.DB, prefix string, limit int) ([]*types.Tag, error) {
	var out []*types.Tag
	for _, tag := range r.tags {
		if r.readable(tag.Status) && strings.HasPrefix(strings.ToLower(tag.Name), strings.ToLower(prefix)) {
			cp := *tag
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UsageCount > out[j].UsageCount })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeTagRepo) Popular(ctx context.Context, tx *gorm.DB, category string, limit int) ([]*types.Tag, error) {
	return r.Search(ctx, tx, "", category, "", limit)
}

func (r *fakeTagRepo) CountByCategory(ctx context.Context, tx *gorm.DB) ([]taxonomy.CategoryCount, error) {
	counts := map[string]int64{}
	for _, tag := range r.tags {
		if tag.Status == types.TagStatusActive {
			counts[tag.Category]++
		}
	}
	var out []taxonomy.CategoryCount
	for cat, n := range counts {
		out = append(out, taxonomy.CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

func (r *fakeTagRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Tag) error {
	cp := *row
	r.tags[row.ID] = &cp
	return nil
}

func (r *fakeTagRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	tag, ok := r.tags[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, val := range updates {
		switch key {
		case "level":
			tag.Level = val.(int)
		case "path":
			tag.Path = val.(string)
		case "usage_count":
			tag.UsageCount = val.(int)
		case "popularity_score":
			tag.PopularityScore = val.(float64)
		case "status":
			tag.Status = val.(string)
		}
	}
	return nil
}

type fakeEntryTagRepo struct {
	counts map[uuid.UUID]int64
	co     []taxonomy.CoUsage
}

func newFakeEntryTagRepo() *fakeEntryTagRepo {
	return &fakeEntryTagRepo{counts: map[uuid.UUID]int64{}}
}

func (r *fakeEntryTagRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.EntryTag) ([]*types.EntryTag, error) {
	for _, row := range rows {
		r.counts[row.TagID]++
	}
	return rows, nil
}

func (r *fakeEntryTagRepo) CountByTagID(ctx context.Context, tx *gorm.DB, tagID uuid.UUID) (int64, error) {
	return r.counts[tagID], nil
}

func (r *fakeEntryTagRepo) ReassignTag(ctx context.Context, tx *gorm.DB, fromTagID, toTagID uuid.UUID) (int64, error) {
	moved := r.counts[fromTagID]
	r.counts[toTagID] += moved
	delete(r.counts, fromTagID)
	return moved, nil
}

func (r *fakeEntryTagRepo) CoTagged(ctx context.Context, tx *gorm.DB, seedTagIDs []uuid.UUID, limit int) ([]taxonomy.CoUsage, error) {
	return r.co, nil
}

type fakeRelationRepo struct {
	rows []*types.TagRelation
}

func (r *fakeRelationRepo) Create(ctx context.Context, tx *gorm.DB, row *types.TagRelation) error {
	r.rows = append(r.rows, row)
	return nil
}

func (r *fakeRelationRepo) ListForTags(ctx context.Context, tx *gorm.DB, tagIDs []uuid.UUID, limit int) ([]*types.TagRelation, error) {
	member := map[uuid.UUID]bool{}
	for _, id := range tagIDs {
		member[id] = true
	}
	var out []*types.TagRelation
	for _, row := range r.rows {
		if member[row.FromTagID] || member[row.ToTagID] {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeRelationRepo) DeleteByTagID(ctx context.Context, tx *gorm.DB, tagID uuid.UUID) error {
	var kept []*types.TagRelation
	for _, row := range r.rows {
		if row.FromTagID != tagID && row.ToTagID != tagID {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

type recordedHistory struct {
	TagID   uuid.UUID
	Action  string
	OldData map[string]any
	NewData map[string]any
}

type fakeHistory struct {
	records []recordedHistory
}

func (h *fakeHistory) Record(ctx context.Context, tagID uuid.UUID, action, description string, actorID uuid.UUID, oldData, newData map[string]any) {
	h.records = append(h.records, recordedHistory{TagID: tagID, Action: action, OldData: oldData, NewData: newData})
}

func (h *fakeHistory) ListByTag(ctx context.Context, tx *gorm.DB, tagID uuid.UUID, limit int) ([]*types.TagHistory, error) {
	return nil, nil
}

type fakePerms struct {
	denyCreate  bool
	denyEdit    bool
	denyApprove bool
}

func permErr(deny bool) error {
	if deny {
		return errPermDenied
	}
	return nil
}

var errPermDenied = permError{}

type permError struct{}

func (permError) Error() string { return "permission denied" }

func (p *fakePerms) RequireCreate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	return permErr(p.denyCreate)
}

func (p *fakePerms) RequireEdit(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	return permErr(p.denyEdit)
}

func (p *fakePerms) RequireApprove(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	return permErr(p.denyApprove)
}
