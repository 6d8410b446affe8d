package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	rediscache "github.com/atlaspedia/atlaspedia-backend/internal/clients/redis"
	"github.com/atlaspedia/atlaspedia-backend/internal/data/repos/taxonomy"
	apperrors "github.com/atlaspedia/atlaspedia-backend/internal/pkg/errors"
	"github.com/atlaspedia/atlaspedia-backend/internal/pkg/logger"
	"github.com/atlaspedia/atlaspedia-backend/internal/types"
)

const (
	defaultTreeDepth  = 3
	maxTreeDepth      = 10
	defaultListLimit  = 20
	maxListLimit      = 100
	statsConcurrency  = 8
	readCacheTTL      = 5 * time.Minute
	mergeChainMaxHops = 10
)

// TreeNode is one rendered node of the tag tree.
type TreeNode struct {
	*types.Tag
	Children []*TreeNode `json:"children"`
	Stats    *TreeStats  `json:"stats,omitempty"`
}

type TreeStats struct {
	ChildrenCount    int   `json:"children_count"`
	UsageCount       int64 `json:"usage_count"`
	TotalDescendants int   `json:"total_descendants"`
}

// TagSuggestion is a lightweight autocomplete row.
type TagSuggestion struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Path string    `json:"path"`
}

// RecommendedTag is one related-tag suggestion with its signal weight.
type RecommendedTag struct {
	Tag   *types.Tag `json:"tag"`
	Score float64    `json:"score"`
}

// QueryService is the read side of the taxonomy: tree rendering, search,
// autocomplete, popularity and recommendations. It never mutates the
// hierarchy, though stat reads may refresh stale usage counters.
type QueryService interface {
	GetTree(ctx context.Context, tx *gorm.DB, rootID *uuid.UUID, maxDepth int, includeStats bool) ([]*TreeNode, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Tag, error)
	Search(ctx context.Context, tx *gorm.DB, keyword, category, domain string, limit int) ([]*types.Tag, error)
	Suggestions(ctx context.Context, tx *gorm.DB, partial string, limit int) ([]TagSuggestion, error)
	Popular(ctx context.Context, tx *gorm.DB, category string, limit int) ([]*types.Tag, error)
	Categories(ctx context.Context, tx *gorm.DB) ([]taxonomy.CategoryCount, error)
	History(ctx context.Context, tx *gorm.DB, tagID uuid.UUID, limit int) ([]*types.TagHistory, error)
	Recommended(ctx context.Context, tx *gorm.DB, tagIDs []uuid.UUID, limit int) ([]RecommendedTag, error)
}

type queryService struct {
	db           *gorm.DB
	log          *logger.Logger
	tagRepo      taxonomy.TagRepo
	entryTagRepo taxonomy.EntryTagRepo
	relationRepo taxonomy.TagRelationRepo
	history      HistoryService
	cache        rediscache.QueryCache
}

func NewQueryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	tagRepo taxonomy.TagRepo,
	entryTagRepo taxonomy.EntryTagRepo,
	relationRepo taxonomy.TagRelationRepo,
	history HistoryService,
	cache rediscache.QueryCache,
) QueryService {
	return &queryService{
		db:           db,
		log:          baseLog.With("service", "QueryService"),
		tagRepo:      tagRepo,
		entryTagRepo: entryTagRepo,
		relationRepo: relationRepo,
		history:      history,
		cache:        cache,
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func (s *queryService) GetTree(ctx context.Context, tx *gorm.DB, rootID *uuid.UUID, maxDepth int, includeStats bool) ([]*TreeNode, error) {
	// Depth zero renders the root alone; negative means "not specified".
	if maxDepth < 0 {
		maxDepth = defaultTreeDepth
	}
	if maxDepth > maxTreeDepth {
		maxDepth = maxTreeDepth
	}

	var roots []*types.Tag
	if rootID != nil {
		tag, err := s.tagRepo.GetByID(ctx, tx, *rootID)
		if err != nil {
			return nil, apperrors.InternalError("load root tag", err)
		}
		if tag == nil || tag.Status == types.TagStatusDeleted || tag.Status == types.TagStatusMerged {
			return nil, apperrors.NotFoundError("root tag not found")
		}
		roots = []*types.Tag{tag}
	} else {
		var err error
		roots, err = s.tagRepo.ListRoots(ctx, tx, nil)
		if err != nil {
			return nil, apperrors.InternalError("list root tags", err)
		}
	}
	if len(roots) == 0 {
		return []*TreeNode{}, nil
	}

	nodes := map[uuid.UUID]*TreeNode{}
	result := make([]*TreeNode, 0, len(roots))
	for _, root := range roots {
		node := &TreeNode{Tag: root, Children: []*TreeNode{}}
		nodes[root.ID] = node
		result = append(result, node)
	}

	// Level-by-level expansion: the children of the whole frontier come
	// back in one query per depth step.
	frontier := make([]uuid.UUID, 0, len(roots))
	for _, root := range roots {
		frontier = append(frontier, root.ID)
	}
	// childCounts tracks the full subtree even past maxDepth so
	// total_descendants stays accurate for truncated trees.
	childIDs := map[uuid.UUID][]uuid.UUID{}

	for depth := 0; len(frontier) > 0; depth++ {
		children, err := s.tagRepo.ListByParentIDs(ctx, tx, frontier, nil)
		if err != nil {
			return nil, apperrors.InternalError("list child tags", err)
		}
		next := make([]uuid.UUID, 0, len(children))
		for _, child := range children {
			if child.ParentID == nil {
				continue
			}
			if _, dup := nodes[child.ID]; dup {
				continue
			}
			childIDs[*child.ParentID] = append(childIDs[*child.ParentID], child.ID)
			next = append(next, child.ID)

			if depth < maxDepth {
				node := &TreeNode{Tag: child, Children: []*TreeNode{}}
				nodes[child.ID] = node
				if parent, ok := nodes[*child.ParentID]; ok {
					parent.Children = append(parent.Children, node)
				}
			} else {
				nodes[child.ID] = nil // visited, not rendered
			}
		}
		frontier = next
		if !includeStats && depth >= maxDepth {
			break
		}
	}

	if includeStats {
		totals := map[uuid.UUID]int{}
		var countDescendants func(id uuid.UUID) int
		countDescendants = func(id uuid.UUID) int {
			if n, ok := totals[id]; ok {
				return n
			}
			n := 0
			for _, child := range childIDs[id] {
				n += 1 + countDescendants(child)
			}
			totals[id] = n
			return n
		}

		rendered := make([]*TreeNode, 0, len(nodes))
		for _, node := range nodes {
			if node != nil {
				rendered = append(rendered, node)
			}
		}
		for _, node := range rendered {
			node.Stats = &TreeStats{
				ChildrenCount:    len(childIDs[node.Tag.ID]),
				TotalDescendants: countDescendants(node.Tag.ID),
			}
		}
		if err := s.refreshUsageStats(ctx, tx, rendered); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// refreshUsageStats fills stats.usage_count from the entry_tag table and
// rewrites the denormalized counter when it drifted. Counts run
// concurrently only outside a caller-supplied transaction.
func (s *queryService) refreshUsageStats(ctx context.Context, tx *gorm.DB, nodes []*TreeNode) error {
	refresh := func(ctx context.Context, node *TreeNode) error {
		count, err := s.entryTagRepo.CountByTagID(ctx, tx, node.Tag.ID)
		if err != nil {
			return apperrors.InternalError("count tag usage", err)
		}
		node.Stats.UsageCount = count
		if int(count) != node.Tag.UsageCount {
			node.Tag.UsageCount = int(count)
			node.Tag.RecomputePopularity()
			if err := s.tagRepo.UpdateFields(ctx, tx, node.Tag.ID, map[string]interface{}{
				"usage_count":      node.Tag.UsageCount,
				"popularity_score": node.Tag.PopularityScore,
			}); err != nil {
				return apperrors.InternalError("refresh tag usage", err)
			}
		}
		return nil
	}

	if tx != nil {
		for _, node := range nodes {
			if err := refresh(ctx, node); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statsConcurrency)
	for _, node := range nodes {
		node := node
		g.Go(func() error { return refresh(gctx, node) })
	}
	return g.Wait()
}

// GetByID resolves merge pointers: asking for a merged tag returns the
// live target it was folded into.
func (s *queryService) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Tag, error) {
	tag, err := s.tagRepo.GetByID(ctx, tx, id)
	if err != nil {
		return nil, apperrors.InternalError("load tag", err)
	}
	for hops := 0; tag != nil && tag.Status == types.TagStatusMerged; hops++ {
		if hops >= mergeChainMaxHops {
			return nil, apperrors.InternalError("resolve merged tag",
				fmt.Errorf("merge chain from %s exceeds %d hops", id, mergeChainMaxHops))
		}
		targetID := tag.MergedTo()
		if targetID == uuid.Nil {
			return nil, apperrors.NotFoundError("tag was merged and its target is unknown")
		}
		tag, err = s.tagRepo.GetByID(ctx, tx, targetID)
		if err != nil {
			return nil, apperrors.InternalError("resolve merged tag", err)
		}
	}
	if tag == nil || tag.Status == types.TagStatusDeleted {
		return nil, apperrors.NotFoundError("tag not found")
	}
	return tag, nil
}

func (s *queryService) Search(ctx context.Context, tx *gorm.DB, keyword, category, domain string, limit int) ([]*types.Tag, error) {
	rows, err := s.tagRepo.Search(ctx, tx, keyword, category, domain, clampLimit(limit))
	if err != nil {
		return nil, apperrors.InternalError("search tags", err)
	}
	return rows, nil
}

func (s *queryService) Suggestions(ctx context.Context, tx *gorm.DB, partial string, limit int) ([]TagSuggestion, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = 10
	}
	rows, err := s.tagRepo.SuggestByPrefix(ctx, tx, partial, limit)
	if err != nil {
		return nil, apperrors.InternalError("suggest tags", err)
	}
	out := make([]TagSuggestion, 0, len(rows))
	for _, tag := range rows {
		out = append(out, TagSuggestion{ID: tag.ID, Name: tag.Name, Path: tag.Path})
	}
	return out, nil
}

func (s *queryService) Popular(ctx context.Context, tx *gorm.DB, category string, limit int) ([]*types.Tag, error) {
	limit = clampLimit(limit)
	cacheKey := fmt.Sprintf("popular:%s:%d", category, limit)

	if s.cache != nil && tx == nil {
		var cached []*types.Tag
		if s.cache.Get(ctx, cacheKey, &cached) {
			return cached, nil
		}
	}

	rows, err := s.tagRepo.Popular(ctx, tx, category, limit)
	if err != nil {
		return nil, apperrors.InternalError("list popular tags", err)
	}
	if s.cache != nil && tx == nil {
		s.cache.Set(ctx, cacheKey, rows, readCacheTTL)
	}
	return rows, nil
}

func (s *queryService) Categories(ctx context.Context, tx *gorm.DB) ([]taxonomy.CategoryCount, error) {
	if s.cache != nil && tx == nil {
		var cached []taxonomy.CategoryCount
		if s.cache.Get(ctx, "categories", &cached) {
			return cached, nil
		}
	}

	rows, err := s.tagRepo.CountByCategory(ctx, tx)
	if err != nil {
		return nil, apperrors.InternalError("count categories", err)
	}
	if s.cache != nil && tx == nil {
		s.cache.Set(ctx, "categories", rows, readCacheTTL)
	}
	return rows, nil
}

func (s *queryService) History(ctx context.Context, tx *gorm.DB, tagID uuid.UUID, limit int) ([]*types.TagHistory, error) {
	return s.history.ListByTag(ctx, tx, tagID, limit)
}

// Recommended blends two signals into related-tag suggestions: explicit
// typed relations (weighted by edge strength) and co-occurrence on the
// same entries. A tag surfaced by both keeps its stronger score.
func (s *queryService) Recommended(ctx context.Context, tx *gorm.DB, tagIDs []uuid.UUID, limit int) ([]RecommendedTag, error) {
	if len(tagIDs) == 0 {
		return nil, apperrors.ValidationError("at least one tag id required")
	}
	limit = clampLimit(limit)

	seeds := map[uuid.UUID]bool{}
	for _, id := range tagIDs {
		seeds[id] = true
	}
	scores := map[uuid.UUID]float64{}

	relations, err := s.relationRepo.ListForTags(ctx, tx, tagIDs, limit*4)
	if err != nil {
		return nil, apperrors.InternalError("list tag relations", err)
	}
	for _, rel := range relations {
		other := rel.ToTagID
		if seeds[other] {
			if !rel.IsBidirectional {
				continue
			}
			other = rel.FromTagID
		}
		if seeds[other] {
			continue
		}
		if rel.Strength > scores[other] {
			scores[other] = rel.Strength
		}
	}

	coUsage, err := s.entryTagRepo.CoTagged(ctx, tx, tagIDs, limit*4)
	if err != nil {
		return nil, apperrors.InternalError("list co-tagged", err)
	}
	var maxCount int64
	for _, cu := range coUsage {
		if cu.Count > maxCount {
			maxCount = cu.Count
		}
	}
	for _, cu := range coUsage {
		if seeds[cu.TagID] || maxCount == 0 {
			continue
		}
		score := 0.5 * float64(cu.Count) / float64(maxCount)
		if score > scores[cu.TagID] {
			scores[cu.TagID] = score
		}
	}

	if len(scores) == 0 {
		return []RecommendedTag{}, nil
	}
	ids := make([]uuid.UUID, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	rows, err := s.tagRepo.GetByIDs(ctx, tx, ids)
	if err != nil {
		return nil, apperrors.InternalError("load recommended tags", err)
	}

	out := make([]RecommendedTag, 0, len(rows))
	for _, tag := range rows {
		if tag.Status == types.TagStatusDeleted || tag.Status == types.TagStatusMerged {
			continue
		}
		out = append(out, RecommendedTag{Tag: tag, Score: scores[tag.ID]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Tag.Name < out[j].Tag.Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
