package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atlaspedia/atlaspedia-backend/internal/data/repos/taxonomy"
	apperrors "github.com/atlaspedia/atlaspedia-backend/internal/pkg/errors"
	"github.com/atlaspedia/atlaspedia-backend/internal/pkg/logger"
	"github.com/atlaspedia/atlaspedia-backend/internal/types"
)

// TaxonomyGraph is the optional graph mirror the hierarchy notifies after
// structural changes. All implementations must tolerate nil receivers so
// a disabled mirror stays a no-op.
type TaxonomyGraph interface {
	UpsertTag(ctx context.Context, tag *types.Tag) error
	RecordMerge(ctx context.Context, sourceID, targetID uuid.UUID) error
	RemoveTag(ctx context.Context, tagID uuid.UUID) error
}

// CacheInvalidator is the slice of the query cache the hierarchy needs:
// dropping read-side entries after a mutation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, keys ...string)
	InvalidatePrefix(ctx context.Context, prefix string)
}

type CreateTagInput struct {
	Name        string
	NameAlt     string
	Description string
	ParentID    *uuid.UUID
	Category    string
	Domain      string
	IsAbstract  bool
	Aliases     []string
	Properties  map[string]any

	// AutoPlace asks the classifier for a parent when ParentID is nil.
	AutoPlace   bool
	Recognition *types.RecognitionContext
}

// UpdateTagInput carries the editable fields; nil pointers mean "leave as is".
type UpdateTagInput struct {
	Name        *string
	NameAlt     *string
	Description *string
	Category    *string
	Aliases     []string
}

// HierarchyService owns every structural mutation of the tag tree. All
// operations hold a per-tag lock for the duration of the change so two
// concurrent moves cannot race each other into a cycle, and each records
// an audit row after the change lands.
type HierarchyService interface {
	Create(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, input CreateTagInput) (*types.Tag, error)
	Update(ctx context.Context, tx *gorm.DB, actorID, tagID uuid.UUID, input UpdateTagInput) (*types.Tag, error)
	Move(ctx context.Context, tx *gorm.DB, actorID, tagID uuid.UUID, newParentID *uuid.UUID) (*types.Tag, error)
	Merge(ctx context.Context, tx *gorm.DB, actorID, sourceID, targetID uuid.UUID) (*types.Tag, error)
	Delete(ctx context.Context, tx *gorm.DB, actorID, tagID uuid.UUID) error
	Deprecate(ctx context.Context, tx *gorm.DB, actorID, tagID uuid.UUID) error
	Restore(ctx context.Context, tx *gorm.DB, actorID, tagID uuid.UUID) error
	ValidateTags(ctx context.Context, tx *gorm.DB, tagIDs []uuid.UUID) ([]uuid.UUID, error)
}

type hierarchyService struct {
	db           *gorm.DB
	log          *logger.Logger
	tagRepo      taxonomy.TagRepo
	entryTagRepo taxonomy.EntryTagRepo
	relationRepo taxonomy.TagRelationRepo
	resolver     PathResolver
	history      HistoryService
	perms        PermissionService
	classifier   ClassifierService
	graph        TaxonomyGraph
	cache        CacheInvalidator

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewHierarchyService(
	db *gorm.DB,
	baseLog *logger.Logger,
	tagRepo taxonomy.TagRepo,
	entryTagRepo taxonomy.EntryTagRepo,
	relationRepo taxonomy.TagRelationRepo,
	resolver PathResolver,
	history HistoryService,
	perms PermissionService,
	classifier ClassifierService,
	graph TaxonomyGraph,
	cache CacheInvalidator,
) HierarchyService {
	return &hierarchyService{
		db:           db,
		log:          baseLog.With("service", "HierarchyService"),
		tagRepo:      tagRepo,
		entryTagRepo: entryTagRepo,
		relationRepo: relationRepo,
		resolver:     resolver,
		history:      history,
		perms:        perms,
		classifier:   classifier,
		graph:        graph,
		cache:        cache,
		locks:        map[uuid.UUID]*sync.Mutex{},
	}
}

// lockTags acquires per-tag mutexes in id order so concurrent operations
// touching the same pair cannot deadlock.
func (s *hierarchyService) lockTags(ids ...uuid.UUID) func() {
	seen := map[uuid.UUID]bool{}
	ordered := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		ordered = append(ordered, id)
	}
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j].String() < ordered[i].String() {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}

	acquired := make([]*sync.Mutex, 0, len(ordered))
	for _, id := range ordered {
		s.mu.Lock()
		m, ok := s.locks[id]
		if !ok {
			m = &sync.Mutex{}
			s.locks[id] = m
		}
		s.mu.Unlock()
		m.Lock()
		acquired = append(acquired, m)
	}
	return func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].Unlock()
		}
	}
}

// inTransaction runs fn inside the caller's transaction when one was
// passed, otherwise opens its own.
func (s *hierarchyService) inTransaction(ctx context.Context, tx *gorm.DB, fn func(tx *gorm.DB) error) error {
	if tx != nil {
		return fn(tx)
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

func (s *hierarchyService) invalidateReadCaches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, "categories")
	s.cache.InvalidatePrefix(ctx, "popular:")
}

func validateTagName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.ValidationError("tag name must not be empty")
	}
	if len([]rune(name)) > types.MaxTagNameLength {
		return "", apperrors.ValidationError(fmt.Sprintf("tag name exceeds %d characters", types.MaxTagNameLength))
	}
	if strings.ContainsRune(name, '/') {
		return "", apperrors.ValidationError("tag name must not contain '/'")
	}
	return name, nil
}

func (s *hierarchyService) Create(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, input CreateTagInput) (*types.Tag, error) {
	if err := s.perms.RequireCreate(ctx, tx, actorID); err != nil {
		return nil, err
	}
	name, err := validateTagName(input.Name)
	if err != nil {
		return nil, err
	}

	var created *types.Tag
	err = s.inTransaction(ctx, tx, func(tx *gorm.DB) error {
		exists, err := s.tagRepo.ActiveNameExists(ctx, tx, name)
		if err != nil {
			return apperrors.InternalError("check tag name", err)
		}
		if exists {
			return apperrors.ValidationError(fmt.Sprintf("tag %q already exists", name))
		}

		parentID := input.ParentID
		if parentID == nil && input.AutoPlace && s.classifier != nil {
			parent, err := s.classifier.BestParent(ctx, tx, name, input.Description, input.Recognition)
			if err != nil {
				return err
			}
			if parent != nil {
				parentID = &parent.ID
			}
		}

		var parent *types.Tag
		if parentID != nil {
			parent, err = s.tagRepo.GetActiveByID(ctx, tx, *parentID)
			if err != nil {
				return apperrors.InternalError("load parent tag", err)
			}
			if parent == nil {
				return apperrors.NotFoundError("parent tag not found")
			}
		}

		category := input.Category
		if category == "" {
			category = "general"
		}
		domain := input.Domain
		if domain == "" {
			domain = "general"
		}

		tag := &types.Tag{
			ID:          uuid.New(),
			Name:        name,
			NameAlt:     strings.TrimSpace(input.NameAlt),
			Description: input.Description,
			ParentID:    parentID,
			Category:    category,
			Domain:      domain,
			IsAbstract:  input.IsAbstract,
			Status:      types.TagStatusActive,
			QualityScore: 5.0,
			CreatedBy:   actorID,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		tag.SetAliases(input.Aliases)
		for k, v := range input.Properties {
			tag.SetProperty(k, v)
		}
		s.resolver.Recompute(tag, parent)

		if _, err := s.tagRepo.Create(ctx, tx, []*types.Tag{tag}); err != nil {
			return apperrors.MapDBError("create tag", err)
		}
		created = tag
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.graph != nil {
		if gerr := s.graph.UpsertTag(ctx, created); gerr != nil {
			s.log.Warn("graph upsert failed", "tag_id", created.ID, "error", gerr)
		}
	}
	s.history.Record(ctx, created.ID, types.TagActionCreate,
		fmt.Sprintf("created %q", created.Name), actorID, nil, created.Snapshot())
	s.invalidateReadCaches(ctx)

	s.log.Info("tag created", "tag_id", created.ID, "name", created.Name, "path", created.Path)
	return created, nil
}

func (s *hierarchyService) Update(ctx context.Context, tx *gorm.DB, actorID, tagID uuid.UUID, input UpdateTagInput) (*types.Tag, error) {
	if err := s.perms.RequireEdit(ctx, tx, actorID); err != nil {
		return nil, err
	}

	unlock := s.lockTags(tagID)
	defer unlock()

	var updated *types.Tag
	var oldData map[string]any
	err := s.inTransaction(ctx, tx, func(tx *gorm.DB) error {
		tag, err := s.tagRepo.GetByID(ctx, tx, tagID)
		if err != nil {
			return apperrors.InternalError("load tag", err)
		}
		if tag == nil {
			return apperrors.NotFoundError("tag not found")
		}
		if tag.Status == types.TagStatusDeleted || tag.Status == types.TagStatusMerged {
			return apperrors.ConflictError("tag is no longer editable")
		}

		oldData = tag.Snapshot()
		renamed := false

		if input.Name != nil {
			name, err := validateTagName(*input.Name)
			if err != nil {
				return err
			}
			if name != tag.Name {
				exists, err := s.tagRepo.ActiveNameExists(ctx, tx, name)
				if err != nil {
					return apperrors.InternalError("check tag name", err)
				}
				if exists {
					return apperrors.ValidationError(fmt.Sprintf("tag %q already exists", name))
				}
				tag.Name = name
				renamed = true
			}
		}
		if input.NameAlt != nil {
			tag.NameAlt = strings.TrimSpace(*input.NameAlt)
		}
		if input.Description != nil {
			tag.Description = *input.Description
		}
		if input.Category != nil && strings.TrimSpace(*input.Category) != "" {
			tag.Category = strings.TrimSpace(*input.Category)
		}
		if input.Aliases != nil {
			tag.SetAliases(input.Aliases)
		}

		if renamed {
			var parent *types.Tag
			if tag.ParentID != nil {
				parent, err = s.tagRepo.GetByID(ctx, tx, *tag.ParentID)
				if err != nil {
					return apperrors.InternalError("load parent tag", err)
				}
			}
			s.resolver.Recompute(tag, parent)
		}

		tag.UpdatedAt = time.Now()
		if err := s.tagRepo.Update(ctx, tx, tag); err != nil {
			return apperrors.MapDBError("update tag", err)
		}
		if renamed {
			if _, err := s.resolver.Cascade(ctx, tx, tag); err != nil {
				return err
			}
		}
		updated = tag
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.graph != nil {
		if gerr := s.graph.UpsertTag(ctx, updated); gerr != nil {
			s.log.Warn("graph upsert failed", "tag_id", updated.ID, "error", gerr)
		}
	}
	s.history.Record(ctx, updated.ID, types.TagActionUpdate,
		fmt.Sprintf("updated %q", updated.Name), actorID, oldData, updated.Snapshot())
	s.invalidateReadCaches(ctx)
	return updated, nil
}

// wouldCycle walks the ancestor chain upward from candidate looking for
// tagID. The walk is bounded by the total row count so corrupted parent
// links cannot spin forever.
func (s *hierarchyService) wouldCycle(ctx context.Context, tx *gorm.DB, candidate *types.Tag, tagID uuid.UUID) (bool, error) {
	if candidate.ID == tagID {
		return true, nil
	}
	bound, err := s.tagRepo.CountAll(ctx, tx)
	if err != nil {
		return false, apperrors.InternalError("count tags", err)
	}

	current := candidate
	for steps := int64(0); current.ParentID != nil; steps++ {
		if steps > bound {
			return false, apperrors.InternalError("cycle check",
				fmt.Errorf("ancestor walk from %s exceeded %d steps", candidate.ID, bound))
		}
		parent, err := s.tagRepo.GetByID(ctx, tx, *current.ParentID)
		if err != nil {
			return false, apperrors.InternalError("load ancestor", err)
		}
		if parent == nil {
			return false, nil
		}
		if parent.ID == tagID {
			return true, nil
		}
		current = parent
	}
	return false, nil
}

func (s *hierarchyService) Move(ctx context.Context, tx *gorm.DB, actorID, tagID uuid.UUID, newParentID *uuid.UUID) (*types.Tag, error) {
	if err := s.perms.RequireApprove(ctx, tx, actorID); err != nil {
		return nil, err
	}
	if newParentID != nil && *newParentID == tagID {
		return nil, apperrors.ValidationError("a tag cannot be its own parent")
	}

	unlock := s.lockTags(tagID)
	defer unlock()

	var moved *types.Tag
	var oldData map[string]any
	err := s.inTransaction(ctx, tx, func(tx *gorm.DB) error {
		tag, err := s.tagRepo.GetByID(ctx, tx, tagID)
		if err != nil {
			return apperrors.InternalError("load tag", err)
		}
		if tag == nil || tag.Status == types.TagStatusDeleted {
			return apperrors.NotFoundError("tag not found")
		}
		if tag.Status == types.TagStatusMerged {
			return apperrors.ConflictError("merged tags cannot be moved")
		}
		if tag.IsSystem {
			return apperrors.PermissionError("system tags cannot be moved")
		}

		var newParent *types.Tag
		if newParentID != nil {
			newParent, err = s.tagRepo.GetActiveByID(ctx, tx, *newParentID)
			if err != nil {
				return apperrors.InternalError("load new parent", err)
			}
			if newParent == nil {
				return apperrors.NotFoundError("new parent tag not found")
			}
			cyclic, err := s.wouldCycle(ctx, tx, newParent, tagID)
			if err != nil {
				return err
			}
			if cyclic {
				return apperrors.ValidationError("move would create a cycle")
			}
		}

		oldData = map[string]any{
			"parent_id": uuidOrNil(tag.ParentID),
			"level":     tag.Level,
			"path":      tag.Path,
		}

		tag.ParentID = newParentID
		s.resolver.Recompute(tag, newParent)
		tag.UpdatedAt = time.Now()
		if err := s.tagRepo.Update(ctx, tx, tag); err != nil {
			return apperrors.MapDBError("move tag", err)
		}
		if _, err := s.resolver.Cascade(ctx, tx, tag); err != nil {
			return err
		}
		moved = tag
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.graph != nil {
		if gerr := s.graph.UpsertTag(ctx, moved); gerr != nil {
			s.log.Warn("graph move failed", "tag_id", moved.ID, "error", gerr)
		}
	}
	s.history.Record(ctx, moved.ID, types.TagActionMove,
		fmt.Sprintf("moved %q", moved.Name), actorID, oldData, map[string]any{
			"parent_id": uuidOrNil(moved.ParentID),
			"level":     moved.Level,
			"path":      moved.Path,
		})
	s.invalidateReadCaches(ctx)

	s.log.Info("tag moved", "tag_id", moved.ID, "path", moved.Path)
	return moved, nil
}

func (s *hierarchyService) Merge(ctx context.Context, tx *gorm.DB, actorID, sourceID, targetID uuid.UUID) (*types.Tag, error) {
	if err := s.perms.RequireApprove(ctx, tx, actorID); err != nil {
		return nil, err
	}
	if sourceID == targetID {
		return nil, apperrors.ValidationError("cannot merge a tag into itself")
	}

	unlock := s.lockTags(sourceID, targetID)
	defer unlock()

	var target *types.Tag
	var sourceOld map[string]any
	err := s.inTransaction(ctx, tx, func(tx *gorm.DB) error {
		source, err := s.tagRepo.GetActiveByID(ctx, tx, sourceID)
		if err != nil {
			return apperrors.InternalError("load source tag", err)
		}
		if source == nil {
			return apperrors.NotFoundError("source tag not found")
		}
		target, err = s.tagRepo.GetActiveByID(ctx, tx, targetID)
		if err != nil {
			return apperrors.InternalError("load target tag", err)
		}
		if target == nil {
			return apperrors.NotFoundError("target tag not found")
		}
		if source.IsSystem {
			return apperrors.PermissionError("system tags cannot be merged away")
		}
		if !types.CanTransition(source.Status, types.TagStatusMerged) {
			return apperrors.ConflictError("source tag cannot be merged in its current state")
		}

		moved, err := s.entryTagRepo.ReassignTag(ctx, tx, sourceID, targetID)
		if err != nil {
			return apperrors.InternalError("reassign entry tags", err)
		}

		target.UsageCount += source.UsageCount
		target.RecomputePopularity()
		aliases := mergeAliases(target.AliasList(), source.AliasList())
		target.SetAliases(aliases)
		target.UpdatedAt = time.Now()
		if err := s.tagRepo.Update(ctx, tx, target); err != nil {
			return apperrors.MapDBError("update merge target", err)
		}

		sourceOld = source.Snapshot()
		source.Status = types.TagStatusMerged
		source.SetProperty(types.PropMergedTo, targetID.String())
		source.UpdatedAt = time.Now()
		if err := s.tagRepo.Update(ctx, tx, source); err != nil {
			return apperrors.MapDBError("update merge source", err)
		}

		s.log.Info("tags merged", "source_id", sourceID, "target_id", targetID, "entries_moved", moved)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.graph != nil {
		if gerr := s.graph.RecordMerge(ctx, sourceID, targetID); gerr != nil {
			s.log.Warn("graph merge failed", "source_id", sourceID, "error", gerr)
		}
	}
	s.history.Record(ctx, sourceID, types.TagActionMerge,
		fmt.Sprintf("merged into %q", target.Name), actorID, sourceOld,
		map[string]any{"merged_to": targetID.String()})
	s.invalidateReadCaches(ctx)
	return target, nil
}

func (s *hierarchyService) Delete(ctx context.Context, tx *gorm.DB, actorID, tagID uuid.UUID) error {
	unlock := s.lockTags(tagID)
	defer unlock()

	var oldData map[string]any
	var name string
	err := s.inTransaction(ctx, tx, func(tx *gorm.DB) error {
		tag, err := s.tagRepo.GetByID(ctx, tx, tagID)
		if err != nil {
			return apperrors.InternalError("load tag", err)
		}
		if tag == nil || tag.Status == types.TagStatusDeleted {
			return apperrors.NotFoundError("tag not found")
		}
		if tag.IsSystem {
			return apperrors.PermissionError("system tags cannot be deleted")
		}

		// Creators may delete their own tags; anyone else needs approval rights.
		if actorID == uuid.Nil || tag.CreatedBy != actorID {
			if err := s.perms.RequireApprove(ctx, tx, actorID); err != nil {
				return err
			}
		}

		if !types.CanTransition(tag.Status, types.TagStatusDeleted) {
			return apperrors.ConflictError("tag cannot be deleted in its current state")
		}

		children, err := s.tagRepo.CountChildren(ctx, tx, tagID, nil)
		if err != nil {
			return apperrors.InternalError("count children", err)
		}
		if children > 0 {
			return apperrors.ConflictError("tag still has child tags")
		}
		usage, err := s.entryTagRepo.CountByTagID(ctx, tx, tagID)
		if err != nil {
			return apperrors.InternalError("count tag usage", err)
		}
		if usage > 0 {
			return apperrors.ConflictError(fmt.Sprintf("tag is used by %d entries", usage))
		}

		oldData = tag.Snapshot()
		name = tag.Name
		tag.Status = types.TagStatusDeleted
		tag.UpdatedAt = time.Now()
		if err := s.tagRepo.Update(ctx, tx, tag); err != nil {
			return apperrors.MapDBError("delete tag", err)
		}
		if err := s.relationRepo.DeleteByTagID(ctx, tx, tagID); err != nil {
			return apperrors.InternalError("delete tag relations", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.graph != nil {
		if gerr := s.graph.RemoveTag(ctx, tagID); gerr != nil {
			s.log.Warn("graph remove failed", "tag_id", tagID, "error", gerr)
		}
	}
	s.history.Record(ctx, tagID, types.TagActionDelete,
		fmt.Sprintf("deleted %q", name), actorID, oldData,
		map[string]any{"status": types.TagStatusDeleted})
	s.invalidateReadCaches(ctx)
	return nil
}

func (s *hierarchyService) setStatus(ctx context.Context, tx *gorm.DB, actorID, tagID uuid.UUID, toStatus, action string) error {
	if err := s.perms.RequireEdit(ctx, tx, actorID); err != nil {
		return err
	}

	unlock := s.lockTags(tagID)
	defer unlock()

	var oldData, newData map[string]any
	err := s.inTransaction(ctx, tx, func(tx *gorm.DB) error {
		tag, err := s.tagRepo.GetByID(ctx, tx, tagID)
		if err != nil {
			return apperrors.InternalError("load tag", err)
		}
		if tag == nil || tag.Status == types.TagStatusDeleted {
			return apperrors.NotFoundError("tag not found")
		}
		if !types.CanTransition(tag.Status, toStatus) {
			return apperrors.ConflictError(fmt.Sprintf("cannot change status from %s to %s", tag.Status, toStatus))
		}

		oldData = map[string]any{"status": tag.Status}
		tag.Status = toStatus
		tag.UpdatedAt = time.Now()
		newData = map[string]any{"status": toStatus}
		if err := s.tagRepo.Update(ctx, tx, tag); err != nil {
			return apperrors.MapDBError("update tag status", err)
		}
		if s.graph != nil {
			if gerr := s.graph.UpsertTag(ctx, tag); gerr != nil {
				s.log.Warn("graph status sync failed", "tag_id", tagID, "error", gerr)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.history.Record(ctx, tagID, types.TagActionUpdate, action, actorID, oldData, newData)
	s.invalidateReadCaches(ctx)
	return nil
}

func (s *hierarchyService) Deprecate(ctx context.Context, tx *gorm.DB, actorID, tagID uuid.UUID) error {
	return s.setStatus(ctx, tx, actorID, tagID, types.TagStatusDeprecated, "deprecated")
}

func (s *hierarchyService) Restore(ctx context.Context, tx *gorm.DB, actorID, tagID uuid.UUID) error {
	return s.setStatus(ctx, tx, actorID, tagID, types.TagStatusActive, "restored")
}

// ValidateTags filters the given ids down to usable tags, following merge
// pointers to their targets, and bumps usage counters on the survivors.
// Unknown and deleted ids are dropped silently.
func (s *hierarchyService) ValidateTags(ctx context.Context, tx *gorm.DB, tagIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}

	var out []uuid.UUID
	err := s.inTransaction(ctx, tx, func(tx *gorm.DB) error {
		rows, err := s.tagRepo.GetByIDs(ctx, tx, tagIDs)
		if err != nil {
			return apperrors.InternalError("load tags", err)
		}

		seen := map[uuid.UUID]bool{}
		for _, tag := range rows {
			resolved := tag
			if tag.Status == types.TagStatusMerged {
				targetID := tag.MergedTo()
				if targetID == uuid.Nil {
					continue
				}
				resolved, err = s.tagRepo.GetActiveByID(ctx, tx, targetID)
				if err != nil {
					return apperrors.InternalError("resolve merged tag", err)
				}
				if resolved == nil {
					continue
				}
			}
			if resolved.Status == types.TagStatusDeleted || seen[resolved.ID] {
				continue
			}
			seen[resolved.ID] = true

			resolved.UsageCount++
			resolved.RecomputePopularity()
			if err := s.tagRepo.UpdateFields(ctx, tx, resolved.ID, map[string]interface{}{
				"usage_count":      resolved.UsageCount,
				"popularity_score": resolved.PopularityScore,
			}); err != nil {
				return apperrors.InternalError("bump tag usage", err)
			}
			out = append(out, resolved.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateReadCaches(ctx)
	return out, nil
}

func uuidOrNil(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func mergeAliases(a, b []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, alias := range list {
			alias = strings.TrimSpace(alias)
			if alias == "" || seen[alias] {
				continue
			}
			seen[alias] = true
			out = append(out, alias)
		}
	}
	return out
}
