package services

import (
	"fmt"

	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atlaspedia/atlaspedia-backend/internal/data/repos/taxonomy"
	apperrors "github.com/atlaspedia/atlaspedia-backend/internal/pkg/errors"
	"github.com/atlaspedia/atlaspedia-backend/internal/pkg/logger"
	"github.com/atlaspedia/atlaspedia-backend/internal/types"
)

// PathResolver maintains the denormalized level and path columns. Parent
// links are the source of truth; level/path are caches recomputed here on
// every structural change and cascaded to descendants breadth-first.
type PathResolver interface {
	Recompute(tag *types.Tag, parent *types.Tag)
	Cascade(ctx context.Context, tx *gorm.DB, root *types.Tag) (int, error)
}

type pathResolver struct {
	db      *gorm.DB
	log     *logger.Logger
	tagRepo taxonomy.TagRepo
}

func NewPathResolver(db *gorm.DB, baseLog *logger.Logger, tagRepo taxonomy.TagRepo) PathResolver {
	return &pathResolver{
		db:      db,
		log:     baseLog.With("service", "PathResolver"),
		tagRepo: tagRepo,
	}
}

// Recompute sets level and path on the tag from its parent. A nil parent
// means the tag is a root: level 0, path equal to its own name.
func (p *pathResolver) Recompute(tag *types.Tag, parent *types.Tag) {
	if parent == nil {
		tag.Level = 0
		tag.Path = tag.Name
		return
	}
	tag.Level = parent.Level + 1
	tag.Path = parent.Path + "/" + tag.Name
}

// Cascade recomputes level and path for every descendant of root, walking
// the tree level by level. Returns the number of rows rewritten. The walk
// is bounded by the total tag count so a corrupted parent cycle cannot
// loop forever.
func (p *pathResolver) Cascade(ctx context.Context, tx *gorm.DB, root *types.Tag) (int, error) {
	if root == nil || root.ID == uuid.Nil {
		return 0, apperrors.ValidationError("cascade requires a persisted root tag")
	}

	bound, err := p.tagRepo.CountAll(ctx, tx)
	if err != nil {
		return 0, apperrors.InternalError("count tags", err)
	}

	byID := map[uuid.UUID]*types.Tag{root.ID: root}
	frontier := []*types.Tag{root}
	updated := 0

	for len(frontier) > 0 {
		if int64(updated) > bound {
			return updated, apperrors.InternalError("cascade",
				fmt.Errorf("visited more rows than exist under %s, parent links likely cyclic", root.ID))
		}

		ids := make([]uuid.UUID, 0, len(frontier))
		for _, t := range frontier {
			ids = append(ids, t.ID)
		}
		children, err := p.tagRepo.ListByParentIDs(ctx, tx, ids, nil)
		if err != nil {
			return updated, apperrors.InternalError("list children", err)
		}

		next := make([]*types.Tag, 0, len(children))
		for _, child := range children {
			if child.ParentID == nil {
				continue
			}
			parent, ok := byID[*child.ParentID]
			if !ok {
				continue
			}
			if _, seen := byID[child.ID]; seen {
				continue
			}

			p.Recompute(child, parent)
			if err := p.tagRepo.UpdateFields(ctx, tx, child.ID, map[string]interface{}{
				"level": child.Level,
				"path":  child.Path,
			}); err != nil {
				return updated, apperrors.InternalError("update child path", err)
			}
			updated++

			byID[child.ID] = child
			next = append(next, child)
		}
		frontier = next
	}

	if updated > 0 {
		p.log.Debug("cascaded path recompute", "root_id", root.ID, "updated", updated)
	}
	return updated, nil
}
