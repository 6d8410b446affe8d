package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atlaspedia/atlaspedia-backend/internal/data/repos/taxonomy"
	apperrors "github.com/atlaspedia/atlaspedia-backend/internal/pkg/errors"
	"github.com/atlaspedia/atlaspedia-backend/internal/pkg/logger"
	"github.com/atlaspedia/atlaspedia-backend/internal/types"
)

var allowedRelationTypes = map[string]bool{
	types.RelationSynonym:    true,
	types.RelationAntonym:    true,
	types.RelationRelated:    true,
	types.RelationPartOf:     true,
	types.RelationInstanceOf: true,
}

type RelationInput struct {
	FromTagID     uuid.UUID
	ToTagID       uuid.UUID
	RelationType  string
	Strength      float64
	Bidirectional *bool
	Description   string
}

// RelationService manages the typed cross-links between tags that feed
// the recommendation signal.
type RelationService interface {
	Create(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, input RelationInput) (*types.TagRelation, error)
	ListForTag(ctx context.Context, tx *gorm.DB, tagID uuid.UUID, limit int) ([]*types.TagRelation, error)
}

type relationService struct {
	db           *gorm.DB
	log          *logger.Logger
	tagRepo      taxonomy.TagRepo
	relationRepo taxonomy.TagRelationRepo
	perms        PermissionService
}

func NewRelationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	tagRepo taxonomy.TagRepo,
	relationRepo taxonomy.TagRelationRepo,
	perms PermissionService,
) RelationService {
	return &relationService{
		db:           db,
		log:          baseLog.With("service", "RelationService"),
		tagRepo:      tagRepo,
		relationRepo: relationRepo,
		perms:        perms,
	}
}

func (s *relationService) Create(ctx context.Context, tx *gorm.DB, actorID uuid.UUID, input RelationInput) (*types.TagRelation, error) {
	if err := s.perms.RequireEdit(ctx, tx, actorID); err != nil {
		return nil, err
	}
	if input.FromTagID == uuid.Nil || input.ToTagID == uuid.Nil {
		return nil, apperrors.ValidationError("both tag ids are required")
	}
	if input.FromTagID == input.ToTagID {
		return nil, apperrors.ValidationError("a tag cannot relate to itself")
	}
	if !allowedRelationTypes[input.RelationType] {
		return nil, apperrors.ValidationError(fmt.Sprintf("unknown relation type %q", input.RelationType))
	}
	strength := input.Strength
	if strength == 0 {
		strength = 1.0
	}
	if strength < 0 || strength > 1 {
		return nil, apperrors.ValidationError("strength must be within [0, 1]")
	}

	for _, id := range []uuid.UUID{input.FromTagID, input.ToTagID} {
		tag, err := s.tagRepo.GetActiveByID(ctx, tx, id)
		if err != nil {
			return nil, apperrors.InternalError("load tag", err)
		}
		if tag == nil {
			return nil, apperrors.NotFoundError(fmt.Sprintf("tag %s not found", id))
		}
	}

	bidirectional := true
	if input.Bidirectional != nil {
		bidirectional = *input.Bidirectional
	}
	row := &types.TagRelation{
		ID:              uuid.New(),
		FromTagID:       input.FromTagID,
		ToTagID:         input.ToTagID,
		RelationType:    input.RelationType,
		Strength:        strength,
		IsBidirectional: bidirectional,
		Description:     input.Description,
		CreatedBy:       actorID,
		Status:          "active",
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if err := s.relationRepo.Create(ctx, tx, row); err != nil {
		return nil, apperrors.MapDBError("create tag relation", err)
	}
	return row, nil
}

func (s *relationService) ListForTag(ctx context.Context, tx *gorm.DB, tagID uuid.UUID, limit int) ([]*types.TagRelation, error) {
	if tagID == uuid.Nil {
		return nil, apperrors.ValidationError("tag id required")
	}
	rows, err := s.relationRepo.ListForTags(ctx, tx, []uuid.UUID{tagID}, limit)
	if err != nil {
		return nil, apperrors.InternalError("list tag relations", err)
	}
	return rows, nil
}
