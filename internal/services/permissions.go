package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atlaspedia/atlaspedia-backend/internal/data/repos/taxonomy"
	apperrors "github.com/atlaspedia/atlaspedia-backend/internal/pkg/errors"
	"github.com/atlaspedia/atlaspedia-backend/internal/pkg/logger"
	"github.com/atlaspedia/atlaspedia-backend/internal/types"
)

// PermissionService answers capability checks for tag mutations from the
// user row. Structural operations (move, merge, delete, restore) require
// the approve capability; plain edits require edit.
type PermissionService interface {
	RequireCreate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
	RequireEdit(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
	RequireApprove(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type permissionService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo taxonomy.UserRepo
}

func NewPermissionService(db *gorm.DB, baseLog *logger.Logger, userRepo taxonomy.UserRepo) PermissionService {
	return &permissionService{
		db:       db,
		log:      baseLog.With("service", "PermissionService"),
		userRepo: userRepo,
	}
}

func (s *permissionService) load(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
	if userID == uuid.Nil {
		return nil, apperrors.PermissionError("authentication required")
	}
	user, err := s.userRepo.GetByID(ctx, tx, userID)
	if err != nil {
		return nil, apperrors.InternalError("load user", err)
	}
	if user == nil {
		return nil, apperrors.PermissionError("unknown user")
	}
	return user, nil
}

func (s *permissionService) RequireCreate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	user, err := s.load(ctx, tx, userID)
	if err != nil {
		return err
	}
	if !user.CanCreateTags {
		return apperrors.PermissionError("user may not create tags")
	}
	return nil
}

func (s *permissionService) RequireEdit(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	user, err := s.load(ctx, tx, userID)
	if err != nil {
		return err
	}
	if !user.CanEditTags {
		return apperrors.PermissionError("user may not edit tags")
	}
	return nil
}

func (s *permissionService) RequireApprove(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	user, err := s.load(ctx, tx, userID)
	if err != nil {
		return err
	}
	if !user.CanApproveChange {
		return apperrors.PermissionError("operation requires approval rights")
	}
	return nil
}
