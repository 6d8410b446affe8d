package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/atlaspedia/atlaspedia-backend/internal/types"
)

func PtrUUID(id uuid.UUID) *uuid.UUID { return &id }

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:            uuid.New(),
		Username:      username,
		Email:         username + "@example.com",
		CanCreateTags: true,
		CanEditTags:   true,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedTag(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, parent *types.Tag, createdBy uuid.UUID) *types.Tag {
	tb.Helper()
	tag := &types.Tag{
		ID:           uuid.New(),
		Name:         name,
		Status:       types.TagStatusActive,
		Category:     "general",
		Domain:       "general",
		QualityScore: 5.0,
		Path:         name,
		CreatedBy:    createdBy,
		Aliases:      datatypes.JSON([]byte("[]")),
		Properties:   datatypes.JSON([]byte("{}")),
	}
	if parent != nil {
		tag.ParentID = PtrUUID(parent.ID)
		tag.Level = parent.Level + 1
		tag.Path = parent.Path + "/" + name
	}
	if err := tx.WithContext(ctx).Create(tag).Error; err != nil {
		tb.Fatalf("seed tag %s: %v", name, err)
	}
	return tag
}

func SeedEntryTag(tb testing.TB, ctx context.Context, tx *gorm.DB, entryID, tagID, addedBy uuid.UUID) *types.EntryTag {
	tb.Helper()
	et := &types.EntryTag{
		ID:      uuid.New(),
		EntryID: entryID,
		TagID:   tagID,
		AddedBy: addedBy,
	}
	if err := tx.WithContext(ctx).Create(et).Error; err != nil {
		tb.Fatalf("seed entry tag: %v", err)
	}
	return et
}
