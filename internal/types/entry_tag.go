package types

import (
	"time"

	"github.com/google/uuid"
)

// EntryTag links a content entry to a tag. The taxonomy core reads it as
// the content-reference count behind delete's conflict check, and rewrites
// it during merge. Entry rows themselves live outside the core.
type EntryTag struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EntryID uuid.UUID `gorm:"type:uuid;not null;index:idx_entry_tag,unique,priority:1" json:"entry_id"`
	TagID   uuid.UUID `gorm:"type:uuid;not null;index:idx_entry_tag,unique,priority:2;index:idx_entry_tag_tag" json:"tag_id"`
	Tag     *Tag      `gorm:"constraint:OnDelete:CASCADE;foreignKey:TagID;references:ID" json:"tag,omitempty"`

	AddedBy   uuid.UUID `gorm:"type:uuid;not null" json:"added_by"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (EntryTag) TableName() string { return "entry_tag" }
