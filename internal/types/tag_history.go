package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TagHistory is the append-only audit record written for every mutating
// tag operation. Rows are never updated or deleted in normal operation.
type TagHistory struct {
	ID    uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TagID uuid.UUID `gorm:"type:uuid;not null;index:idx_tag_history_tag" json:"tag_id"`
	Tag   *Tag      `gorm:"constraint:OnDelete:CASCADE;foreignKey:TagID;references:ID" json:"tag,omitempty"`

	Action            string `gorm:"column:action;size:20;not null;index:idx_tag_history_action" json:"action"` // create|update|delete|move|merge
	ActionDescription string `gorm:"column:action_description;size:200" json:"action_description,omitempty"`

	OldData datatypes.JSON `gorm:"column:old_data;type:jsonb" json:"old_data,omitempty"`
	NewData datatypes.JSON `gorm:"column:new_data;type:jsonb" json:"new_data,omitempty"`
	Diff    datatypes.JSON `gorm:"column:diff;type:jsonb" json:"diff,omitempty"` // field → {old, new}

	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_tag_history_user" json:"user_id"`
	UserAgent string    `gorm:"column:user_agent;size:500" json:"user_agent,omitempty"`
	IPAddress string    `gorm:"column:ip_address;size:45" json:"ip_address,omitempty"`

	// Review fields for future moderation workflows; not enforced here.
	ReviewedBy    *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	ReviewStatus  string     `gorm:"column:review_status;size:20;not null;default:pending" json:"review_status"`
	ReviewComment string     `gorm:"column:review_comment" json:"review_comment,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index:idx_tag_history_created" json:"created_at"`
}

func (TagHistory) TableName() string { return "tag_history" }
