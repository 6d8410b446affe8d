package types

import (
	"time"

	"github.com/google/uuid"
)

// User is the minimal identity row the taxonomy needs: provenance for
// created_by/approved_by and the capability flags the permission provider
// answers from. Account management lives elsewhere.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Username string    `gorm:"column:username;size:80;not null;index:idx_user_username,unique" json:"username"`
	Email    string    `gorm:"column:email;size:120;not null;index:idx_user_email,unique" json:"email"`

	CanCreateTags    bool `gorm:"column:can_create_tags;not null;default:true" json:"can_create_tags"`
	CanEditTags      bool `gorm:"column:can_edit_tags;not null;default:true" json:"can_edit_tags"`
	CanApproveChange bool `gorm:"column:can_approve_change;not null;default:false" json:"can_approve_change"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string { return "app_user" }
