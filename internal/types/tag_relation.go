package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Relation kinds for non-hierarchical typed edges between tags.
const (
	RelationSynonym    = "synonym"
	RelationAntonym    = "antonym"
	RelationRelated    = "related"
	RelationPartOf     = "part_of"
	RelationInstanceOf = "instance_of"
)

// TagRelation is a typed cross-link between two tags. Distinct from
// parent/child containment; used for recommendation signals only.
type TagRelation struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	FromTagID uuid.UUID `gorm:"type:uuid;not null;index:idx_tag_relation,unique,priority:1;index:idx_tag_relation_from" json:"from_tag_id"`
	FromTag   *Tag      `gorm:"constraint:OnDelete:CASCADE;foreignKey:FromTagID;references:ID" json:"from_tag,omitempty"`
	ToTagID   uuid.UUID `gorm:"type:uuid;not null;index:idx_tag_relation,unique,priority:2;index:idx_tag_relation_to" json:"to_tag_id"`
	ToTag     *Tag      `gorm:"constraint:OnDelete:CASCADE;foreignKey:ToTagID;references:ID" json:"to_tag,omitempty"`

	RelationType    string  `gorm:"column:relation_type;size:30;not null;index:idx_tag_relation,unique,priority:3" json:"relation_type"`
	Strength        float64 `gorm:"column:strength;not null;default:1.0" json:"strength"` // 0-1
	IsBidirectional bool    `gorm:"column:is_bidirectional;not null;default:true" json:"is_bidirectional"`

	Description string         `gorm:"column:description;size:200" json:"description,omitempty"`
	Properties  datatypes.JSON `gorm:"column:properties;type:jsonb" json:"properties,omitempty"`

	CreatedBy  uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`
	ApprovedBy *uuid.UUID `gorm:"type:uuid" json:"approved_by,omitempty"`
	Status     string     `gorm:"column:status;size:20;not null;default:active" json:"status"` // active|inactive|pending

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (TagRelation) TableName() string { return "tag_relation" }
