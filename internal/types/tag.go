package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Tag lifecycle statuses. Merged and deleted are terminal.
const (
	TagStatusActive     = "active"
	TagStatusDeprecated = "deprecated"
	TagStatusMerged     = "merged"
	TagStatusDeleted    = "deleted"
)

// History actions recorded for each structural mutation.
const (
	TagActionCreate = "create"
	TagActionUpdate = "update"
	TagActionDelete = "delete"
	TagActionMove   = "move"
	TagActionMerge  = "merge"
)

// MaxTagNameLength bounds tag names at create/rename.
const MaxTagNameLength = 100

// PropMergedTo is the properties key pointing a merged tag at its target.
const PropMergedTo = "merged_to"

type Tag struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	Name        string `gorm:"column:name;size:100;not null;index:idx_tag_name" json:"name"`
	NameAlt     string `gorm:"column:name_alt;size:100;index:idx_tag_name_alt" json:"name_alt,omitempty"`
	Description string `gorm:"column:description" json:"description"`

	// Adjacency list: ParentID is the source of truth for the hierarchy.
	// Level and Path are derived caches, recomputed on structural change.
	ParentID *uuid.UUID `gorm:"type:uuid;index:idx_tag_parent" json:"parent_id,omitempty"`
	Parent   *Tag       `gorm:"constraint:OnDelete:SET NULL;foreignKey:ParentID;references:ID" json:"parent,omitempty"`
	Level    int        `gorm:"column:level;not null;default:0;index:idx_tag_level" json:"level"`
	Path     string     `gorm:"column:path;size:1000;index:idx_tag_path" json:"path"`

	Category   string `gorm:"column:category;size:50;not null;default:general;index:idx_tag_category" json:"category"`
	Domain     string `gorm:"column:domain;size:50;not null;default:general" json:"domain"`
	IsAbstract bool   `gorm:"column:is_abstract;not null;default:false" json:"is_abstract"`
	IsSystem   bool   `gorm:"column:is_system;not null;default:false" json:"is_system"`
	Status     string `gorm:"column:status;size:20;not null;default:active;index:idx_tag_status" json:"status"`

	QualityScore    float64 `gorm:"column:quality_score;not null;default:5.0" json:"quality_score"`
	UsageCount      int     `gorm:"column:usage_count;not null;default:0;index:idx_tag_usage" json:"usage_count"`
	PopularityScore float64 `gorm:"column:popularity_score;not null;default:0" json:"popularity_score"`

	Aliases                datatypes.JSON `gorm:"column:aliases;type:jsonb" json:"aliases"`                   // []string
	RelatedTags            datatypes.JSON `gorm:"column:related_tags;type:jsonb" json:"related_tags"`        // []uuid
	ExternalLinks          datatypes.JSON `gorm:"column:external_links;type:jsonb" json:"external_links"`    // map[name]url
	Properties             datatypes.JSON `gorm:"column:properties;type:jsonb" json:"properties"`            // free-form bag
	ApplicableContentTypes datatypes.JSON `gorm:"column:applicable_content_types;type:jsonb" json:"applicable_content_types"` // []string

	CreatedBy  uuid.UUID  `gorm:"type:uuid;not null;index:idx_tag_created_by" json:"created_by"`
	ApprovedBy *uuid.UUID `gorm:"type:uuid" json:"approved_by,omitempty"`
	ApprovedAt *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Tag) TableName() string { return "tag" }

// CanTransition reports whether the status state machine allows from→to.
// active → {deprecated, merged, deleted}; deprecated → {active, merged,
// deleted}; merged and deleted are terminal.
func CanTransition(from, to string) bool {
	switch from {
	case TagStatusActive:
		return to == TagStatusDeprecated || to == TagStatusMerged || to == TagStatusDeleted
	case TagStatusDeprecated:
		return to == TagStatusActive || to == TagStatusMerged || to == TagStatusDeleted
	default:
		return false
	}
}

// AliasList decodes the aliases column. A missing or malformed column
// reads as empty.
func (t *Tag) AliasList() []string {
	var out []string
	if len(t.Aliases) == 0 {
		return out
	}
	_ = json.Unmarshal(t.Aliases, &out)
	return out
}

// SetAliases encodes aliases back onto the JSONB column.
func (t *Tag) SetAliases(aliases []string) {
	if aliases == nil {
		aliases = []string{}
	}
	raw, _ := json.Marshal(aliases)
	t.Aliases = datatypes.JSON(raw)
}

// PropertyMap decodes the free-form properties bag.
func (t *Tag) PropertyMap() map[string]any {
	out := map[string]any{}
	if len(t.Properties) == 0 {
		return out
	}
	_ = json.Unmarshal(t.Properties, &out)
	return out
}

// SetProperty writes one key into the properties bag.
func (t *Tag) SetProperty(key string, value any) {
	props := t.PropertyMap()
	props[key] = value
	raw, _ := json.Marshal(props)
	t.Properties = datatypes.JSON(raw)
}

// MergedTo returns the target id recorded on a merged tag, or uuid.Nil.
func (t *Tag) MergedTo() uuid.UUID {
	v, ok := t.PropertyMap()[PropMergedTo]
	if !ok {
		return uuid.Nil
	}
	s, ok := v.(string)
	if !ok {
		return uuid.Nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// RecomputePopularity derives popularity_score from usage_count.
func (t *Tag) RecomputePopularity() {
	t.PopularityScore = float64(t.UsageCount) * 0.1
}

// Snapshot flattens the fields history payloads care about into a map,
// so diffs stay field-level rather than whole-struct.
func (t *Tag) Snapshot() map[string]any {
	snap := map[string]any{
		"name":        t.Name,
		"name_alt":    t.NameAlt,
		"description": t.Description,
		"level":       t.Level,
		"path":        t.Path,
		"category":    t.Category,
		"domain":      t.Domain,
		"status":      t.Status,
		"usage_count": t.UsageCount,
	}
	if t.ParentID != nil {
		snap["parent_id"] = t.ParentID.String()
	} else {
		snap["parent_id"] = nil
	}
	if aliases := t.AliasList(); len(aliases) > 0 {
		snap["aliases"] = aliases
	}
	return snap
}
