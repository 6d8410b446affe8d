package services

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/atlaspedia/atlaspedia-backend/internal/data/repos/taxonomy"
	apperrors "github.com/atlaspedia/atlaspedia-backend/internal/pkg/errors"
	"github.com/atlaspedia/atlaspedia-backend/internal/pkg/logger"
	"github.com/atlaspedia/atlaspedia-backend/internal/requestdata"
	"github.com/atlaspedia/atlaspedia-backend/internal/types"
)

// HistoryService appends the audit trail for tag mutations. Record is
// deliberately best-effort: a failed history write is logged, never
// propagated, so an audit hiccup cannot roll back or fail the mutation
// it describes.
type HistoryService interface {
	Record(ctx context.Context, tagID uuid.UUID, action, description string, actorID uuid.UUID, oldData, newData map[string]any)
	ListByTag(ctx context.Context, tx *gorm.DB, tagID uuid.UUID, limit int) ([]*types.TagHistory, error)
}

type historyService struct {
	db          *gorm.DB
	log         *logger.Logger
	historyRepo taxonomy.TagHistoryRepo
}

func NewHistoryService(db *gorm.DB, baseLog *logger.Logger, historyRepo taxonomy.TagHistoryRepo) HistoryService {
	return &historyService{
		db:          db,
		log:         baseLog.With("service", "HistoryService"),
		historyRepo: historyRepo,
	}
}

// computeDiff returns field → {old, new} for every key whose value
// changed between the two snapshots. Keys present on only one side
// diff against nil.
func computeDiff(oldData, newData map[string]any) map[string]map[string]any {
	diff := map[string]map[string]any{}
	for key, oldVal := range oldData {
		newVal, ok := newData[key]
		if !ok {
			diff[key] = map[string]any{"old": oldVal, "new": nil}
			continue
		}
		if !reflect.DeepEqual(oldVal, newVal) {
			diff[key] = map[string]any{"old": oldVal, "new": newVal}
		}
	}
	for key, newVal := range newData {
		if _, ok := oldData[key]; !ok {
			diff[key] = map[string]any{"old": nil, "new": newVal}
		}
	}
	return diff
}

func marshalJSONB(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func (s *historyService) Record(ctx context.Context, tagID uuid.UUID, action, description string, actorID uuid.UUID, oldData, newData map[string]any) {
	if tagID == uuid.Nil || action == "" {
		return
	}

	row := &types.TagHistory{
		TagID:             tagID,
		Action:            action,
		ActionDescription: description,
		UserID:            actorID,
		OldData:           marshalJSONB(oldData),
		NewData:           marshalJSONB(newData),
	}
	if oldData != nil || newData != nil {
		if diff := computeDiff(oldData, newData); len(diff) > 0 {
			row.Diff = marshalJSONB(diff)
		}
	}
	if rd := requestdata.GetRequestData(ctx); rd != nil {
		row.UserAgent = rd.UserAgent
		row.IPAddress = rd.IP
	}

	// Written outside the caller's transaction on purpose.
	if err := s.historyRepo.Create(ctx, nil, row); err != nil {
		s.log.Error("history write failed", "tag_id", tagID, "action", action, "error", err)
	}
}

func (s *historyService) ListByTag(ctx context.Context, tx *gorm.DB, tagID uuid.UUID, limit int) ([]*types.TagHistory, error) {
	if tagID == uuid.Nil {
		return nil, apperrors.ValidationError("tag id required")
	}
	rows, err := s.historyRepo.ListByTag(ctx, tx, tagID, limit)
	if err != nil {
		return nil, apperrors.InternalError("list tag history", err)
	}
	return rows, nil
}
