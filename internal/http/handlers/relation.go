package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atlaspedia/atlaspedia-backend/internal/http/response"
	apperrors "github.com/atlaspedia/atlaspedia-backend/internal/pkg/errors"
	"github.com/atlaspedia/atlaspedia-backend/internal/services"
)

type RelationHandler struct {
	relations services.RelationService
}

func NewRelationHandler(relations services.RelationService) *RelationHandler {
	return &RelationHandler{relations: relations}
}

// POST /tag-relations
// body: { "from_tag_id": "...", "to_tag_id": "...", "relation_type": "related",
//         "strength": 0.8, "bidirectional": true, "description": "..." }
func (h *RelationHandler) Create(c *gin.Context) {
	var req struct {
		FromTagID     uuid.UUID `json:"from_tag_id"`
		ToTagID       uuid.UUID `json:"to_tag_id"`
		RelationType  string    `json:"relation_type"`
		Strength      float64   `json:"strength"`
		Bidirectional *bool     `json:"bidirectional"`
		Description   string    `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apperrors.ValidationError(err.Error()))
		return
	}
	rel, err := h.relations.Create(c.Request.Context(), nil, actorID(c), services.RelationInput{
		FromTagID:     req.FromTagID,
		ToTagID:       req.ToTagID,
		RelationType:  req.RelationType,
		Strength:      req.Strength,
		Bidirectional: req.Bidirectional,
		Description:   req.Description,
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"relation": rel})
}

// GET /tags/:id/relations
func (h *RelationHandler) ListForTag(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	rows, err := h.relations.ListForTag(c.Request.Context(), nil, id, intQuery(c, "limit", 50))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"relations": rows})
}
