package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atlaspedia/atlaspedia-backend/internal/http/response"
	apperrors "github.com/atlaspedia/atlaspedia-backend/internal/pkg/errors"
	"github.com/atlaspedia/atlaspedia-backend/internal/services"
)

// TreeHandler serves the read side: tree rendering, search, autocomplete
// and the popularity/recommendation lists.
type TreeHandler struct {
	query services.QueryService
}

func NewTreeHandler(query services.QueryService) *TreeHandler {
	return &TreeHandler{query: query}
}

// GET /tags/tree?root_id=&max_depth=&include_stats=
func (h *TreeHandler) GetTree(c *gin.Context) {
	var rootID *uuid.UUID
	if raw := c.Query("root_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, apperrors.ValidationError("invalid root_id"))
			return
		}
		rootID = &id
	}
	roots, err := h.query.GetTree(c.Request.Context(), nil, rootID, intQuery(c, "max_depth", -1), boolQuery(c, "include_stats"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tree": roots})
}

// GET /tags/search?keyword=&category=&domain=&limit=
func (h *TreeHandler) Search(c *gin.Context) {
	rows, err := h.query.Search(c.Request.Context(), nil,
		c.Query("keyword"), c.Query("category"), c.Query("domain"), intQuery(c, "limit", 0))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tags": rows})
}

// GET /tags/suggestions?q=&limit=
func (h *TreeHandler) Suggestions(c *gin.Context) {
	partial := c.Query("q")
	if partial == "" {
		response.RespondOK(c, gin.H{"suggestions": []any{}})
		return
	}
	rows, err := h.query.Suggestions(c.Request.Context(), nil, partial, intQuery(c, "limit", 10))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"suggestions": rows})
}

// GET /tags/popular?category=&limit=
func (h *TreeHandler) Popular(c *gin.Context) {
	rows, err := h.query.Popular(c.Request.Context(), nil, c.Query("category"), intQuery(c, "limit", 0))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tags": rows})
}

// GET /tags/categories
func (h *TreeHandler) Categories(c *gin.Context) {
	rows, err := h.query.Categories(c.Request.Context(), nil)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"categories": rows})
}

// POST /tags/recommended
// body: { "tag_ids": ["<uuid>", ...], "limit": 10 }
// Empty seeds fall back to the popular list.
func (h *TreeHandler) Recommended(c *gin.Context) {
	var req struct {
		TagIDs []uuid.UUID `json:"tag_ids"`
		Limit  int         `json:"limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apperrors.ValidationError(err.Error()))
		return
	}
	if len(req.TagIDs) == 0 {
		rows, err := h.query.Popular(c.Request.Context(), nil, "", req.Limit)
		if err != nil {
			response.RespondError(c, err)
			return
		}
		out := make([]services.RecommendedTag, 0, len(rows))
		for _, tag := range rows {
			out = append(out, services.RecommendedTag{Tag: tag, Score: tag.PopularityScore})
		}
		response.RespondOK(c, gin.H{"recommended": out})
		return
	}
	rows, err := h.query.Recommended(c.Request.Context(), nil, req.TagIDs, req.Limit)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"recommended": rows})
}
