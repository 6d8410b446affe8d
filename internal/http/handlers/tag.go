package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atlaspedia/atlaspedia-backend/internal/http/response"
	apperrors "github.com/atlaspedia/atlaspedia-backend/internal/pkg/errors"
	"github.com/atlaspedia/atlaspedia-backend/internal/services"
	"github.com/atlaspedia/atlaspedia-backend/internal/types"
)

type TagHandler struct {
	hierarchy  services.HierarchyService
	query      services.QueryService
	classifier services.ClassifierService
}

func NewTagHandler(hierarchy services.HierarchyService, query services.QueryService, classifier services.ClassifierService) *TagHandler {
	return &TagHandler{
		hierarchy:  hierarchy,
		query:      query,
		classifier: classifier,
	}
}

// POST /tags
func (h *TagHandler) Create(c *gin.Context) {
	var req struct {
		Name        string                    `json:"name"`
		NameAlt     string                    `json:"name_alt"`
		Description string                    `json:"description"`
		ParentID    *uuid.UUID                `json:"parent_id"`
		Category    string                    `json:"category"`
		Domain      string                    `json:"domain"`
		IsAbstract  bool                      `json:"is_abstract"`
		Aliases     []string                  `json:"aliases"`
		Properties  map[string]any            `json:"properties"`
		AutoPlace   bool                      `json:"auto_place"`
		Recognition *types.RecognitionContext `json:"recognition"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apperrors.ValidationError(err.Error()))
		return
	}
	tag, err := h.hierarchy.Create(c.Request.Context(), nil, actorID(c), services.CreateTagInput{
		Name:        req.Name,
		NameAlt:     req.NameAlt,
		Description: req.Description,
		ParentID:    req.ParentID,
		Category:    req.Category,
		Domain:      req.Domain,
		IsAbstract:  req.IsAbstract,
		Aliases:     req.Aliases,
		Properties:  req.Properties,
		AutoPlace:   req.AutoPlace,
		Recognition: req.Recognition,
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"tag": tag})
}

// GET /tags/:id
func (h *TagHandler) Get(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	tag, err := h.query.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tag": tag})
}

// PATCH /tags/:id
func (h *TagHandler) Update(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var req struct {
		Name        *string  `json:"name"`
		NameAlt     *string  `json:"name_alt"`
		Description *string  `json:"description"`
		Category    *string  `json:"category"`
		Aliases     []string `json:"aliases"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apperrors.ValidationError(err.Error()))
		return
	}
	tag, err := h.hierarchy.Update(c.Request.Context(), nil, actorID(c), id, services.UpdateTagInput{
		Name:        req.Name,
		NameAlt:     req.NameAlt,
		Description: req.Description,
		Category:    req.Category,
		Aliases:     req.Aliases,
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tag": tag})
}

// POST /tags/:id/move
// body: { "parent_id": "<uuid>" } (null moves to root)
func (h *TagHandler) Move(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var req struct {
		ParentID *uuid.UUID `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apperrors.ValidationError(err.Error()))
		return
	}
	tag, err := h.hierarchy.Move(c.Request.Context(), nil, actorID(c), id, req.ParentID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tag": tag})
}

// POST /tags/merge
// body: { "source_id": "<uuid>", "target_id": "<uuid>" }
func (h *TagHandler) Merge(c *gin.Context) {
	var req struct {
		SourceID uuid.UUID `json:"source_id"`
		TargetID uuid.UUID `json:"target_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apperrors.ValidationError(err.Error()))
		return
	}
	target, err := h.hierarchy.Merge(c.Request.Context(), nil, actorID(c), req.SourceID, req.TargetID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tag": target})
}

// DELETE /tags/:id
func (h *TagHandler) Delete(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if err := h.hierarchy.Delete(c.Request.Context(), nil, actorID(c), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /tags/:id/deprecate
func (h *TagHandler) Deprecate(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if err := h.hierarchy.Deprecate(c.Request.Context(), nil, actorID(c), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /tags/:id/restore
func (h *TagHandler) Restore(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if err := h.hierarchy.Restore(c.Request.Context(), nil, actorID(c), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /tags/validate
// body: { "tag_ids": ["<uuid>", ...] }
// Filters out deleted ids, resolves merged ones to their targets and
// bumps usage counters. Called by the entries service when content is
// tagged.
func (h *TagHandler) Validate(c *gin.Context) {
	var req struct {
		TagIDs []uuid.UUID `json:"tag_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apperrors.ValidationError(err.Error()))
		return
	}
	ids, err := h.hierarchy.ValidateTags(c.Request.Context(), nil, req.TagIDs)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tag_ids": ids})
}

// GET /tags/:id/history
func (h *TagHandler) History(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	rows, err := h.query.History(c.Request.Context(), nil, id, intQuery(c, "limit", 50))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"history": rows})
}

// GET /tags/similar?name=...
func (h *TagHandler) Similar(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		response.RespondError(c, apperrors.ValidationError("name is required"))
		return
	}
	rows, err := h.classifier.SimilarTags(c.Request.Context(), nil, name, intQuery(c, "limit", 5))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"similar": rows})
}

// POST /tags/classify
// body: { "name": "...", "description": "...", "recognition": {...} }
// Returns the scored parent candidates without creating anything.
func (h *TagHandler) Classify(c *gin.Context) {
	var req struct {
		Name        string                    `json:"name"`
		Description string                    `json:"description"`
		Recognition *types.RecognitionContext `json:"recognition"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apperrors.ValidationError(err.Error()))
		return
	}
	if req.Name == "" && req.Recognition == nil {
		response.RespondError(c, apperrors.ValidationError("name or recognition context required"))
		return
	}
	suggestions, err := h.classifier.SuggestParents(c.Request.Context(), nil, req.Name, req.Description, req.Recognition)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"suggestions": suggestions})
}

// RecognitionHandler exposes the image annotation adapter.
type RecognitionHandler struct {
	recognition services.RecognitionService
}

func NewRecognitionHandler(recognition services.RecognitionService) *RecognitionHandler {
	return &RecognitionHandler{recognition: recognition}
}

// POST /tags/recognize (multipart/form-data, field "image")
func (h *RecognitionHandler) Recognize(c *gin.Context) {
	const maxBytes = 10 << 20

	fh, err := c.FormFile("image")
	if err != nil {
		response.RespondError(c, apperrors.ValidationError("missing image file"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, apperrors.ValidationError("unreadable image file"))
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		response.RespondError(c, apperrors.ValidationError("unreadable image file"))
		return
	}
	if len(raw) > maxBytes {
		response.RespondError(c, apperrors.ValidationError("image exceeds 10MB"))
		return
	}

	rc, err := h.recognition.Recognize(c.Request.Context(), raw)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"recognition": rc})
}
