package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/atlaspedia/atlaspedia-backend/internal/http/response"
	"github.com/atlaspedia/atlaspedia-backend/internal/services"
)

type AdminHandler struct {
	seeder services.SeederService
}

func NewAdminHandler(seeder services.SeederService) *AdminHandler {
	return &AdminHandler{seeder: seeder}
}

// POST /admin/seed-taxonomy
// Idempotent: existing system tags are left alone.
func (h *AdminHandler) SeedTaxonomy(c *gin.Context) {
	created, err := h.seeder.Seed(c.Request.Context(), actorID(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"created": created})
}
