package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/atlaspedia/atlaspedia-backend/internal/pkg/errors"
	"github.com/atlaspedia/atlaspedia-backend/internal/requestdata"
)

// actorID returns the authenticated user id, or uuid.Nil on public
// routes. The permission service rejects Nil actors on mutations.
func actorID(c *gin.Context) uuid.UUID {
	if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil {
		return rd.UserID
	}
	return uuid.Nil
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.ValidationError("invalid " + name)
	}
	return id, nil
}

func intQuery(c *gin.Context, name string, defaultVal int) int {
	raw := c.Query(name)
	if raw == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}
	return n
}

func boolQuery(c *gin.Context, name string) bool {
	v, _ := strconv.ParseBool(c.Query(name))
	return v
}
