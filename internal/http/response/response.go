package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/atlaspedia/atlaspedia-backend/internal/pkg/errors"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError maps a tagged service error onto its HTTP status and a
// stable machine-readable code. Untagged errors come back as 500s.
func RespondError(c *gin.Context, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	code := apperrors.Kind(err)
	if code == "" {
		code = "internal_error"
	}
	c.JSON(apperrors.HTTPStatus(err), ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
