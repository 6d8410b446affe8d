package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrValidation indicates caller input validation failure (bad shape,
	// empty name, name collision, cycle detected).
	ErrValidation = errors.New("validation")
	// ErrNotFound indicates a referenced tag or parent does not exist or
	// is not active.
	ErrNotFound = errors.New("not found")
	// ErrPermission indicates the actor lacks the required capability.
	ErrPermission = errors.New("permission denied")
	// ErrConflict indicates a structural precondition violation
	// (non-empty subtree, referenced by content).
	ErrConflict = errors.New("conflict")
	// ErrInternal indicates an unexpected storage-layer failure.
	ErrInternal = errors.New("internal")
)

// ValidationError tags an error as an input validation failure.
func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

// NotFoundError tags an error as a missing-resource failure.
func NotFoundError(msg string) error {
	return errors.Join(ErrNotFound, errors.New(strings.TrimSpace(msg)))
}

// PermissionError tags an error as a capability failure.
func PermissionError(msg string) error {
	return errors.Join(ErrPermission, errors.New(strings.TrimSpace(msg)))
}

// ConflictError tags an error as a structural precondition failure.
func ConflictError(msg string) error {
	return errors.Join(ErrConflict, errors.New(strings.TrimSpace(msg)))
}

// InternalError wraps an unexpected storage failure without exposing detail.
func InternalError(op string, err error) error {
	return errors.Join(ErrInternal, errors.New(op), err)
}

// Kind returns the stable machine-readable kind for an error, or "" when
// the error carries no taxonomy tag.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrPermission):
		return "permission_denied"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInternal):
		return "internal_error"
	default:
		return ""
	}
}

// HTTPStatus maps a tagged error to an HTTP status code. Untagged errors
// map to 500; translation beyond this lives in the handlers.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// MapDBError translates storage-layer failures into the taxonomy. Record
// misses become ErrNotFound, unique violations become ErrValidation, and
// anything else stays an opaque internal error.
func MapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Join(ErrNotFound, errors.New(op))
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return errors.Join(ErrValidation, errors.New(op+": duplicate"))
	}
	return InternalError(op, err)
}
