package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"gorm.io/gorm"
)

func TestKindAndStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		kind   string
		status int
	}{
		{name: "validation", err: ValidationError("empty name"), kind: "validation_error", status: http.StatusBadRequest},
		{name: "not_found", err: NotFoundError("parent missing"), kind: "not_found", status: http.StatusNotFound},
		{name: "permission", err: PermissionError("cannot delete"), kind: "permission_denied", status: http.StatusForbidden},
		{name: "conflict", err: ConflictError("has children"), kind: "conflict", status: http.StatusConflict},
		{name: "internal", err: InternalError("load tag", stderrors.New("boom")), kind: "internal_error", status: http.StatusInternalServerError},
		{name: "untagged", err: stderrors.New("plain"), kind: "", status: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Kind(tc.err); got != tc.kind {
				t.Fatalf("Kind=%q, want %q", got, tc.kind)
			}
			if got := HTTPStatus(tc.err); got != tc.status {
				t.Fatalf("HTTPStatus=%d, want %d", got, tc.status)
			}
		})
	}
}

func TestMapDBError(t *testing.T) {
	if err := MapDBError("get tag", gorm.ErrRecordNotFound); !stderrors.Is(err, ErrNotFound) {
		t.Fatalf("record-not-found should map to ErrNotFound, got %v", err)
	}
	if err := MapDBError("create tag", stderrors.New("connection reset")); !stderrors.Is(err, ErrInternal) {
		t.Fatalf("opaque db error should map to ErrInternal, got %v", err)
	}
	if MapDBError("noop", nil) != nil {
		t.Fatal("nil should stay nil")
	}
}
