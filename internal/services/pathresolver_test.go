package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/atlaspedia/atlaspedia-backend/internal/types"
)

func TestRecompute(t *testing.T) {
	resolver := NewPathResolver(nil, testLogger(t), newFakeTagRepo())

	root := &types.Tag{Name: "Life"}
	resolver.Recompute(root, nil)
	if root.Level != 0 || root.Path != "Life" {
		t.Fatalf("unexpected root placement: level=%d path=%q", root.Level, root.Path)
	}

	child := &types.Tag{Name: "Animals"}
	resolver.Recompute(child, root)
	if child.Level != 1 || child.Path != "Life/Animals" {
		t.Fatalf("unexpected child placement: level=%d path=%q", child.Level, child.Path)
	}
}

func TestCascade(t *testing.T) {
	ctx := context.Background()
	life := &types.Tag{ID: uuid.New(), Name: "Life", Level: 0, Path: "Life"}
	animals := &types.Tag{ID: uuid.New(), Name: "Animals", ParentID: &life.ID, Level: 1, Path: "Life/Animals"}
	mammals := &types.Tag{ID: uuid.New(), Name: "Mammals", ParentID: &animals.ID, Level: 2, Path: "Life/Animals/Mammals"}
	repo := newFakeTagRepo(life, animals, mammals)
	resolver := NewPathResolver(nil, testLogger(t), repo)

	// Simulate a rename of the root and push it down the tree.
	life.Name = "Nature"
	resolver.Recompute(life, nil)
	_ = repo.Update(ctx, testTx, life)

	updated, err := resolver.Cascade(ctx, testTx, life)
	if err != nil {
		t.Fatalf("Cascade: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected 2 rows rewritten, got %d", updated)
	}

	reloaded, _ := repo.GetByID(ctx, testTx, mammals.ID)
	if reloaded.Path != "Nature/Animals/Mammals" || reloaded.Level != 2 {
		t.Fatalf("unexpected cascaded placement: level=%d path=%q", reloaded.Level, reloaded.Path)
	}
}

func TestCascadeRequiresRoot(t *testing.T) {
	resolver := NewPathResolver(nil, testLogger(t), newFakeTagRepo())
	if _, err := resolver.Cascade(context.Background(), testTx, nil); err == nil {
		t.Fatal("expected error for nil root")
	}
	if _, err := resolver.Cascade(context.Background(), testTx, &types.Tag{}); err == nil {
		t.Fatal("expected error for unsaved root")
	}
}
