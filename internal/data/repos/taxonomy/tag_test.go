package taxonomy

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/atlaspedia/atlaspedia-backend/internal/data/repos/testutil"
	"github.com/atlaspedia/atlaspedia-backend/internal/types"
)

func TestTagRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewTagRepo(db, testutil.Logger(t))
	user := testutil.SeedUser(t, ctx, tx, "tagrepo")

	animal := testutil.SeedTag(t, ctx, tx, "Animal", nil, user.ID)
	cat := testutil.SeedTag(t, ctx, tx, "Cat", animal, user.ID)
	dog := testutil.SeedTag(t, ctx, tx, "Dog", animal, user.ID)

	if got, err := repo.GetByID(ctx, tx, cat.ID); err != nil || got == nil || got.Name != "Cat" {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByID(ctx, tx, uuid.New()); err != nil || got != nil {
		t.Fatalf("GetByID(missing): got=%v err=%v", got, err)
	}
	if got, err := repo.GetActiveByName(ctx, tx, "Animal"); err != nil || got == nil || got.ID != animal.ID {
		t.Fatalf("GetActiveByName: got=%v err=%v", got, err)
	}
	if exists, err := repo.ActiveNameExists(ctx, tx, "Dog"); err != nil || !exists {
		t.Fatalf("ActiveNameExists(Dog): exists=%v err=%v", exists, err)
	}
	if exists, err := repo.ActiveNameExists(ctx, tx, "Wolf"); err != nil || exists {
		t.Fatalf("ActiveNameExists(Wolf): exists=%v err=%v", exists, err)
	}

	if rows, err := repo.ListByParentIDs(ctx, tx, []uuid.UUID{animal.ID}, nil); err != nil || len(rows) != 2 {
		t.Fatalf("ListByParentIDs: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.ListRoots(ctx, tx, nil); err != nil || len(rows) == 0 {
		t.Fatalf("ListRoots: err=%v len=%d", err, len(rows))
	}
	if count, err := repo.CountChildren(ctx, tx, animal.ID, nil); err != nil || count != 2 {
		t.Fatalf("CountChildren: count=%d err=%v", count, err)
	}

	// Merged/deleted rows are invisible to reads; deprecated rows stay.
	if err := repo.UpdateFields(ctx, tx, dog.ID, map[string]interface{}{"status": types.TagStatusDeleted}); err != nil {
		t.Fatalf("UpdateFields(delete dog): %v", err)
	}
	if err := repo.UpdateFields(ctx, tx, cat.ID, map[string]interface{}{"status": types.TagStatusDeprecated}); err != nil {
		t.Fatalf("UpdateFields(deprecate cat): %v", err)
	}
	rows, err := repo.ListByParentIDs(ctx, tx, []uuid.UUID{animal.ID}, nil)
	if err != nil || len(rows) != 1 || rows[0].ID != cat.ID {
		t.Fatalf("ListByParentIDs after status flips: err=%v len=%d", err, len(rows))
	}
	if got, err := repo.GetActiveByName(ctx, tx, "Cat"); err != nil || got != nil {
		t.Fatalf("deprecated tag should not resolve as active by name: got=%v err=%v", got, err)
	}
}

func TestTagRepoSearchOrdering(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewTagRepo(db, testutil.Logger(t))
	user := testutil.SeedUser(t, ctx, tx, "searchrepo")

	cat := testutil.SeedTag(t, ctx, tx, "Cat", nil, user.ID)
	catfish := testutil.SeedTag(t, ctx, tx, "Catfish", nil, user.ID)
	category := testutil.SeedTag(t, ctx, tx, "Category", nil, user.ID)
	testutil.SeedTag(t, ctx, tx, "Dog", nil, user.ID)

	// Tied usage counts: name ASC decides.
	rows, err := repo.Search(ctx, tx, "cat", "", "", 5)
	if err != nil || len(rows) != 3 {
		t.Fatalf("Search(cat): err=%v len=%d", err, len(rows))
	}
	if rows[0].ID != cat.ID || rows[1].ID != catfish.ID || rows[2].ID != category.ID {
		t.Fatalf("Search tie-break order: got %s, %s, %s", rows[0].Name, rows[1].Name, rows[2].Name)
	}

	// Usage dominates name ordering.
	if err := repo.UpdateFields(ctx, tx, category.ID, map[string]interface{}{"usage_count": 10}); err != nil {
		t.Fatalf("bump usage: %v", err)
	}
	rows, err = repo.Search(ctx, tx, "cat", "", "", 5)
	if err != nil || len(rows) != 3 || rows[0].ID != category.ID {
		t.Fatalf("Search after usage bump: err=%v first=%v", err, rows[0].Name)
	}

	// Alias substring matches too.
	cat.SetAliases([]string{"feline"})
	if err := repo.Update(ctx, tx, cat); err != nil {
		t.Fatalf("set alias: %v", err)
	}
	rows, err = repo.Search(ctx, tx, "feline", "", "", 5)
	if err != nil || len(rows) != 1 || rows[0].ID != cat.ID {
		t.Fatalf("Search by alias: err=%v len=%d", err, len(rows))
	}
}

func TestTagRepoSuggestAndPopular(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewTagRepo(db, testutil.Logger(t))
	user := testutil.SeedUser(t, ctx, tx, "suggestrepo")

	cat := testutil.SeedTag(t, ctx, tx, "Cat", nil, user.ID)
	testutil.SeedTag(t, ctx, tx, "Catfish", nil, user.ID)
	bobcat := testutil.SeedTag(t, ctx, tx, "Bobcat", nil, user.ID)

	rows, err := repo.SuggestByPrefix(ctx, tx, "Cat", 10)
	if err != nil || len(rows) != 2 {
		t.Fatalf("SuggestByPrefix: err=%v len=%d", err, len(rows))
	}
	for _, row := range rows {
		if row.ID == bobcat.ID {
			t.Fatal("prefix suggestion must not match mid-name")
		}
	}

	if err := repo.UpdateFields(ctx, tx, cat.ID, map[string]interface{}{"usage_count": 7, "popularity_score": 0.7}); err != nil {
		t.Fatalf("bump cat: %v", err)
	}
	pop, err := repo.Popular(ctx, tx, "", 2)
	if err != nil || len(pop) != 2 || pop[0].ID != cat.ID {
		t.Fatalf("Popular: err=%v len=%d", err, len(pop))
	}

	counts, err := repo.CountByCategory(ctx, tx)
	if err != nil || len(counts) == 0 {
		t.Fatalf("CountByCategory: err=%v len=%d", err, len(counts))
	}
}
