package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	apperrors "github.com/atlaspedia/atlaspedia-backend/internal/pkg/errors"
	"github.com/atlaspedia/atlaspedia-backend/internal/types"
)

func newHierarchyFixture(t *testing.T, tags ...*types.Tag) (HierarchyService, *fakeTagRepo, *fakeEntryTagRepo, *fakeHistory) {
	t.Helper()
	log := testLogger(t)
	tagRepo := newFakeTagRepo(tags...)
	entryRepo := newFakeEntryTagRepo()
	relRepo := &fakeRelationRepo{}
	history := &fakeHistory{}
	resolver := NewPathResolver(nil, log, tagRepo)
	svc := NewHierarchyService(nil, log, tagRepo, entryRepo, relRepo, resolver, history, &fakePerms{}, nil, nil, nil)
	return svc, tagRepo, entryRepo, history
}

func seedTree(t *testing.T) (map[string]*types.Tag, *fakeTagRepo, HierarchyService, *fakeEntryTagRepo, *fakeHistory) {
	t.Helper()
	life := &types.Tag{ID: uuid.New(), Name: "Life", Level: 0, Path: "Life"}
	animals := &types.Tag{ID: uuid.New(), Name: "Animals", ParentID: &life.ID, Level: 1, Path: "Life/Animals"}
	mammals := &types.Tag{ID: uuid.New(), Name: "Mammals", ParentID: &animals.ID, Level: 2, Path: "Life/Animals/Mammals"}
	cats := &types.Tag{ID: uuid.New(), Name: "Cats", ParentID: &mammals.ID, Level: 3, Path: "Life/Animals/Mammals/Cats"}
	plants := &types.Tag{ID: uuid.New(), Name: "Plants", ParentID: &life.ID, Level: 1, Path: "Life/Plants"}

	svc, tagRepo, entryRepo, history := newHierarchyFixture(t, life, animals, mammals, cats, plants)
	byName := map[string]*types.Tag{
		"Life": life, "Animals": animals, "Mammals": mammals, "Cats": cats, "Plants": plants,
	}
	return byName, tagRepo, svc, entryRepo, history
}

func TestCreateTag(t *testing.T) {
	ctx := context.Background()
	tags, tagRepo, svc, _, history := seedTree(t)

	created, err := svc.Create(ctx, testTx, uuid.New(), CreateTagInput{
		Name:     "  Dogs  ",
		ParentID: &tags["Mammals"].ID,
		Aliases:  []string{"canine"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Name != "Dogs" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}
	if created.Level != 3 || created.Path != "Life/Animals/Mammals/Dogs" {
		t.Fatalf("unexpected placement: level=%d path=%q", created.Level, created.Path)
	}
	if created.Status != types.TagStatusActive {
		t.Fatalf("expected active status, got %q", created.Status)
	}
	if len(history.records) != 1 || history.records[0].Action != types.TagActionCreate {
		t.Fatalf("expected one create history record, got %+v", history.records)
	}

	if _, err := svc.Create(ctx, testTx, uuid.New(), CreateTagInput{Name: "Dogs"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error for duplicate name, got %v", err)
	}
	if _, err := svc.Create(ctx, testTx, uuid.New(), CreateTagInput{Name: "   "}); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
	if _, err := svc.Create(ctx, testTx, uuid.New(), CreateTagInput{Name: "A/B"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error for slash in name, got %v", err)
	}

	missing := uuid.New()
	if _, err := svc.Create(ctx, testTx, uuid.New(), CreateTagInput{Name: "Orphan", ParentID: &missing}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found for missing parent, got %v", err)
	}
	_ = tagRepo
}

func TestUpdateTagRenameCollision(t *testing.T) {
	ctx := context.Background()
	tags, _, svc, _, _ := seedTree(t)

	taken := "Plants"
	if _, err := svc.Update(ctx, testTx, uuid.New(), tags["Cats"].ID, UpdateTagInput{Name: &taken}); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error for rename to existing name, got %v", err)
	}

	fresh := "Felines"
	updated, err := svc.Update(ctx, testTx, uuid.New(), tags["Cats"].ID, UpdateTagInput{Name: &fresh})
	if err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if updated.Name != "Felines" || updated.Path != "Life/Animals/Mammals/Felines" {
		t.Fatalf("unexpected renamed tag: name=%q path=%q", updated.Name, updated.Path)
	}
}

func TestMoveTag(t *testing.T) {
	ctx := context.Background()
	tags, tagRepo, svc, _, _ := seedTree(t)
	actor := uuid.New()

	moved, err := svc.Move(ctx, testTx, actor, tags["Mammals"].ID, &tags["Plants"].ID)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if moved.Path != "Life/Plants/Mammals" || moved.Level != 2 {
		t.Fatalf("unexpected moved placement: level=%d path=%q", moved.Level, moved.Path)
	}

	cats, err := tagRepo.GetByID(ctx, testTx, tags["Cats"].ID)
	if err != nil || cats == nil {
		t.Fatalf("reload cats: %v", err)
	}
	if cats.Path != "Life/Plants/Mammals/Cats" || cats.Level != 3 {
		t.Fatalf("descendant paths not cascaded: level=%d path=%q", cats.Level, cats.Path)
	}
}

func TestMoveTagCycleRejected(t *testing.T) {
	ctx := context.Background()
	tags, _, svc, _, _ := seedTree(t)
	actor := uuid.New()

	// Cats is a descendant of Animals; Animals under Cats closes a loop.
	if _, err := svc.Move(ctx, testTx, actor, tags["Animals"].ID, &tags["Cats"].ID); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error for descendant move, got %v", err)
	}
	if _, err := svc.Move(ctx, testTx, actor, tags["Animals"].ID, &tags["Animals"].ID); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error for self parent, got %v", err)
	}
}

func TestMoveToRoot(t *testing.T) {
	ctx := context.Background()
	tags, _, svc, _, _ := seedTree(t)

	moved, err := svc.Move(ctx, testTx, uuid.New(), tags["Animals"].ID, nil)
	if err != nil {
		t.Fatalf("Move to root: %v", err)
	}
	if moved.ParentID != nil || moved.Level != 0 || moved.Path != "Animals" {
		t.Fatalf("unexpected root placement: %+v", moved)
	}
}

func TestMergeTags(t *testing.T) {
	ctx := context.Background()
	tags, tagRepo, svc, entryRepo, history := seedTree(t)
	actor := uuid.New()

	source := tags["Cats"]
	target := tags["Mammals"]
	source.UsageCount = 3
	source.SetAliases([]string{"felines", "kitties"})
	target.UsageCount = 7
	target.SetAliases([]string{"beasts", "felines"})
	_ = tagRepo.Update(ctx, testTx, source)
	_ = tagRepo.Update(ctx, testTx, target)
	entryRepo.counts[source.ID] = 3
	entryRepo.counts[target.ID] = 7

	merged, err := svc.Merge(ctx, testTx, actor, source.ID, target.ID)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.UsageCount != 10 {
		t.Fatalf("expected usage 10, got %d", merged.UsageCount)
	}
	if got := entryRepo.counts[target.ID]; got != 10 {
		t.Fatalf("expected 10 entry references on target, got %d", got)
	}

	aliases := map[string]bool{}
	for _, a := range merged.AliasList() {
		aliases[a] = true
	}
	if !aliases["felines"] || !aliases["kitties"] || !aliases["beasts"] || len(aliases) != 3 {
		t.Fatalf("unexpected alias union: %v", merged.AliasList())
	}

	reloaded, _ := tagRepo.GetByID(ctx, testTx, source.ID)
	if reloaded.Status != types.TagStatusMerged {
		t.Fatalf("expected merged status, got %q", reloaded.Status)
	}
	if reloaded.MergedTo() != target.ID {
		t.Fatalf("expected merged_to=%s, got %s", target.ID, reloaded.MergedTo())
	}

	found := false
	for _, rec := range history.records {
		if rec.TagID == source.ID && rec.Action == types.TagActionMerge {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected merge history record, got %+v", history.records)
	}

	// Terminal: a merged tag cannot be merged again.
	if _, err := svc.Merge(ctx, testTx, actor, source.ID, target.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found re-merging a merged tag, got %v", err)
	}
	if _, err := svc.Merge(ctx, testTx, actor, target.ID, target.ID); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error for self merge, got %v", err)
	}
}

func TestDeleteTag(t *testing.T) {
	ctx := context.Background()
	tags, tagRepo, svc, entryRepo, _ := seedTree(t)
	actor := uuid.New()

	if err := svc.Delete(ctx, testTx, actor, tags["Animals"].ID); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict deleting tag with children, got %v", err)
	}

	entryRepo.counts[tags["Cats"].ID] = 2
	if err := svc.Delete(ctx, testTx, actor, tags["Cats"].ID); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict deleting tag in use, got %v", err)
	}

	delete(entryRepo.counts, tags["Cats"].ID)
	if err := svc.Delete(ctx, testTx, actor, tags["Cats"].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	reloaded, _ := tagRepo.GetByID(ctx, testTx, tags["Cats"].ID)
	if reloaded.Status != types.TagStatusDeleted {
		t.Fatalf("expected deleted status, got %q", reloaded.Status)
	}

	if err := svc.Delete(ctx, testTx, actor, tags["Cats"].ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found deleting twice, got %v", err)
	}
}

func TestDeleteTagCreatorPolicy(t *testing.T) {
	ctx := context.Background()
	log := testLogger(t)
	creator := uuid.New()
	tag := &types.Tag{ID: uuid.New(), Name: "Sketches", Path: "Sketches", Status: types.TagStatusActive, CreatedBy: creator}
	tagRepo := newFakeTagRepo(tag)
	resolver := NewPathResolver(nil, log, tagRepo)
	perms := &fakePerms{denyEdit: true, denyApprove: true}
	svc := NewHierarchyService(nil, log, tagRepo, newFakeEntryTagRepo(), &fakeRelationRepo{}, resolver, &fakeHistory{}, perms, nil, nil, nil)

	// Anyone else needs approval rights.
	if err := svc.Delete(ctx, testTx, uuid.New(), tag.ID); err == nil {
		t.Fatalf("expected permission error for non-creator without approval rights")
	}

	// The creator may delete their own tag even without edit capability.
	if err := svc.Delete(ctx, testTx, creator, tag.ID); err != nil {
		t.Fatalf("creator delete failed: %v", err)
	}
	reloaded, _ := tagRepo.GetByID(ctx, testTx, tag.ID)
	if reloaded.Status != types.TagStatusDeleted {
		t.Fatalf("expected deleted status, got %q", reloaded.Status)
	}
}

func TestDeprecateRestore(t *testing.T) {
	ctx := context.Background()
	tags, tagRepo, svc, _, _ := seedTree(t)
	actor := uuid.New()

	if err := svc.Deprecate(ctx, testTx, actor, tags["Plants"].ID); err != nil {
		t.Fatalf("Deprecate: %v", err)
	}
	reloaded, _ := tagRepo.GetByID(ctx, testTx, tags["Plants"].ID)
	if reloaded.Status != types.TagStatusDeprecated {
		t.Fatalf("expected deprecated, got %q", reloaded.Status)
	}

	if err := svc.Restore(ctx, testTx, actor, tags["Plants"].ID); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	reloaded, _ = tagRepo.GetByID(ctx, testTx, tags["Plants"].ID)
	if reloaded.Status != types.TagStatusActive {
		t.Fatalf("expected active after restore, got %q", reloaded.Status)
	}
}

func TestValidateTags(t *testing.T) {
	ctx := context.Background()
	tags, tagRepo, svc, _, _ := seedTree(t)

	merged := &types.Tag{ID: uuid.New(), Name: "Felines", Status: types.TagStatusMerged}
	merged.SetProperty(types.PropMergedTo, tags["Cats"].ID.String())
	deleted := &types.Tag{ID: uuid.New(), Name: "Gone", Status: types.TagStatusDeleted}
	_, _ = tagRepo.Create(ctx, testTx, []*types.Tag{merged, deleted})

	out, err := svc.ValidateTags(ctx, testTx, []uuid.UUID{
		tags["Cats"].ID, merged.ID, deleted.ID, uuid.New(),
	})
	if err != nil {
		t.Fatalf("ValidateTags: %v", err)
	}
	if len(out) != 1 || out[0] != tags["Cats"].ID {
		t.Fatalf("expected only Cats to survive, got %v", out)
	}

	reloaded, _ := tagRepo.GetByID(ctx, testTx, tags["Cats"].ID)
	if reloaded.UsageCount != 1 {
		t.Fatalf("expected usage bump to 1, got %d", reloaded.UsageCount)
	}
	if reloaded.PopularityScore != 0.1 {
		t.Fatalf("expected popularity 0.1, got %v", reloaded.PopularityScore)
	}
}

func TestSystemTagProtection(t *testing.T) {
	ctx := context.Background()
	log := testLogger(t)
	system := &types.Tag{ID: uuid.New(), Name: "Existence Realm", IsSystem: true}
	other := &types.Tag{ID: uuid.New(), Name: "Other"}
	tagRepo := newFakeTagRepo(system, other)
	resolver := NewPathResolver(nil, log, tagRepo)
	svc := NewHierarchyService(nil, log, tagRepo, newFakeEntryTagRepo(), &fakeRelationRepo{}, resolver, &fakeHistory{}, &fakePerms{}, nil, nil, nil)

	if _, err := svc.Move(ctx, testTx, uuid.New(), system.ID, &other.ID); !errors.Is(err, apperrors.ErrPermission) {
		t.Fatalf("expected permission error moving system tag, got %v", err)
	}
	if _, err := svc.Merge(ctx, testTx, uuid.New(), system.ID, other.ID); !errors.Is(err, apperrors.ErrPermission) {
		t.Fatalf("expected permission error merging system tag, got %v", err)
	}
	if err := svc.Delete(ctx, testTx, uuid.New(), system.ID); !errors.Is(err, apperrors.ErrPermission) {
		t.Fatalf("expected permission error deleting system tag, got %v", err)
	}
}
