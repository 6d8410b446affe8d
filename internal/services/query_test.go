package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/atlaspedia/atlaspedia-backend/internal/data/repos/taxonomy"
	apperrors "github.com/atlaspedia/atlaspedia-backend/internal/pkg/errors"
	"github.com/atlaspedia/atlaspedia-backend/internal/types"
)

func newQueryFixture(t *testing.T, entryRepo *fakeEntryTagRepo, relRepo *fakeRelationRepo, tags ...*types.Tag) (QueryService, *fakeTagRepo) {
	t.Helper()
	if entryRepo == nil {
		entryRepo = newFakeEntryTagRepo()
	}
	if relRepo == nil {
		relRepo = &fakeRelationRepo{}
	}
	tagRepo := newFakeTagRepo(tags...)
	svc := NewQueryService(nil, testLogger(t), tagRepo, entryRepo, relRepo, &fakeHistory{}, nil)
	return svc, tagRepo
}

func queryTestTree() []*types.Tag {
	life := &types.Tag{ID: uuid.New(), Name: "Life", Level: 0, Path: "Life"}
	animals := &types.Tag{ID: uuid.New(), Name: "Animals", ParentID: &life.ID, Level: 1, Path: "Life/Animals"}
	mammals := &types.Tag{ID: uuid.New(), Name: "Mammals", ParentID: &animals.ID, Level: 2, Path: "Life/Animals/Mammals"}
	cats := &types.Tag{ID: uuid.New(), Name: "Cats", ParentID: &mammals.ID, Level: 3, Path: "Life/Animals/Mammals/Cats"}
	plants := &types.Tag{ID: uuid.New(), Name: "Plants", ParentID: &life.ID, Level: 1, Path: "Life/Plants"}
	return []*types.Tag{life, animals, mammals, cats, plants}
}

func TestGetTreeDepthLimit(t *testing.T) {
	ctx := context.Background()
	tags := queryTestTree()
	svc, _ := newQueryFixture(t, nil, nil, tags...)

	roots, err := svc.GetTree(ctx, testTx, nil, 1, false)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if len(roots) != 1 || roots[0].Tag.Name != "Life" {
		t.Fatalf("expected single Life root, got %+v", roots)
	}
	if len(roots[0].Children) != 2 {
		t.Fatalf("expected 2 children at depth 1, got %d", len(roots[0].Children))
	}
	// Depth 1 renders children but not grandchildren.
	for _, child := range roots[0].Children {
		if len(child.Children) != 0 {
			t.Fatalf("expected no grandchildren at depth 1, got %d under %s", len(child.Children), child.Tag.Name)
		}
	}

	// Children come back name-ordered.
	if roots[0].Children[0].Tag.Name != "Animals" || roots[0].Children[1].Tag.Name != "Plants" {
		t.Fatalf("unexpected child order: %s, %s", roots[0].Children[0].Tag.Name, roots[0].Children[1].Tag.Name)
	}
}

func TestGetTreeZeroDepth(t *testing.T) {
	ctx := context.Background()
	tags := queryTestTree()
	svc, _ := newQueryFixture(t, nil, nil, tags...)

	// Depth 0 renders the requested node alone.
	roots, err := svc.GetTree(ctx, testTx, &tags[0].ID, 0, false)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if len(roots) != 1 || roots[0].Tag.Name != "Life" || len(roots[0].Children) != 0 {
		t.Fatalf("expected bare Life node, got %+v", roots)
	}

	// A negative depth falls back to the default and descends.
	roots, err = svc.GetTree(ctx, testTx, &tags[0].ID, -1, false)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if len(roots[0].Children) == 0 {
		t.Fatalf("expected default depth to render children")
	}
}

func TestGetTreeStats(t *testing.T) {
	ctx := context.Background()
	tags := queryTestTree()
	entryRepo := newFakeEntryTagRepo()
	entryRepo.counts[tags[3].ID] = 4 // Cats
	svc, tagRepo := newQueryFixture(t, entryRepo, nil, tags...)

	roots, err := svc.GetTree(ctx, testTx, &tags[0].ID, 1, true)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	root := roots[0]
	if root.Stats == nil {
		t.Fatal("expected stats on root")
	}
	// Life has 2 direct children and 4 descendants in total, even though
	// only one level is rendered.
	if root.Stats.ChildrenCount != 2 || root.Stats.TotalDescendants != 4 {
		t.Fatalf("unexpected root stats: %+v", root.Stats)
	}

	// Cats sits below the rendered depth, so its stale counter is not
	// refreshed by this call.
	cats, _ := tagRepo.GetByID(ctx, testTx, tags[3].ID)
	if cats.UsageCount != 0 {
		t.Fatalf("expected unrendered node untouched, got usage %d", cats.UsageCount)
	}

	// Render deep enough and the counter refreshes plus popularity.
	if _, err := svc.GetTree(ctx, testTx, &tags[0].ID, 5, true); err != nil {
		t.Fatalf("GetTree deep: %v", err)
	}
	cats, _ = tagRepo.GetByID(ctx, testTx, tags[3].ID)
	if cats.UsageCount != 4 {
		t.Fatalf("expected refreshed usage 4, got %d", cats.UsageCount)
	}
	if cats.PopularityScore != 0.4 {
		t.Fatalf("expected popularity 0.4, got %v", cats.PopularityScore)
	}
}

func TestGetTreeRootNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newQueryFixture(t, nil, nil, queryTestTree()...)

	missing := uuid.New()
	if _, err := svc.GetTree(ctx, testTx, &missing, 3, false); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetByIDResolvesMerge(t *testing.T) {
	ctx := context.Background()
	target := &types.Tag{ID: uuid.New(), Name: "Cats"}
	merged := &types.Tag{ID: uuid.New(), Name: "Felines", Status: types.TagStatusMerged}
	merged.SetProperty(types.PropMergedTo, target.ID.String())
	svc, _ := newQueryFixture(t, nil, nil, target, merged)

	got, err := svc.GetByID(ctx, testTx, merged.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ID != target.ID {
		t.Fatalf("expected merge target %s, got %s", target.ID, got.ID)
	}

	if _, err := svc.GetByID(ctx, testTx, uuid.New()); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	deleted := &types.Tag{ID: uuid.New(), Name: "Gone", Status: types.TagStatusDeleted}
	svc2, _ := newQueryFixture(t, nil, nil, deleted)
	if _, err := svc2.GetByID(ctx, testTx, deleted.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found for deleted, got %v", err)
	}
}

func TestRecommendedBlendsSignals(t *testing.T) {
	ctx := context.Background()
	seed := &types.Tag{ID: uuid.New(), Name: "Cats"}
	related := &types.Tag{ID: uuid.New(), Name: "Dogs"}
	coTagged := &types.Tag{ID: uuid.New(), Name: "Pets"}
	hidden := &types.Tag{ID: uuid.New(), Name: "Old", Status: types.TagStatusDeleted}

	relRepo := &fakeRelationRepo{rows: []*types.TagRelation{
		{FromTagID: seed.ID, ToTagID: related.ID, RelationType: types.RelationRelated, Strength: 0.9, IsBidirectional: true},
		{FromTagID: seed.ID, ToTagID: hidden.ID, RelationType: types.RelationRelated, Strength: 0.8, IsBidirectional: true},
	}}
	entryRepo := newFakeEntryTagRepo()
	entryRepo.co = []taxonomy.CoUsage{
		{TagID: coTagged.ID, Count: 6},
		{TagID: related.ID, Count: 3},
	}

	svc, _ := newQueryFixture(t, entryRepo, relRepo, seed, related, coTagged, hidden)
	out, err := svc.Recommended(ctx, testTx, []uuid.UUID{seed.ID}, 10)
	if err != nil {
		t.Fatalf("Recommended: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 recommendations, got %+v", out)
	}
	// Dogs keeps the stronger relation signal (0.9) over its co-usage
	// share; Pets gets the capped co-usage score 0.5.
	if out[0].Tag.Name != "Dogs" || out[0].Score != 0.9 {
		t.Fatalf("unexpected first recommendation: %+v", out[0])
	}
	if out[1].Tag.Name != "Pets" || out[1].Score != 0.5 {
		t.Fatalf("unexpected second recommendation: %+v", out[1])
	}

	if _, err := svc.Recommended(ctx, testTx, nil, 10); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error for empty seeds, got %v", err)
	}
}

func TestSuggestionsShape(t *testing.T) {
	ctx := context.Background()
	tags := queryTestTree()
	svc, _ := newQueryFixture(t, nil, nil, tags...)

	out, err := svc.Suggestions(ctx, testTx, "ca", 10)
	if err != nil {
		t.Fatalf("Suggestions: %v", err)
	}
	if len(out) != 1 || out[0].Name != "Cats" || out[0].Path != "Life/Animals/Mammals/Cats" {
		t.Fatalf("unexpected suggestions: %+v", out)
	}
}
