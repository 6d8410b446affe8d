package types

import (
	"testing"

	"github.com/google/uuid"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{TagStatusActive, TagStatusDeprecated, true},
		{TagStatusActive, TagStatusMerged, true},
		{TagStatusActive, TagStatusDeleted, true},
		{TagStatusActive, TagStatusActive, false},
		{TagStatusDeprecated, TagStatusActive, true},
		{TagStatusDeprecated, TagStatusMerged, true},
		{TagStatusDeprecated, TagStatusDeleted, true},
		{TagStatusMerged, TagStatusActive, false},
		{TagStatusMerged, TagStatusDeleted, false},
		{TagStatusDeleted, TagStatusActive, false},
		{TagStatusDeleted, TagStatusMerged, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s, %s)=%v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestAliasRoundTrip(t *testing.T) {
	tag := &Tag{}
	if got := tag.AliasList(); len(got) != 0 {
		t.Fatalf("empty aliases should decode empty, got %v", got)
	}
	tag.SetAliases([]string{"kitty", "feline"})
	got := tag.AliasList()
	if len(got) != 2 || got[0] != "kitty" || got[1] != "feline" {
		t.Fatalf("alias round trip got %v", got)
	}
}

func TestMergedToProperty(t *testing.T) {
	tag := &Tag{}
	if tag.MergedTo() != uuid.Nil {
		t.Fatal("unset merged_to should read Nil")
	}
	target := uuid.New()
	tag.SetProperty(PropMergedTo, target.String())
	if got := tag.MergedTo(); got != target {
		t.Fatalf("MergedTo=%s, want %s", got, target)
	}
	tag.SetProperty("origin", "import")
	if got := tag.MergedTo(); got != target {
		t.Fatal("unrelated property write should not clobber merged_to")
	}
}

func TestRecomputePopularity(t *testing.T) {
	tag := &Tag{UsageCount: 42}
	tag.RecomputePopularity()
	if tag.PopularityScore != 4.2 {
		t.Fatalf("PopularityScore=%v, want 4.2", tag.PopularityScore)
	}
}
