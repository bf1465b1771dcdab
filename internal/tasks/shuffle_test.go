package tasks

import (
	"fmt"
	"slices"
	"testing"
)

func TestShuffler(t *testing.T) {
	t.Run("Preserves Every URI", func(t *testing.T) {
		uris := make([]string, 500)
		for i := range uris {
			uris[i] = fmt.Sprintf("spotify:track:%d", i)
		}

		shuffled := NewShuffler().Shuffle(uris)
		if len(shuffled) != len(uris) {
			t.Fatalf("expected %d uris, got %d", len(uris), len(shuffled))
		}

		sorted := slices.Clone(shuffled)
		slices.Sort(sorted)
		original := slices.Clone(uris)
		slices.Sort(original)
		if !slices.Equal(sorted, original) {
			t.Error("expected shuffle to be a permutation of the input")
		}
	})

	t.Run("Leaves Input Untouched", func(t *testing.T) {
		uris := []string{"a", "b", "c", "d"}
		before := slices.Clone(uris)
		NewShuffler().Shuffle(uris)
		if !slices.Equal(uris, before) {
			t.Error("expected input slice to keep its order")
		}
	})

	t.Run("Seeded Runs Are Reproducible", func(t *testing.T) {
		uris := make([]string, 100)
		for i := range uris {
			uris[i] = fmt.Sprintf("spotify:track:%d", i)
		}

		first := NewSeededShuffler(42).Shuffle(uris)
		second := NewSeededShuffler(42).Shuffle(uris)
		if !slices.Equal(first, second) {
			t.Error("expected identical permutations from the same seed")
		}
	})

	t.Run("Handles Empty And Single", func(t *testing.T) {
		s := NewShuffler()
		if got := s.Shuffle(nil); len(got) != 0 {
			t.Errorf("expected empty result, got %v", got)
		}
		if got := s.Shuffle([]string{"only"}); len(got) != 1 || got[0] != "only" {
			t.Errorf("expected single element preserved, got %v", got)
		}
	})
}
