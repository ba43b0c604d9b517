package shuffle

import (
	"fmt"
	"slices"
	"testing"
)

func TestSeeded_Sequence(t *testing.T) {
	src := NewSeeded(1)
	// (1*9301 + 49297) % 233280 = 58598
	if got, want := src.Float64(), 58598.0/233280.0; got != want {
		t.Fatalf("first value = %v, want %v", got, want)
	}

	for i := 0; i < 1000; i++ {
		f := src.Float64()
		if f < 0 || f >= 1 {
			t.Fatalf("value %v out of [0,1)", f)
		}
	}
}

func TestShuffle_IsPermutation(t *testing.T) {
	tests := []struct {
		name string
		in   []int
	}{
		{name: "empty", in: []int{}},
		{name: "single", in: []int{7}},
		{name: "pair", in: []int{1, 2}},
		{name: "ten", in: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{name: "with repeats", in: []int{1, 1, 2, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := slices.Clone(tt.in)
			got := Shuffle(tt.in, NewSeeded(DefaultTestSeed))

			if !slices.Equal(tt.in, original) {
				t.Fatalf("input mutated: %v", tt.in)
			}
			if len(got) != len(tt.in) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.in))
			}

			sortedGot := slices.Clone(got)
			sortedIn := slices.Clone(tt.in)
			slices.Sort(sortedGot)
			slices.Sort(sortedIn)
			if !slices.Equal(sortedGot, sortedIn) {
				t.Errorf("Shuffle(%v) = %v is not a permutation", tt.in, got)
			}
		})
	}
}

func TestShuffle_SmallInputUnchanged(t *testing.T) {
	got := Shuffle([]string{"only"}, NewSeeded(DefaultTestSeed))
	if !slices.Equal(got, []string{"only"}) {
		t.Errorf("got %v", got)
	}
}

func TestShuffle_Deterministic(t *testing.T) {
	in := []string{"a", "b", "c", "d", "e", "f", "g"}

	first := Shuffle(in, NewSeeded(DefaultTestSeed))
	second := Shuffle(in, NewSeeded(DefaultTestSeed))

	if !slices.Equal(first, second) {
		t.Errorf("same seed gave %v and %v", first, second)
	}
}

func TestShuffle_NoOutOfRangeWithEdgeSource(t *testing.T) {
	got := Shuffle([]int{1, 2, 3}, fixedSource(0.9999999999))
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
}

type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

func TestBuildChoiceSet(t *testing.T) {
	tests := []struct {
		name         string
		correct      string
		incorrect    []string
		maxIncorrect int
		wantLen      int
	}{
		{name: "one distractor", correct: "2", incorrect: []string{"3"}, maxIncorrect: 3, wantLen: 2},
		{name: "exactly three", correct: "a", incorrect: []string{"b", "c", "d"}, maxIncorrect: 3, wantLen: 4},
		{name: "capped", correct: "a", incorrect: []string{"b", "c", "d", "e", "f", "g"}, maxIncorrect: 3, wantLen: 4},
		{name: "zero max", correct: "a", incorrect: []string{"b"}, maxIncorrect: 0, wantLen: 1},
		{name: "no distractors", correct: "a", incorrect: nil, maxIncorrect: 3, wantLen: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := int64(1); seed <= 50; seed++ {
				got := BuildChoiceSet(tt.correct, tt.incorrect, tt.maxIncorrect, NewSeeded(seed))

				if len(got) != tt.wantLen {
					t.Fatalf("seed %d: len = %d, want %d", seed, len(got), tt.wantLen)
				}

				count := 0
				seen := map[string]bool{}
				for _, c := range got {
					if c == tt.correct {
						count++
					}
					if seen[c] {
						t.Fatalf("seed %d: duplicate choice %q in %v", seed, c, got)
					}
					seen[c] = true
					if c != tt.correct && !slices.Contains(tt.incorrect, c) {
						t.Fatalf("seed %d: unexpected choice %q", seed, c)
					}
				}
				if count != 1 {
					t.Fatalf("seed %d: correct answer appears %d times in %v", seed, count, got)
				}
			}
		})
	}
}

func TestBuildChoiceSet_CorrectPositionVaries(t *testing.T) {
	positions := map[int]bool{}
	for seed := int64(1); seed <= 200; seed++ {
		got := BuildChoiceSet("right", []string{"w1", "w2", "w3"}, DefaultMaxIncorrect, NewSeeded(seed))
		positions[slices.Index(got, "right")] = true
	}
	if len(positions) < 2 {
		t.Errorf("correct answer always at the same position: %v", positions)
	}
}

func ExampleBuildChoiceSet() {
	choices := BuildChoiceSet("2", []string{"3", "4"}, DefaultMaxIncorrect, NewSeeded(DefaultTestSeed))
	fmt.Println(len(choices), slices.Contains(choices, "2"))
	// Output: 3 true
}
