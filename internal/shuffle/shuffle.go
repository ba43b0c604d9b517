package shuffle

import "math"

// DefaultMaxIncorrect is how many distractors a question offers at most.
const DefaultMaxIncorrect = 3

// Shuffle returns a Fisher-Yates permutation of in. The input is left untouched.
func Shuffle[T any](in []T, src Source) []T {
	out := make([]T, len(in))
	copy(out, in)
	if len(out) <= 1 {
		return out
	}

	for i := len(out) - 1; i > 0; i-- {
		j := int(math.Floor(src.Float64() * float64(i+1)))
		if j > i {
			j = i
		}
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// BuildChoiceSet picks up to maxIncorrect distractors at random and mixes the
// correct answer in. The correct answer appears exactly once.
func BuildChoiceSet(correct string, incorrect []string, maxIncorrect int, src Source) []string {
	if maxIncorrect < 0 {
		maxIncorrect = 0
	}

	pool := Shuffle(incorrect, src)
	n := min(maxIncorrect, len(pool))

	choices := make([]string, 0, n+1)
	choices = append(choices, correct)
	choices = append(choices, pool[:n]...)

	return Shuffle(choices, src)
}
