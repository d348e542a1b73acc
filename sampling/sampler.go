package sampling

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/cockroachdb/errors"
)

// ErrInvalidDistribution is returned when the model produces an empty or
// non-finite distribution. It is fatal to the current generation call only.
var ErrInvalidDistribution = errors.New("invalid distribution")

// Sample selects exactly one token index from a distribution of per-token
// logits. history holds the tokens generated so far in this call and is
// only consulted for the repetition penalty. The RNG is advanced only on
// the non-greedy path; with Temperature == 0 rng may be nil.
func Sample(logits []float64, history []int, cfg Config, rng *rand.Rand) (int, error) {
	if len(logits) == 0 {
		return 0, errors.WithMessage(ErrInvalidDistribution, "empty logits")
	}
	for i, v := range logits {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, errors.WithMessagef(ErrInvalidDistribution, "non-finite value at index %d", i)
		}
	}

	if cfg.Temperature == 0 {
		return argmax(logits), nil
	}

	probs := softmax(logits, cfg.Temperature)

	if cfg.RepetitionPenalty != 1.0 {
		applyRepetitionPenalty(probs, history, cfg.RepetitionPenalty)
	}

	// Candidate order: probability descending, index ascending on ties,
	// so top-k and top-p cut a deterministic prefix.
	order := make([]int, len(probs))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case probs[a] > probs[b]:
			return -1
		case probs[a] < probs[b]:
			return 1
		}
		return a - b
	})

	keep := len(order)
	if cfg.TopK > 0 && cfg.TopK < keep {
		keep = cfg.TopK
	}
	if cfg.TopP < 1.0 {
		var cum float64
		total := sum(probs, order[:keep])
		for i := 0; i < keep; i++ {
			cum += probs[order[i]] / total
			if cum >= cfg.TopP {
				keep = i + 1
				break
			}
		}
	}

	total := sum(probs, order[:keep])
	if total <= 0 {
		return 0, errors.WithMessage(ErrInvalidDistribution, "no probability mass after filtering")
	}

	target := rng.Float64() * total
	var cum float64
	for _, idx := range order[:keep] {
		cum += probs[idx]
		if target < cum {
			return idx, nil
		}
	}
	// Rounding can leave target just above the final cumulative sum.
	return order[keep-1], nil
}

func argmax(logits []float64) int {
	best := 0
	for i, v := range logits {
		if v > logits[best] {
			best = i
		}
	}
	return best
}

func softmax(logits []float64, temperature float64) []float64 {
	scaled := make([]float64, len(logits))
	maxLogit := math.Inf(-1)
	for _, v := range logits {
		if v > maxLogit {
			maxLogit = v
		}
	}
	maxLogit /= temperature

	var total float64
	for i, v := range logits {
		e := math.Exp(v/temperature - maxLogit)
		scaled[i] = e
		total += e
	}
	for i := range scaled {
		scaled[i] /= total
	}
	return scaled
}

// applyRepetitionPenalty divides the probability of every token already
// generated by the penalty and renormalizes. A penalty of 0 removes the
// token outright.
func applyRepetitionPenalty(probs []float64, history []int, penalty float64) {
	seen := make(map[int]struct{}, len(history))
	for _, tok := range history {
		if tok < 0 || tok >= len(probs) {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		if penalty == 0 {
			probs[tok] = 0
		} else {
			probs[tok] /= penalty
		}
	}

	var total float64
	for _, p := range probs {
		total += p
	}
	if total <= 0 {
		return
	}
	for i := range probs {
		probs[i] /= total
	}
}

func sum(probs []float64, idx []int) float64 {
	var total float64
	for _, i := range idx {
		total += probs[i]
	}
	return total
}
