// Package rank orders deduplicated repository records by a composite
// "interesting now" score built from percentile ranks of five signals.
package rank

import (
	"math"
	"sort"
	"time"

	"cvescout/internal/model"
)

// Size is a weak signal on its own, so it is coarsened into three tiers
// rather than contributing raw magnitude. Large repositories score low.
const (
	sizeTierLarge  = 0.166
	sizeTierMedium = 0.5
	sizeTierSmall  = 0.833
)

// Rank sorts records descending by composite score and returns the result.
// Records whose PushedAt cannot be parsed are excluded. The score and the
// intermediate age values are sorting aids only and are not retained.
func Rank(records []model.Repository, now time.Time) []model.Repository {
	kept, ages := dropUnparseable(records, now)
	if len(kept) == 0 {
		return kept
	}

	a := percentiles(intSignal(kept, func(r model.Repository) int { return r.MatchedCount }), false)
	b := percentiles(intSignal(kept, func(r model.Repository) int { return r.StargazersCount }), false)
	c := percentiles(intSignal(kept, func(r model.Repository) int { return r.ForksCount }), false)
	// Smaller age means a more recent push, which should rank highest.
	d := percentiles(ages, true)
	e := sizeTiers(percentiles(intSignal(kept, func(r model.Repository) int { return r.Size }), false))

	scores := make([]float64, len(kept))
	for i := range kept {
		scores[i] = math.Sqrt(a[i]*a[i] + b[i]*b[i] + c[i]*c[i] + d[i]*d[i] + e[i]*e[i])
	}

	order := make([]int, len(kept))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return scores[order[i]] > scores[order[j]] })

	out := make([]model.Repository, len(kept))
	for i, idx := range order {
		out[i] = kept[idx]
	}
	return out
}

func dropUnparseable(records []model.Repository, now time.Time) ([]model.Repository, []float64) {
	var kept []model.Repository
	var ages []float64
	for _, r := range records {
		pushed, err := time.Parse(time.RFC3339, r.PushedAt)
		if err != nil {
			continue
		}
		kept = append(kept, r)
		ages = append(ages, now.Sub(pushed).Seconds())
	}
	return kept, ages
}

func intSignal(records []model.Repository, get func(model.Repository) int) []float64 {
	vals := make([]float64, len(records))
	for i, r := range records {
		vals[i] = float64(get(r))
	}
	return vals
}

// percentiles maps each value to its percentile rank in (0,1], using the
// average-rank convention for ties. With descending=false larger values rank
// higher; with descending=true smaller values rank higher.
func percentiles(values []float64, descending bool) []float64 {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		if descending {
			return values[order[i]] > values[order[j]]
		}
		return values[order[i]] < values[order[j]]
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && values[order[j]] == values[order[i]] {
			j++
		}
		// Positions i..j-1 share the same value; each gets the average of
		// their one-based ranks.
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = avg / float64(n)
		}
		i = j
	}
	return ranks
}

// sizeTiers cuts size percentiles (larger size ranks higher) into three
// equal-width bins over [0,1] and maps them to fixed tier values.
func sizeTiers(pcts []float64) []float64 {
	tiers := make([]float64, len(pcts))
	for i, p := range pcts {
		switch {
		case p > 2.0/3.0:
			tiers[i] = sizeTierLarge
		case p > 1.0/3.0:
			tiers[i] = sizeTierMedium
		default:
			tiers[i] = sizeTierSmall
		}
	}
	return tiers
}
