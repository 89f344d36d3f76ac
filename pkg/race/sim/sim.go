// Package sim ranks a competitor field without any external service.
// It is the fallback path when generative resolution is unavailable and
// the reference behavior that path is expected to approximate.
package sim

import (
	"math/rand"
	"slices"

	"github.com/apexgp/race-engine/pkg/race/roster"
)

const (
	paceWeight    = 0.6
	carWeight     = 0.4
	twoStopBonus  = 3.0
	jitterRange   = 12.0
	defaultFactor = 1.0
)

// Ranked is a competitor with its computed score and finishing position.
type Ranked struct {
	roster.Competitor
	Score    float64
	Position int
}

// score computes the performance score for one competitor. The
// difficulty multiplier scales the pace/car portion for scripted
// rivals only; human scores never see it.
func score(c roster.Competitor, difficulty float64, rnd *rand.Rand) float64 {
	base := float64(c.Pace)*paceWeight + c.CarPerf*carWeight
	if !c.Human {
		base *= difficulty
	}
	if c.TwoStop {
		base += twoStopBonus
	}
	return base + rnd.Float64()*jitterRange
}

// Rank scores every competitor and assigns positions 1..N by descending
// score. Pure modulo rnd: a fixed seed reproduces the exact order. Ties
// fall back to the stable sort order; the jitter term makes them
// statistically negligible. The caller guarantees a non-empty field.
func Rank(field []roster.Competitor, difficulty float64, rnd *rand.Rand) []Ranked {
	if difficulty <= 0 {
		difficulty = defaultFactor
	}
	ret := make([]Ranked, len(field))
	for i, c := range field {
		ret[i] = Ranked{Competitor: c, Score: score(c, difficulty, rnd)}
	}
	slices.SortStableFunc(ret, func(a, b Ranked) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	for i := range ret {
		ret[i].Position = i + 1
	}
	return ret
}
