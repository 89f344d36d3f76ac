// Package reconcile locates drivers in a race classification. Both
// resolution paths share it so generative and fallback results behave
// identically when a name needs to be matched.
package reconcile

import (
	"strings"

	"github.com/apexgp/race-engine/pkg/model"
)

// default ranks used when a driver cannot be found at all
const (
	DefaultRankFirst  = 15
	DefaultRankSecond = 18
)

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Position finds the finishing position of a driver. Matching order:
// exact name match qualified by team name, exact name match, substring
// containment in either direction (team-qualified first). The team
// qualification resolves grids where a hired driver shares a name with
// a scripted rival. Returns false if no entry matches.
func Position(
	classification []model.ClassificationEntry,
	driverName, teamName string,
) (int, bool) {
	name := normalize(driverName)
	team := normalize(teamName)
	if name == "" {
		return 0, false
	}

	exact := func(e model.ClassificationEntry) bool {
		return normalize(e.DriverName) == name
	}
	contains := func(e model.ClassificationEntry) bool {
		other := normalize(e.DriverName)
		if other == "" {
			return false
		}
		return strings.Contains(other, name) || strings.Contains(name, other)
	}

	for _, match := range []func(model.ClassificationEntry) bool{exact, contains} {
		if team != "" {
			for _, e := range classification {
				if match(e) && normalize(e.TeamName) == team {
					return e.Position, true
				}
			}
		}
		for _, e := range classification {
			if match(e) {
				return e.Position, true
			}
		}
	}
	return 0, false
}

// PositionOrDefault resolves a driver position with the documented safe
// default for the given active slot (0 or 1) when no match exists.
func PositionOrDefault(
	classification []model.ClassificationEntry,
	driverName, teamName string,
	slot int,
) int {
	if pos, ok := Position(classification, driverName, teamName); ok {
		return pos
	}
	if slot == 0 {
		return DefaultRankFirst
	}
	return DefaultRankSecond
}
