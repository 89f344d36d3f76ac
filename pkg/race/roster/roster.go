package roster

import (
	"math/rand"

	"github.com/samber/lo"

	"github.com/apexgp/race-engine/pkg/model"
)

// Competitor is one named driver entry considered by the ranking
// algorithm for a single race. Built fresh on every resolution.
type Competitor struct {
	Name     string
	TeamName string
	TeamID   int // only meaningful when Human is true
	Human    bool
	Pace     int
	CarPerf  float64
	TwoStop  bool
}

// RivalTeam is a scripted grid filler with a fixed driver line-up.
type RivalTeam struct {
	Name    string
	Drivers [2]string
	CarPerf float64
}

// car performance tiers by constructor prestige
const (
	TierTop  = 88.0
	TierMid  = 78.0
	TierBack = 68.0
)

// pace range synthesized for rival drivers missing from the attribute table
const (
	SynthPaceMin = 82
	SynthPaceMax = 92
)

// RivalTeams is the fixed scripted grid. Nine teams, two drivers each.
var RivalTeams = []RivalTeam{
	{Name: "Red Bull Racing", Drivers: [2]string{"Max Verstappen", "Sergio Perez"}, CarPerf: TierTop},
	{Name: "Ferrari", Drivers: [2]string{"Charles Leclerc", "Carlos Sainz"}, CarPerf: TierTop},
	{Name: "Mercedes", Drivers: [2]string{"Lewis Hamilton", "George Russell"}, CarPerf: TierTop},
	{Name: "McLaren", Drivers: [2]string{"Lando Norris", "Oscar Piastri"}, CarPerf: TierTop},
	{Name: "Aston Martin", Drivers: [2]string{"Fernando Alonso", "Lance Stroll"}, CarPerf: TierMid},
	{Name: "Alpine", Drivers: [2]string{"Pierre Gasly", "Esteban Ocon"}, CarPerf: TierMid},
	{Name: "Williams", Drivers: [2]string{"Alex Albon", "Logan Sargeant"}, CarPerf: TierBack},
	{Name: "RB Visa", Drivers: [2]string{"Yuki Tsunoda", "Daniel Ricciardo"}, CarPerf: TierBack},
	{Name: "Haas", Drivers: [2]string{"Nico Hulkenberg", "Kevin Magnussen"}, CarPerf: TierBack},
}

// driverPace is the master attribute table for known rival drivers.
// Names not listed here get a synthesized pace in [SynthPaceMin,SynthPaceMax].
var driverPace = map[string]int{
	"Max Verstappen":   97,
	"Sergio Perez":     86,
	"Charles Leclerc":  94,
	"Carlos Sainz":     90,
	"Lewis Hamilton":   93,
	"George Russell":   90,
	"Lando Norris":     92,
	"Oscar Piastri":    89,
	"Fernando Alonso":  91,
	"Pierre Gasly":     87,
	"Esteban Ocon":     86,
	"Alex Albon":       88,
	"Yuki Tsunoda":     85,
	"Daniel Ricciardo": 85,
	"Nico Hulkenberg":  86,
	"Kevin Magnussen":  83,
}

// RivalCount is the number of scripted competitors on every grid.
var RivalCount = len(RivalTeams) * 2

// humanCarPerf converts development levels into a car performance value.
func humanCarPerf(car model.CarStats) float64 {
	return 60.0 + car.PerformanceAvg()*2.5
}

// Build assembles the complete competitor set for one race: both active
// drivers of every human team plus the fixed rival grid. The returned
// size is always 2*len(teams)+RivalCount. rnd supplies the pace
// synthesis for unlisted rival drivers and must not be nil.
func Build(teams []model.TeamSnapshot, rnd *rand.Rand) []Competitor {
	ret := make([]Competitor, 0, 2*len(teams)+RivalCount)
	for i := range teams {
		t := &teams[i]
		twoStop := t.CurrentStrategy == model.StrategyTwoStop
		for slot := range 2 {
			d := t.ActiveDriver(slot)
			if d == nil {
				continue
			}
			ret = append(ret, Competitor{
				Name:     d.Name,
				TeamName: t.Name,
				TeamID:   t.ID,
				Human:    true,
				Pace:     d.Pace,
				CarPerf:  humanCarPerf(t.Car),
				TwoStop:  twoStop,
			})
		}
	}
	rivals := lo.FlatMap(RivalTeams, func(rt RivalTeam, _ int) []Competitor {
		return lo.Map(rt.Drivers[:], func(name string, _ int) Competitor {
			return Competitor{
				Name:     name,
				TeamName: rt.Name,
				Pace:     paceFor(name, rnd),
				CarPerf:  rt.CarPerf,
			}
		})
	})
	return append(ret, rivals...)
}

func paceFor(name string, rnd *rand.Rand) int {
	if pace, ok := driverPace[name]; ok {
		return pace
	}
	return SynthPaceMin + rnd.Intn(SynthPaceMax-SynthPaceMin+1)
}
