package basedata

import (
	"github.com/apexgp/race-engine/pkg/model"
)

// SampleTeam returns a ready-to-race human team snapshot.
func SampleTeam(id int, name string) model.TeamSnapshot {
	return model.TeamSnapshot{
		ID:   id,
		Name: name,
		Car: model.CarStats{
			Aerodynamics: 5,
			PowerUnit:    4,
			Chassis:      6,
			Reliability:  3,
		},
		Drivers: []model.Driver{
			{ID: "d-a", Name: "Ayrton Senna", Pace: 99},
			{ID: "d-b", Name: "Niki Lauda", Pace: 94},
			{ID: "d-c", Name: "Valtteri Bottas", Pace: 84},
		},
		ActiveDriverIDs: []string{"d-a", "d-b"},
		CurrentStrategy: model.StrategyOneStop,
	}
}

// SampleTeams returns the standard two-team grid used by most tests.
func SampleTeams() []model.TeamSnapshot {
	first := SampleTeam(1, "Apex GP")
	second := model.TeamSnapshot{
		ID:   2,
		Name: "Vortex Racing",
		Car: model.CarStats{
			Aerodynamics: 3,
			PowerUnit:    3,
			Chassis:      2,
			Reliability:  5,
		},
		Drivers: []model.Driver{
			{ID: "d-x", Name: "Michael Schumacher", Pace: 98},
			{ID: "d-y", Name: "Oliver Bearman", Pace: 82},
		},
		ActiveDriverIDs: []string{"d-x", "d-y"},
		CurrentStrategy: model.StrategyTwoStop,
	}
	return []model.TeamSnapshot{first, second}
}
