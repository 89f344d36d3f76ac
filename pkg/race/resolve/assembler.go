package resolve

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/apexgp/race-engine/pkg/model"
	"github.com/apexgp/race-engine/pkg/points"
	"github.com/apexgp/race-engine/pkg/race/genai"
	"github.com/apexgp/race-engine/pkg/race/reconcile"
	"github.com/apexgp/race-engine/pkg/race/sim"
)

// assemble turns a position-ranked outcome from either path into the
// final result. Points derive solely from position; human team results
// use the shared reconciliation rules.
func assemble(
	raceName string,
	teams []model.TeamSnapshot,
	outcome *genai.Outcome,
) *model.RaceResult {
	classification := slices.Clone(outcome.Classification)
	slices.SortFunc(classification, func(a, b model.ClassificationEntry) int {
		return a.Position - b.Position
	})
	for i := range classification {
		classification[i].Points = points.For(classification[i].Position)
	}

	teamResults := lo.Map(teams, func(t model.TeamSnapshot, _ int) model.TeamResult {
		p1 := driverPosition(classification, &t, 0)
		p2 := driverPosition(classification, &t, 1)
		return model.TeamResult{
			TeamID:          t.ID,
			Driver1Position: p1,
			Driver2Position: p2,
			Points:          points.For(p1) + points.For(p2),
		}
	})

	return &model.RaceResult{
		RaceName:           raceName,
		TeamResults:        teamResults,
		Commentary:         outcome.Commentary,
		Events:             outcome.Events,
		FullClassification: classification,
	}
}

func driverPosition(
	classification []model.ClassificationEntry,
	t *model.TeamSnapshot,
	slot int,
) int {
	name := ""
	if d := t.ActiveDriver(slot); d != nil {
		name = d.Name
	}
	return reconcile.PositionOrDefault(classification, name, t.Name, slot)
}

// simulatedOutcome renders the deterministic ranking into the common
// outcome shape. Commentary is plain by comparison with the generative
// path; that is the documented trade-off of the fallback.
func simulatedOutcome(raceName string, ranked []sim.Ranked) *genai.Outcome {
	classification := lo.Map(ranked, func(r sim.Ranked, _ int) model.ClassificationEntry {
		return model.ClassificationEntry{
			DriverName: r.Name,
			TeamName:   r.TeamName,
			Position:   r.Position,
		}
	})

	winner := ranked[0]
	commentary := fmt.Sprintf(
		"%s takes victory at the %s for %s after a controlled drive. ",
		winner.Name, raceName, winner.TeamName)
	if len(ranked) >= 3 {
		commentary += fmt.Sprintf("%s and %s complete the podium. ",
			ranked[1].Name, ranked[2].Name)
	}
	events := []string{
		fmt.Sprintf("%s leads from lights to flag", winner.Name),
	}
	if best, ok := lo.Find(ranked, func(r sim.Ranked) bool { return r.Human }); ok {
		commentary += fmt.Sprintf("Best placed team entry: %s in P%d for %s.",
			best.Name, best.Position, best.TeamName)
		events = append(events,
			fmt.Sprintf("%s brings the %s home in P%d",
				best.Name, best.TeamName, best.Position))
	}
	if len(ranked) >= 10 {
		events = append(events,
			fmt.Sprintf("%s grabs the final point in P10", ranked[9].Name))
	}
	return &genai.Outcome{
		Classification: classification,
		Commentary:     commentary,
		Events:         events,
	}
}
