package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apexgp/race-engine/pkg/model"
)

func sampleClassification() []model.ClassificationEntry {
	return []model.ClassificationEntry{
		{DriverName: "Max Verstappen", TeamName: "Red Bull Racing", Position: 1},
		{DriverName: "Ayrton Senna", TeamName: "Apex GP", Position: 2},
		{DriverName: "Lewis Hamilton", TeamName: "Mercedes", Position: 3},
		{DriverName: "Niki Lauda", TeamName: "Apex GP", Position: 7},
	}
}

func TestPosition(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		team   string
		want   int
		wantOK bool
	}{
		{name: "exact", driver: "Ayrton Senna", team: "Apex GP", want: 2, wantOK: true},
		{name: "exact without team", driver: "Lewis Hamilton", want: 3, wantOK: true},
		{name: "case and whitespace", driver: "  ayrton senna ", team: "apex gp", want: 2, wantOK: true},
		{name: "substring", driver: "Senna", team: "Apex GP", want: 2, wantOK: true},
		{name: "substring reverse", driver: "Niki Lauda Jr", team: "Apex GP", want: 7, wantOK: true},
		{name: "unknown driver", driver: "Jim Clark", team: "Apex GP", wantOK: false},
		{name: "empty name", driver: "", team: "Apex GP", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Position(sampleClassification(), tt.driver, tt.team)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// a hired driver sharing a name with a scripted rival must resolve to
// the entry of the hiring team, not the rival's
func TestPositionNameCollision(t *testing.T) {
	classification := []model.ClassificationEntry{
		{DriverName: "Max Verstappen", TeamName: "Red Bull Racing", Position: 1},
		{DriverName: "Max Verstappen", TeamName: "Apex GP", Position: 5},
	}
	pos, ok := Position(classification, "Max Verstappen", "Apex GP")
	assert.True(t, ok)
	assert.Equal(t, 5, pos)

	// without a team hint the first entry wins
	pos, ok = Position(classification, "Max Verstappen", "")
	assert.True(t, ok)
	assert.Equal(t, 1, pos)
}

// exact matching always wins over substring containment
func TestPositionExactBeatsSubstring(t *testing.T) {
	classification := []model.ClassificationEntry{
		{DriverName: "Max Verstappen Jr", TeamName: "Apex GP", Position: 4},
		{DriverName: "Max Verstappen", TeamName: "Red Bull Racing", Position: 9},
	}
	pos, ok := Position(classification, "Max Verstappen", "")
	assert.True(t, ok)
	assert.Equal(t, 9, pos)
}

func TestPositionOrDefault(t *testing.T) {
	classification := sampleClassification()
	assert.Equal(t, 2, PositionOrDefault(classification, "Ayrton Senna", "Apex GP", 0))
	assert.Equal(t, DefaultRankFirst, PositionOrDefault(classification, "Jim Clark", "Apex GP", 0))
	assert.Equal(t, DefaultRankSecond, PositionOrDefault(classification, "Jim Clark", "Apex GP", 1))
}
