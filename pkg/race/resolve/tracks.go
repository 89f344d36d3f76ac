package resolve

import "fmt"

// season calendar; seasons longer than the list cycle through it again
var tracks = []string{
	"Bahrain", "Saudi", "Australia", "Baku", "Miami",
	"Monaco", "Spain", "Canada", "Austria", "Silverstone",
}

// RaceName returns the grand prix name for a race index.
func RaceName(raceIndex int) string {
	if raceIndex < 0 {
		raceIndex = 0
	}
	return fmt.Sprintf("%s Grand Prix", tracks[raceIndex%len(tracks)])
}
