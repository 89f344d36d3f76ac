package resolve

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestRaceName(t *testing.T) {
	assert.Equal(t, "Bahrain Grand Prix", RaceName(0))
	assert.Equal(t, "Monaco Grand Prix", RaceName(5))
	assert.Equal(t, "Silverstone Grand Prix", RaceName(9))
	// seasons longer than the calendar cycle through it again
	assert.Equal(t, "Bahrain Grand Prix", RaceName(10))
	assert.Equal(t, "Miami Grand Prix", RaceName(14))
	// negative indexes map to the season opener
	assert.Equal(t, "Bahrain Grand Prix", RaceName(-1))
}
