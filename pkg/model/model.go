package model

// Strategy is the pit strategy a human team commits to before the race.
type Strategy string

const (
	StrategyOneStop Strategy = "1-STOP"
	StrategyTwoStop Strategy = "2-STOP"
)

// Driver is a roster entry of a human team. Only Pace feeds the scoring
// formula; the remaining attributes belong to out-of-scope subsystems
// and are kept so snapshots round-trip unchanged.
type Driver struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Pace        int    `json:"pace"`
	Consistency int    `json:"consistency,omitempty"`
	Experience  int    `json:"experience,omitempty"`
}

// CarStats holds the four development levels of a team car.
// Reliability is collected by the game but not consumed by scoring.
type CarStats struct {
	Aerodynamics int `json:"aerodynamics"`
	PowerUnit    int `json:"powerUnit"`
	Chassis      int `json:"chassis"`
	Reliability  int `json:"reliability,omitempty"`
}

// PerformanceAvg is the mean of the three levels consumed by scoring.
func (c CarStats) PerformanceAvg() float64 {
	return float64(c.Aerodynamics+c.PowerUnit+c.Chassis) / 3.0
}

// TeamSnapshot is the engine-facing view of one human team for a single
// race. The caller owns the underlying state; the engine never mutates it.
type TeamSnapshot struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	Car             CarStats `json:"car"`
	Drivers         []Driver `json:"drivers"`
	ActiveDriverIDs []string `json:"activeDriverIds"`
	CurrentStrategy Strategy `json:"currentStrategy,omitempty"`
}

// ActiveDriver returns the driver occupying the given active slot (0 or 1),
// or nil if the slot is not filled.
func (t *TeamSnapshot) ActiveDriver(slot int) *Driver {
	if slot < 0 || slot >= len(t.ActiveDriverIDs) {
		return nil
	}
	id := t.ActiveDriverIDs[slot]
	for i := range t.Drivers {
		if t.Drivers[i].ID == id {
			return &t.Drivers[i]
		}
	}
	return nil
}
