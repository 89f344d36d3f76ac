package model

// ClassificationEntry is one row of the finishing order.
type ClassificationEntry struct {
	DriverName string `json:"driverName"`
	TeamName   string `json:"teamName"`
	Position   int    `json:"position"`
	Points     int    `json:"points"`
}

// TeamResult aggregates the finishing positions of a human team's two
// active drivers. Points is the sum over both drivers.
type TeamResult struct {
	TeamID          int `json:"teamId"`
	Driver1Position int `json:"driver1Position"`
	Driver2Position int `json:"driver2Position"`
	Points          int `json:"points"`
}

// RaceResult is the sole output artifact of a race resolution.
// It is self-contained; the caller appends it to the season history.
type RaceResult struct {
	RaceName           string                `json:"raceName"`
	TeamResults        []TeamResult          `json:"teamResults"`
	Commentary         string                `json:"commentary"`
	Events             []string              `json:"events"`
	FullClassification []ClassificationEntry `json:"fullClassification"`
}
