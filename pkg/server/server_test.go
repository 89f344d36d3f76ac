package server

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexgp/race-engine/pkg/model"
	"github.com/apexgp/race-engine/pkg/race/resolve"
	"github.com/apexgp/race-engine/pkg/race/roster"
	"github.com/apexgp/race-engine/testsupport/basedata"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	handler := NewHandler(WithResolver(resolve.NewResolver(
		resolve.WithRandom(rand.New(rand.NewSource(1))))))
	srv := httptest.NewServer(handler.Mux())
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveRace(t *testing.T) {
	srv := newTestServer(t)
	teams := basedata.SampleTeams()
	body, err := json.Marshal(map[string]any{
		"teams":                teams,
		"raceIndex":            5,
		"difficultyMultiplier": 1.0,
	})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/v1/race/resolve", "application/json",
		bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result model.RaceResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "Monaco Grand Prix", result.RaceName)
	assert.Len(t, result.FullClassification, 2*len(teams)+roster.RivalCount)
	assert.Len(t, result.TeamResults, len(teams))
}

func TestResolveRaceBadRequests(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{"teams":`},
		{name: "empty team list", body: `{"teams":[],"raceIndex":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/v1/race/resolve", "application/json",
				bytes.NewBufferString(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestResolveRaceMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/v1/race/resolve")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
