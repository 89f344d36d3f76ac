package resolve

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexgp/race-engine/testsupport/basedata"
)

func TestLoadRoster(t *testing.T) {
	teams := basedata.SampleTeams()
	data, err := json.Marshal(teams)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "roster.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	got, err := loadRoster(path)
	require.NoError(t, err)
	assert.Equal(t, teams, got)
}

func TestLoadRosterErrors(t *testing.T) {
	_, err := loadRoster(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "reading roster file")

	path := filepath.Join(t.TempDir(), "roster.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"teams":`), 0o600))
	_, err = loadRoster(path)
	assert.ErrorContains(t, err, "parsing roster file")
}
