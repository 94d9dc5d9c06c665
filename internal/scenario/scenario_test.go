package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitalarena/alldomainsim/internal/world"
)

const sampleScenario = `{
  "metadata": {"name": "demo", "description": "", "version": "1"},
  "environment": {"maxTimeWarp": 10},
  "entities": [
    {
      "id": "sat1",
      "name": "LEO-1",
      "type": "satellite",
      "team": "blue",
      "initialState": {"lat": 0.1, "lon": 0.2, "alt": 500000, "speed": 7500},
      "components": {"physics": {"type": "orbital_2body"}}
    },
    {
      "id": "f16-1",
      "name": "Falcon",
      "type": "f16",
      "team": "red",
      "initialState": {"lat": 0.3, "lon": 0.4, "alt": 9000, "speed": 250, "throttle": 0.8},
      "components": {
        "physics": {"type": "atmospheric_3dof", "massKg": 9000, "thrustN": 50000},
        "ai": {"type": "intercept", "role": "fighter", "targetEntityId": "sat1"},
        "weapons": {"type": "sam", "Pk": 0.8, "maxRange": 20000, "inventory": 4}
      }
    }
  ],
  "events": [
    {"time": 10, "action": "launch_wave", "wave": 1}
  ],
  "camera": {"target": "sat1", "range": 1000, "pitch": -30}
}`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadParsesFullScenario(t *testing.T) {
	path := writeScenario(t, sampleScenario)
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", s.Metadata.Name)
	assert.Len(t, s.Entities, 2)
	assert.Equal(t, "sat1", s.Camera.Target)
}

func TestLoadRejectsMissingPhysicsComponent(t *testing.T) {
	path := writeScenario(t, `{"metadata":{"name":"x"},"entities":[{"id":"a","components":{}}]}`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsDuplicateEntityIDs(t *testing.T) {
	body := `{"metadata":{"name":"x"},"entities":[
		{"id":"a","components":{"physics":{"type":"static"}}},
		{"id":"a","components":{"physics":{"type":"static"}}}
	]}`
	_, err := Load(writeScenario(t, body))
	assert.Error(t, err)
}

func TestLoadAbortsOnMalformedJSON(t *testing.T) {
	_, err := Load(writeScenario(t, `{not valid json`))
	assert.Error(t, err)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestBuildSpawnsEveryEntityWithComponents(t *testing.T) {
	s, err := Load(writeScenario(t, sampleScenario))
	require.NoError(t, err)

	w := world.New()
	ids, err := Build(w, s)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sat1", "f16-1"}, ids)

	f16, ok := w.Get("f16-1")
	require.True(t, ok)
	require.NotNil(t, f16.Flight)
	assert.Equal(t, 9000.0, f16.Flight.MassKg)
	require.NotNil(t, f16.AI)
	assert.Equal(t, "sat1", f16.AI.TargetEntityID)
	require.NotNil(t, f16.Comm)
	assert.True(t, f16.Comm.CarriesWeapon)

	sat, ok := w.Get("sat1")
	require.True(t, ok)
	assert.Equal(t, world.PhysicsOrbital2Body, sat.Physics)
	assert.Equal(t, 7500.0, sat.State.Speed)
}

func TestEventRunnerFiresOnceInTimeOrder(t *testing.T) {
	events := []EventSpec{
		{Time: 10, Action: "b"},
		{Time: 5, Action: "a"},
	}
	var order []string
	handlers := map[string]Handler{
		"a": func([]byte) error { order = append(order, "a"); return nil },
		"b": func([]byte) error { order = append(order, "b"); return nil },
	}
	r := NewEventRunner(events, handlers)

	fired, err := r.Advance(5)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, fired)
	assert.Equal(t, []string{"a"}, order)

	fired, err = r.Advance(10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, fired)
	assert.Equal(t, 0, r.Pending())

	fired, err = r.Advance(20)
	require.NoError(t, err)
	assert.Empty(t, fired)
}
