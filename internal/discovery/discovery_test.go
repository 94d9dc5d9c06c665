package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validScenario = `{"metadata":{"name":"alpha","description":"d","version":"1"},"entities":[{"id":"a","components":{"physics":{"type":"static"}}}]}`

func TestScenariosFindsValidFilesAndWarnsOnInvalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alpha.json"), []byte(validScenario), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644))

	infos, warnings, err := Scenarios(dir)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "alpha", infos[0].Name)
	assert.Len(t, warnings, 1)
}

func TestScenariosMissingDirectoryErrors(t *testing.T) {
	_, _, err := Scenarios(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
