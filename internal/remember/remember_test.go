package remember

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	cmd := Command{EngineVersion: "0.1.0", Argv: []string{"freeze", "blocks", "-b", "17000000"}, Args: map[string]any{"blocks": "17000000"}}
	require.NoError(t, Save(dir, cmd))

	loaded, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, "0.1.0", loaded.EngineVersion)
	require.Len(t, loaded.Argv, 4)
}

func TestLoadMissingFileReturnsNilNoError(t *testing.T) {
	loaded, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestMergeOverridesWinOverRemembered(t *testing.T) {
	remembered := map[string]any{"blocks": "1:100", "rate": float64(5)}
	overrides := map[string]any{"blocks": "200:300"}
	merged := Merge(remembered, overrides)
	require.Equal(t, "200:300", merged["blocks"])
	require.Equal(t, float64(5), merged["rate"])
}
