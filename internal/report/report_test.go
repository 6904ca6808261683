package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteIncompleteThenFinalRemovesPlaceholder(t *testing.T) {
	dir := t.TempDir()
	r := Report{EngineVersion: "0.1.0", Command: []string{"freeze", "blocks"}}
	incPath, err := WriteIncomplete(dir, "20260730T000000Z", r)
	require.NoError(t, err)
	require.FileExists(t, incPath)

	final := r
	final.Completed = []string{filepath.Join(dir, "ethereum__blocks__1_to_2.parquet")}
	require.NoError(t, WriteFinal(dir, "20260730T000000Z", final, incPath))

	_, err = os.Stat(incPath)
	require.True(t, os.IsNotExist(err), "expected incomplete placeholder to be removed")
	require.FileExists(t, filepath.Join(dir, "20260730T000000Z.json"))
}

func TestWriteFinalWithoutIncompleteIsFine(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteFinal(dir, "ts", Report{}, ""))
}
