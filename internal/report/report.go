// Package report writes the JSON summary of a run: an incomplete
// placeholder written before collection starts (so a crash mid-run leaves
// evidence of what was attempted), replaced by the final report on
// successful completion.
package report

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/crypto-data/freeze/internal/errs"
)

// Report is the persisted shape of one run's summary.
type Report struct {
	EngineVersion string         `json:"engine_version"`
	Command       []string       `json:"cli_command"`
	ParsedArgs    map[string]any `json:"parsed_args"`
	Completed     []string       `json:"completed_paths"`
	Errored       []ErroredPath  `json:"errored_paths"`
	NSkipped      int            `json:"n_skipped"`
}

// ErroredPath pairs a predicted output path with the reason its partition
// failed, so a reader can see what was attempted without re-running.
type ErroredPath struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// WriteIncomplete writes the placeholder report shown while a run is
// still in progress, named incomplete_<timestamp>.json.
func WriteIncomplete(dir, timestamp string, r Report) (string, error) {
	path := filepath.Join(dir, "incomplete_"+timestamp+".json")
	if err := write(path, r); err != nil {
		return "", err
	}
	return path, nil
}

// WriteFinal writes the completed run's report, named <timestamp>.json,
// and removes the incomplete placeholder if one was written.
func WriteFinal(dir, timestamp string, r Report, incompletePath string) error {
	path := filepath.Join(dir, timestamp+".json")
	if err := write(path, r); err != nil {
		return err
	}
	if incompletePath != "" {
		if err := os.Remove(incompletePath); err != nil && !os.IsNotExist(err) {
			return errs.File("could not remove incomplete report placeholder", err)
		}
	}
	return nil
}

func write(path string, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errs.File("could not encode report", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.File("could not write report file", err)
	}
	return nil
}
