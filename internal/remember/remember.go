// Package remember persists the most recent run's CLI invocation so a
// later run without any datatypes named can repeat it, with any flag the
// new invocation does supply overriding the remembered value.
package remember

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/crypto-data/freeze/internal/errs"
)

// Command is the persisted shape of one remembered invocation.
type Command struct {
	EngineVersion string         `json:"engine_version"`
	Argv          []string       `json:"command"`
	Args          map[string]any `json:"args"`
}

const fileName = "remembered_command.json"

// Save writes cmd to <dir>/remembered_command.json, overwriting whatever
// was remembered before.
func Save(dir string, cmd Command) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.File("could not create remember directory", err)
	}
	data, err := json.MarshalIndent(cmd, "", "  ")
	if err != nil {
		return errs.File("could not encode remembered command", err)
	}
	if err := os.WriteFile(filepath.Join(dir, fileName), data, 0o644); err != nil {
		return errs.File("could not write remembered command", err)
	}
	return nil
}

// Load reads back the remembered command from dir, or returns nil with no
// error if nothing has been remembered yet.
func Load(dir string) (*Command, error) {
	data, err := os.ReadFile(filepath.Join(dir, fileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.File("could not read remembered command", err)
	}
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, errs.File("could not parse remembered command", err)
	}
	return &cmd, nil
}

// Merge layers overrides on top of a remembered command's args: any key
// present in overrides wins, every other remembered key is kept.
func Merge(remembered, overrides map[string]any) map[string]any {
	merged := make(map[string]any, len(remembered)+len(overrides))
	for k, v := range remembered {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}
