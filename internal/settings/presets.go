// Package settings handles the two JSON side files next to the database:
// field presets and local view settings. Both are cosmetic preferences, so
// read/write failures never propagate; the caller always gets usable values.
package settings

import (
	"encoding/json"
	"os"

	"github.com/noh03/rtmsync/pkg/logger"
)

// Presets maps a field name to its allowed values, used to populate dropdowns.
type Presets map[string][]string

func DefaultPresets() Presets {
	return Presets{
		"rtm_environment": {"DEV", "QA", "STAGE", "PROD"},
		"status":          {},
		"priority":        {},
		"components":      {},
		"versions":        {},
		"relation_types":  {},
	}
}

// LoadPresets reads the presets file. A missing or corrupt file yields the
// built-in defaults; keys absent from the file are backfilled from defaults.
func LoadPresets(path string) Presets {
	defaults := DefaultPresets()

	data, err := os.ReadFile(path)
	if err != nil {
		return defaults
	}

	var loaded map[string][]string
	if err := json.Unmarshal(data, &loaded); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("ignoring corrupt presets file")
		return defaults
	}

	presets := Presets{}
	for field, values := range loaded {
		if values == nil {
			values = []string{}
		}
		presets[field] = values
	}
	for field, values := range defaults {
		if _, ok := presets[field]; !ok {
			presets[field] = values
		}
	}
	return presets
}

// SavePresets persists the presets file. Failures are logged and swallowed;
// losing a preference must never take the application down.
func SavePresets(presets Presets, path string) {
	data, err := json.MarshalIndent(presets, "", "  ")
	if err != nil {
		logger.Warn().Err(err).Msg("presets not saved")
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("presets not saved")
	}
}
