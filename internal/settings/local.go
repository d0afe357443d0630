package settings

import (
	"encoding/json"
	"os"

	"github.com/noh03/rtmsync/pkg/logger"
)

// LocalSettings are view-side preferences: activity timestamping and
// attachment handling. New options added here backfill automatically because
// loading unmarshals over the defaults.
type LocalSettings struct {
	Activity struct {
		// Prefix new activity entries with a timestamp.
		AppendTimestampOnAdd bool   `json:"append_timestamp_on_add"`
		TimestampFormat      string `json:"timestamp_format"`
	} `json:"activity"`
	Attachments struct {
		// Root directory for stored attachments; empty means the built-in
		// "attachments" directory next to the database.
		RootDir            string `json:"root_dir"`
		AutoDownloadOnPull bool   `json:"auto_download_on_pull"`
		AutoUploadOnPush   bool   `json:"auto_upload_on_push"`
	} `json:"attachments"`
}

func DefaultLocalSettings() LocalSettings {
	var s LocalSettings
	s.Activity.AppendTimestampOnAdd = true
	s.Activity.TimestampFormat = "2006-01-02 15:04"
	s.Attachments.AutoDownloadOnPull = true
	s.Attachments.AutoUploadOnPush = true
	return s
}

// LoadLocalSettings merges the settings file over the defaults. Any read or
// parse problem yields the defaults unchanged.
func LoadLocalSettings(path string) LocalSettings {
	merged := DefaultLocalSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		return merged
	}
	if err := json.Unmarshal(data, &merged); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("ignoring corrupt settings file")
		return DefaultLocalSettings()
	}
	return merged
}

// SaveLocalSettings persists the settings file; failures are logged and
// swallowed.
func SaveLocalSettings(s LocalSettings, path string) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		logger.Warn().Err(err).Msg("settings not saved")
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("settings not saved")
	}
}
