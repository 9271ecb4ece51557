// Package config provides configuration management for manga-downloader.
//
// This package handles:
//   - Loading settings from a JSON file, with MANGADL_* environment overrides
//   - Saving settings, most notably the persisted save location
//   - Default configuration values
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// 6 concurrent page downloads, 4 concurrent chapter lookups
//	// static work resolution
//	// staging under the user cache directory
//
// # Loading from File
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    // Only malformed files are errors; a missing file yields defaults
//	}
//
// Every key can be overridden from the environment, for example
// MANGADL_RESOLVE_MODE=rendered or MANGADL_SAVE_LOCATION=/srv/manga.
//
// # Saving the save location
//
//	if err := settings.SetSaveLocation("~/Downloads"); err != nil {
//	    // not an existing directory
//	}
//	err := settings.Save(config.DefaultPath())
package config
