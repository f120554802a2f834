package config

import (
	"fmt"
	"path/filepath"
)

const stateDir = ".yomite"

type Config struct {
	DataPath     string
	DBPath       string
	SettingsPath string
	LogPath      string
}

func New(dataPath string) (Config, error) {
	if dataPath == "" {
		return Config{}, fmt.Errorf("data path is required")
	}
	return Config{
		DataPath:     dataPath,
		DBPath:       filepath.Join(dataPath, stateDir, "yomite.db"),
		SettingsPath: filepath.Join(dataPath, "settings.yaml"),
		LogPath:      filepath.Join(dataPath, stateDir, "yomite.log"),
	}, nil
}

// WithSettingsPath overrides the settings file location (the --config flag).
func (c Config) WithSettingsPath(path string) Config {
	if path != "" {
		c.SettingsPath = path
	}
	return c
}
