package env

import (
	"os"
	"path/filepath"
)

const (
	defaultXDGConfigDirname = ".config"
	defaultXDGDataDirname   = ".local/share"
)

var (
	SCRUB_CONFIG_PATH string

	SCRUB_LOG_PATH string
)

func init() {
	// https://github.com/charmbracelet/log/issues/35
	os.Setenv("CLICOLOR_FORCE", "1")

	// Follow https://specifications.freedesktop.org/basedir-spec/latest/
	if SCRUB_CONFIG_PATH = os.Getenv("SCRUB_CONFIG_PATH"); SCRUB_CONFIG_PATH == "" {
		configDir := os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				panic(err)
			}
			configDir = filepath.Join(homeDir, defaultXDGConfigDirname)
		}
		SCRUB_CONFIG_PATH = filepath.Join(configDir, "scrub", "config.yaml")
	}

	if SCRUB_LOG_PATH = os.Getenv("SCRUB_LOG_PATH"); SCRUB_LOG_PATH == "" {
		dataDir := os.Getenv("XDG_DATA_HOME")
		if dataDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				panic(err)
			}
			dataDir = filepath.Join(homeDir, defaultXDGDataDirname)
		}
		SCRUB_LOG_PATH = filepath.Join(dataDir, "scrub", "debug.log")
	}
}
