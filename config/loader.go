package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "owlgraph.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/owlgraph"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/owlgraph/config.yaml)
// 3. Project config: path when given, else owlgraph.yaml in the current or a
// parent directory
//
// An explicit path that cannot be read is an error; missing implicit layers
// are skipped.
func (l *Loader) Load(path string) (*Config, error) {
	config := DefaultConfig()

	userConfigPath := l.userConfigPath()
	if userConfig, err := LoadFromFile(userConfigPath); err == nil {
		l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
		config.Merge(userConfig)
	} else if !errors.Is(err, fs.ErrNotExist) {
		l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
	}

	if path != "" {
		projectConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded config", slog.String("path", path))
		config.Merge(projectConfig)
	} else if projectConfigPath := l.findProjectConfig(); projectConfigPath != "" {
		if projectConfig, err := LoadFromFile(projectConfigPath); err == nil {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			config.Merge(projectConfig)
		} else {
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		}
	} else {
		l.logger.Debug("No project config found")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// EnsureUserConfig writes the default configuration to the user config path
// unless a file is already there. It returns the path and whether it wrote it.
func (l *Loader) EnsureUserConfig() (string, bool, error) {
	path := l.userConfigPath()
	if path == "" {
		return "", false, errors.New("cannot resolve home directory")
	}
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	}

	if err := DefaultConfig().SaveToFile(path); err != nil {
		return path, false, err
	}
	l.logger.Info("Created default user config", slog.String("path", path))
	return path, true, nil
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for owlgraph.yaml in current and parent directories
func (l *Loader) findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
