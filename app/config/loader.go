package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates the subscriptions configuration. Configuration
// errors are fatal to the caller: no useful work can start without a valid
// set of platforms and users.
func Load(path string) (*Config, error) {
	config, err := loadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", path, err)
	}

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	slog.Debug("Loaded subscriptions configuration", "path", path,
		"platforms", len(config.Platforms))
	return config, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	setDefaults(&config)

	return &config, nil
}

func setDefaults(config *Config) {
	for name, platform := range config.Platforms {
		for i := range platform.Users {
			platform.Users[i].Platform = name
			if platform.Users[i].Name == "" {
				platform.Users[i].Name = fmt.Sprintf("%s user", strings.ToUpper(name))
			}
		}
		config.Platforms[name] = platform
	}
}

func validate(config *Config) error {
	if len(config.Platforms) == 0 {
		return fmt.Errorf("at least one platform is required")
	}

	for name, platform := range config.Platforms {
		if len(platform.URLTemplates) == 0 {
			return fmt.Errorf("platform %s has no rss_url templates", name)
		}
		for i, template := range platform.URLTemplates {
			if !strings.Contains(template, usernamePlaceholder) {
				return fmt.Errorf("platform %s template at index %d is missing the %s placeholder", name, i, usernamePlaceholder)
			}
		}
		for i, user := range platform.Users {
			if user.ID == "" {
				return fmt.Errorf("platform %s user at index %d has no id", name, i)
			}
		}
	}

	return nil
}
