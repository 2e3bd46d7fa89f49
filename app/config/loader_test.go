package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
platforms:
  twitter:
    rss_url:
      - "https://rsshub.app/twitter/user/{username}"
      - "https://rss.example.com/twitter/{username}"
    names:
      - id: alice
        name: Alice
      - id: bob
  weibo:
    rss_url:
      - "https://rsshub.app/weibo/user/{username}"
    names:
      - id: "12345"
        name: Some Weibo User
`)

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(config.Platforms) != 2 {
		t.Fatalf("Expected 2 platforms, got: %d", len(config.Platforms))
	}

	twitter := config.Platforms["twitter"]
	if len(twitter.URLTemplates) != 2 {
		t.Errorf("Expected 2 templates, got: %d", len(twitter.URLTemplates))
	}
	if len(twitter.Users) != 2 {
		t.Fatalf("Expected 2 twitter users, got: %d", len(twitter.Users))
	}

	// Platform is filled in from the platform key
	if twitter.Users[0].Platform != "twitter" {
		t.Errorf("Expected platform 'twitter', got: %s", twitter.Users[0].Platform)
	}

	// Missing display names default to a platform-derived one
	if twitter.Users[1].Name != "TWITTER user" {
		t.Errorf("Expected default name 'TWITTER user', got: %s", twitter.Users[1].Name)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "platforms: [not a map")

	_, err := Load(path)
	if err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestValidateNoPlatforms(t *testing.T) {
	path := writeConfig(t, "platforms: {}")

	_, err := Load(path)
	if err == nil {
		t.Error("Expected error for empty platforms")
	}
}

func TestValidateNoTemplates(t *testing.T) {
	path := writeConfig(t, `
platforms:
  twitter:
    names:
      - id: alice
`)

	_, err := Load(path)
	if err == nil {
		t.Error("Expected error for platform without templates")
	}
}

func TestValidateMissingPlaceholder(t *testing.T) {
	path := writeConfig(t, `
platforms:
  twitter:
    rss_url:
      - "https://rsshub.app/twitter/user/alice"
    names:
      - id: alice
`)

	_, err := Load(path)
	if err == nil {
		t.Error("Expected error for template without {username} placeholder")
	}
}

func TestValidateUserWithoutID(t *testing.T) {
	path := writeConfig(t, `
platforms:
  twitter:
    rss_url:
      - "https://rsshub.app/twitter/user/{username}"
    names:
      - name: Anonymous
`)

	_, err := Load(path)
	if err == nil {
		t.Error("Expected error for user without id")
	}
}
