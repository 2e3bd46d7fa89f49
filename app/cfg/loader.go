package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// File locations
	ConfigFile string `long:"config" env:"CONFIG_FILE" default:"./config.yaml" description:"Subscriptions configuration file"`
	CacheFile  string `long:"cache-file" env:"CACHE_FILE" default:"./feed_cache.json" description:"Fingerprint cache file"`
	StateFile  string `long:"state-file" env:"NOTION_STATE_FILE" default:"./notion_state.json" description:"Notion database state file"`

	// Notion publishing
	NotionToken  string `long:"notion-token" env:"NOTION_TOKEN" description:"Notion integration token (publishing disabled when empty)"`
	NotionParent string `long:"notion-parent" env:"NOTION_PARENT_ID" description:"Notion page or database ID used as the publish target"`

	// Run selection
	User      string `long:"user" env:"MONITOR_USER" description:"Process a single configured user id instead of all users"`
	ListUsers bool   `long:"list-users" description:"List configured users and exit"`

	// Fetch behavior
	UserAgent    string `long:"user-agent" env:"USER_AGENT" default:"rss-press/1.0" description:"User agent string for feed requests"`
	FetchTimeout int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"60" description:"Feed fetch timeout in seconds"`
	ImageTimeout int    `long:"image-timeout" env:"IMAGE_TIMEOUT" default:"10" description:"Image download timeout in seconds"`

	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses options from command-line flags and environment variables,
// reading an optional .env file first. A nil Cfg with nil error means help
// was requested and shown.
func Load() (*Cfg, error) {
	// Best-effort: a missing .env file is not an error
	_ = godotenv.Load()

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		ConfigFile:   raw.ConfigFile,
		CacheFile:    raw.CacheFile,
		StateFile:    raw.StateFile,
		NotionToken:  raw.NotionToken,
		NotionParent: raw.NotionParent,
		User:         raw.User,
		ListUsers:    raw.ListUsers,
		UserAgent:    raw.UserAgent,
		FetchTimeout: raw.FetchTimeout,
		ImageTimeout: raw.ImageTimeout,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	return cfg, nil
}
