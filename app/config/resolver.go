package config

import (
	"slices"
	"strings"
)

const usernamePlaceholder = "{username}"

// ResolveCandidates expands the user's platform URL templates into an
// ordered list of candidate feed URLs. An unconfigured platform yields nil.
// Pure function of configuration and user; no side effects.
func (c *Config) ResolveCandidates(user User) []string {
	platform, ok := c.Platforms[user.Platform]
	if !ok {
		return nil
	}

	urls := make([]string, 0, len(platform.URLTemplates))
	for _, template := range platform.URLTemplates {
		urls = append(urls, strings.ReplaceAll(template, usernamePlaceholder, user.ID))
	}

	return urls
}

// PlatformNames returns the configured platform names in stable order.
func (c *Config) PlatformNames() []string {
	names := make([]string, 0, len(c.Platforms))
	for name := range c.Platforms {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Users returns every configured user, grouped by platform in stable order.
func (c *Config) Users() []User {
	var users []User
	for _, name := range c.PlatformNames() {
		users = append(users, c.Platforms[name].Users...)
	}
	return users
}

// FindUser looks up a user by id, case-insensitively.
func (c *Config) FindUser(id string) (User, bool) {
	for _, user := range c.Users() {
		if strings.EqualFold(user.ID, id) {
			return user, true
		}
	}
	return User{}, false
}
