package config

// User is one monitored account on a platform. Users are built from
// configuration and treated as read-only for the rest of the run.
type User struct {
	ID       string `yaml:"id"`   // substituted into URL templates
	Name     string `yaml:"name"` // display name
	Platform string `yaml:"-"`    // set by the loader from the platform key
}

// Platform groups the ordered feed URL templates with the users watched on it.
type Platform struct {
	URLTemplates []string `yaml:"rss_url"`
	Users        []User   `yaml:"names"`
}

type Config struct {
	Platforms map[string]Platform `yaml:"platforms"`
}
