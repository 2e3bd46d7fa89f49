package cfg

type Cfg struct {
	// File locations
	ConfigFile string
	CacheFile  string
	StateFile  string

	// Notion publishing
	NotionToken  string
	NotionParent string

	// Run selection
	User      string
	ListUsers bool

	// Fetch behavior
	UserAgent    string
	FetchTimeout int
	ImageTimeout int

	// Application metadata
	Debug   bool
	Version string
}
