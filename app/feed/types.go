package feed

import (
	"time"
)

// Text limits imposed by the downstream store.
const (
	MaxTextLen     = 20000 // generic text fields
	MaxTitleLen    = 100   // store page titles
	MaxRichTextLen = 1900  // store rich_text fields, with safety margin
	MaxImages      = 5     // images considered per entry
)

// Placeholders substituted for missing entry fields.
const (
	NoTitle   = "no title"
	NoLink    = "no link"
	NoAuthor  = "no author"
	NoSummary = "no summary"
)

// Entry is a feed item normalized for publishing. Every field is populated:
// missing source fields fall back to placeholders rather than failing the
// entry.
type Entry struct {
	Title       string
	Link        string // empty when the feed omits it
	Author      string
	Published   string // raw published string as the feed reported it
	PublishedAt time.Time
	Summary     string // cleaned plain text, quotes removed
	RawSummary  string // original summary markup
	ImageURLs   []string
	Quotes      []Quote
}

// Quote is a quoted post embedded in an entry's body, e.g. the retweeted
// part of a tweet.
type Quote struct {
	Author  string
	Content string
}
