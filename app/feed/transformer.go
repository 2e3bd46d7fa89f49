package feed

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
)

// Transformer converts raw feed items into normalized entries ready for
// display and publishing. Field access is defensive throughout: a missing
// field yields a placeholder, never a skipped entry.
type Transformer struct{}

func NewTransformer() *Transformer {
	return &Transformer{}
}

// Normalize builds an Entry from a raw feed item.
func (t *Transformer) Normalize(item *gofeed.Item) Entry {
	entry := Entry{
		Title:     Truncate(cmp.Or(item.Title, NoTitle), MaxTextLen),
		Link:      item.Link,
		Author:    cmp.Or(t.extractAuthor(item), NoAuthor),
		Published: item.Published,
	}

	entry.PublishedAt = t.parsePublished(item)

	entry.RawSummary = cmp.Or(item.Description, item.Content)
	entry.Quotes = ExtractQuotes(entry.RawSummary)

	body := StripQuotes(entry.RawSummary)
	entry.Summary = Truncate(cmp.Or(CleanText(body), NoSummary), MaxTextLen)

	entry.ImageURLs = ExtractImageURLs(entry.RawSummary)

	return entry
}

func (t *Transformer) extractAuthor(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		return item.Authors[0].Name
	}
	return ""
}

// parsePublished resolves the entry's published time, falling back to the
// current time when the feed supplies nothing parseable.
func (t *Transformer) parsePublished(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}

	if item.Published != "" {
		if parsed, err := dateparse.ParseAny(item.Published); err == nil {
			return parsed.UTC()
		}
	}

	return time.Now().UTC()
}

// CleanText strips markup from a text fragment and collapses whitespace.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return strings.Join(strings.Fields(text), " ")
	}

	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Truncate cuts a string to maxLen runes, appending a visible marker when
// anything was dropped.
func Truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}

// SplitBlocks chunks text into fixed-width pieces of at most maxLen runes.
// Text within the limit yields exactly one chunk, and concatenating the
// chunks in order always reconstructs the input exactly.
func SplitBlocks(text string, maxLen int) []string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return []string{text}
	}

	blocks := make([]string, 0, (len(runes)+maxLen-1)/maxLen)
	for start := 0; start < len(runes); start += maxLen {
		end := min(start+maxLen, len(runes))
		blocks = append(blocks, string(runes[start:end]))
	}

	return blocks
}

// FormatEntry renders an entry for human-readable display.
func FormatEntry(entry Entry, index int, platform string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "entry %d (%s)\n", index, strings.ToUpper(platform))
	fmt.Fprintf(&b, "  title:     %s\n", entry.Title)
	fmt.Fprintf(&b, "  link:      %s\n", cmp.Or(entry.Link, NoLink))
	fmt.Fprintf(&b, "  author:    %s\n", entry.Author)
	fmt.Fprintf(&b, "  published: %s\n", cmp.Or(entry.Published, entry.PublishedAt.Format(time.RFC3339)))
	fmt.Fprintf(&b, "  summary:   %s\n", entry.Summary)
	b.WriteString(strings.Repeat("-", 50))

	return b.String()
}
