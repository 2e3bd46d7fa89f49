package feed

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RSSHub wraps quoted tweets in div.rsshub-quote; other feed generators use
// plain blockquotes.
const quoteSelector = "div.rsshub-quote, blockquote"

var quoteAuthorPattern = regexp.MustCompile(`^(@?[^:：\s][^:：]{0,48})[:：]\s*`)

// ExtractQuotes pulls quoted posts out of entry markup.
func ExtractQuotes(text string) []Quote {
	if text == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil
	}

	var quotes []Quote
	doc.Find(quoteSelector).Each(func(_ int, sel *goquery.Selection) {
		content := strings.Join(strings.Fields(sel.Text()), " ")
		if content == "" {
			return
		}

		quote := Quote{Content: content}
		if match := quoteAuthorPattern.FindStringSubmatch(content); match != nil {
			quote.Author = strings.TrimPrefix(match[1], "@")
			quote.Content = strings.TrimSpace(content[len(match[0]):])
		}

		if quote.Content != "" {
			quotes = append(quotes, quote)
		}
	})

	return quotes
}

// StripQuotes removes quoted posts from entry markup so the main body and
// the quotes can be rendered separately.
func StripQuotes(text string) string {
	if text == "" {
		return text
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}

	removed := doc.Find(quoteSelector)
	if removed.Length() == 0 {
		return text
	}
	removed.Remove()

	stripped, err := doc.Find("body").Html()
	if err != nil {
		return text
	}

	return stripped
}
