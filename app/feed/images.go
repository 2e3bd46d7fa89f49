package feed

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const imageProxyBase = "https://images.weserv.nl/?url="

// ExtractImageURLs scans entry markup for embedded images and returns their
// URLs in document order. Images on hosts the downstream store cannot fetch
// directly are rewritten through a public image proxy.
func ExtractImageURLs(text string) []string {
	if text == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		slog.Warn("Failed to scan entry markup for images", "error", err)
		return nil
	}

	var urls []string
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok {
			return
		}

		// Attr already returns the entity-decoded value; decoding again
		// would corrupt URLs containing a literal &amp; sequence.
		src = strings.TrimSpace(src)
		if !strings.HasPrefix(src, "http") {
			return
		}

		urls = append(urls, rewriteRestrictedHost(src))
	})

	return urls
}

// rewriteRestrictedHost routes twimg-hosted images through the weserv proxy.
// Twitter's image CDN rejects the store's fetcher, the proxy does not.
func rewriteRestrictedHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	host := strings.ToLower(parsed.Host)
	if host != "twimg.com" && !strings.HasSuffix(host, ".twimg.com") {
		return rawURL
	}

	stripped := strings.TrimPrefix(strings.TrimPrefix(rawURL, "https://"), "http://")
	return imageProxyBase + url.QueryEscape(stripped)
}
