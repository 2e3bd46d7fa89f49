package notion

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ivkuz/rss-press/app/config"
	"github.com/ivkuz/rss-press/app/feed"
)

// Database property names of the published schema.
const (
	PropTitle     = "Title"
	PropLink      = "Link"
	PropAuthor    = "Author"
	PropPublished = "Published"
	PropPlatform  = "Platform"
	PropUser      = "User"
	PropStatus    = "Status"
	PropSummary   = "Summary"
)

const statusNew = "new"

// ImagePublisher re-hosts one image in the store and returns its upload
// handle.
type ImagePublisher interface {
	Publish(ctx context.Context, imageURL string) (string, error)
}

// Publisher maps normalized entries into store pages.
type Publisher struct {
	client     *Client
	images     ImagePublisher
	databaseID string
}

func NewPublisher(client *Client, images ImagePublisher, databaseID string) *Publisher {
	return &Publisher{
		client:     client,
		images:     images,
		databaseID: databaseID,
	}
}

// PublishEntry creates one page for the entry. Image failures degrade to
// link paragraphs; only the page-creation call itself can fail the entry.
func (p *Publisher) PublishEntry(ctx context.Context, entry feed.Entry, user config.User) error {
	req := PageRequest{
		Parent:     Parent{DatabaseID: p.databaseID},
		Properties: p.buildProperties(entry, user),
		Children:   p.buildChildren(ctx, entry, user),
	}

	page, err := p.client.CreatePage(ctx, req)
	if err != nil {
		return err
	}

	slog.Debug("Entry published", "page_id", page.ID, "title", entry.Title)
	return nil
}

func (p *Publisher) buildProperties(entry feed.Entry, user config.User) map[string]Property {
	author := entry.Author
	if author == feed.NoAuthor {
		author = user.Name
	}

	properties := map[string]Property{
		PropTitle:     {Title: text(feed.Truncate(entry.Title, feed.MaxTitleLen))},
		PropAuthor:    {RichText: text(feed.Truncate(author, feed.MaxTitleLen))},
		PropPublished: {Date: &Date{Start: entry.PublishedAt.Format(time.RFC3339)}},
		PropPlatform:  {Select: &Select{Name: strings.ToUpper(user.Platform)}},
		PropUser:      {RichText: text(user.Name)},
		PropStatus:    {Select: &Select{Name: statusNew}},
		PropSummary:   {RichText: text(feed.Truncate(entry.Summary, feed.MaxRichTextLen))},
	}

	if entry.Link != "" {
		link := entry.Link
		properties[PropLink] = Property{URL: &link}
	}

	return properties
}

func (p *Publisher) buildChildren(ctx context.Context, entry feed.Entry, user config.User) []Block {
	var children []Block

	for _, chunk := range feed.SplitBlocks(entry.Summary, feed.MaxRichTextLen) {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		children = append(children, Block{
			Object:    "block",
			Type:      "paragraph",
			Paragraph: &RichTextBody{RichText: text(chunk)},
		})
	}

	for _, quote := range entry.Quotes {
		content := quote.Content
		if quote.Author != "" {
			content = quote.Author + ": " + content
		}
		children = append(children, Block{
			Object: "block",
			Type:   "quote",
			Quote:  &RichTextBody{RichText: text(feed.Truncate(content, feed.MaxRichTextLen))},
		})
	}

	if strings.EqualFold(user.Platform, "twitter") && isTwitterStatusURL(entry.Link) {
		children = append(children,
			Block{Object: "block", Type: "embed", Embed: &Embed{URL: entry.Link}},
			Block{Object: "block", Type: "divider", Divider: &EmptyObject{}},
		)
	}

	images := entry.ImageURLs
	if len(images) > feed.MaxImages {
		images = images[:feed.MaxImages]
	}
	for _, imageURL := range images {
		children = append(children, p.buildImageBlock(ctx, imageURL))
	}

	return children
}

// buildImageBlock re-hosts one image, degrading to a plain hyperlink
// paragraph when the upload fails.
func (p *Publisher) buildImageBlock(ctx context.Context, imageURL string) Block {
	uploadID, err := p.images.Publish(ctx, imageURL)
	if err != nil {
		slog.Warn("Image upload failed, degrading to link", "url", imageURL, "error", err)
		return Block{
			Object: "block",
			Type:   "paragraph",
			Paragraph: &RichTextBody{RichText: []RichText{
				{Type: "text", Text: TextBody{Content: "image: "}},
				{Type: "text", Text: TextBody{Content: imageURL, Link: &Link{URL: imageURL}}},
			}},
		}
	}

	return Block{
		Object: "block",
		Type:   "image",
		Image:  &Image{Type: "file_upload", FileUpload: &FileUploadHandle{ID: uploadID}},
	}
}

var twitterHosts = map[string]bool{
	"twitter.com":        true,
	"x.com":              true,
	"mobile.twitter.com": true,
	"m.twitter.com":      true,
}

func isTwitterStatusURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
	return twitterHosts[host] && strings.Contains(parsed.Path, "/status/")
}

func text(content string) []RichText {
	return []RichText{{Type: "text", Text: TextBody{Content: content}}}
}
