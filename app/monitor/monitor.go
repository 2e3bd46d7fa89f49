package monitor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcdole/gofeed"

	"github.com/ivkuz/rss-press/app/cache"
	"github.com/ivkuz/rss-press/app/config"
	"github.com/ivkuz/rss-press/app/feed"
)

// Publisher pushes one normalized entry to the external store.
type Publisher interface {
	PublishEntry(ctx context.Context, entry feed.Entry, user config.User) error
}

// Monitor drives the per-user pipeline: resolve sources, fetch, filter
// against the fingerprint cache, transform, publish, commit to cache.
type Monitor struct {
	config      *config.Config
	cache       *cache.Cache
	fetcher     *feed.Fetcher
	transformer *feed.Transformer
	publisher   Publisher // nil when publishing is disabled
}

// Result aggregates one user's run.
type Result struct {
	User      config.User
	SourceURL string
	Total     int
	New       int
	Cached    int
	Published int
	Err       error // soft failure; never aborts other users
}

func New(conf *config.Config, fpCache *cache.Cache, fetcher *feed.Fetcher,
	transformer *feed.Transformer, publisher Publisher) *Monitor {
	return &Monitor{
		config:      conf,
		cache:       fpCache,
		fetcher:     fetcher,
		transformer: transformer,
		publisher:   publisher,
	}
}

// RunUser processes one user end to end. Failures are soft: they are
// reported in the Result, logged, and never returned as a process abort.
func (m *Monitor) RunUser(ctx context.Context, user config.User) Result {
	result := Result{User: user}

	slog.Info("Processing user", "user", user.ID, "name", user.Name, "platform", user.Platform)

	candidates := m.config.ResolveCandidates(user)
	if len(candidates) == 0 {
		result.Err = feed.ErrNoSources
		slog.Warn("No feed sources configured", "user", user.ID, "platform", user.Platform)
		return result
	}

	fetched, sourceURL, err := m.fetcher.FetchFirst(ctx, candidates)
	if err != nil {
		result.Err = err
		slog.Warn("Failed to fetch feed", "user", user.ID, "candidates", len(candidates), "error", err)
		return result
	}
	result.SourceURL = sourceURL
	result.Total = len(fetched.Items)

	var fresh []*gofeed.Item
	for _, item := range fetched.Items {
		if m.cache.Contains(item) {
			result.Cached++
		} else {
			fresh = append(fresh, item)
		}
	}
	result.New = len(fresh)

	slog.Info("Feed acquired", "user", user.ID, "source", sourceURL,
		"total", result.Total, "new", result.New, "cached", result.Cached)

	if result.New == 0 {
		return result
	}

	// New entries are processed in feed order. A per-entry failure is
	// logged and skipped; earlier cache commits are never rolled back.
	for i, item := range fresh {
		if ctx.Err() != nil {
			slog.Warn("Run interrupted", "user", user.ID, "processed", i, "pending", len(fresh)-i)
			result.Err = ctx.Err()
			break
		}

		entry := m.transformer.Normalize(item)
		fmt.Println(feed.FormatEntry(entry, i+1, user.Platform))

		if m.publisher != nil {
			if err := m.publisher.PublishEntry(ctx, entry, user); err != nil {
				slog.Warn("Failed to publish entry", "user", user.ID, "title", entry.Title, "error", err)
			} else {
				result.Published++
			}
		}

		// Committed regardless of publish outcome: a failed entry is
		// considered seen and will not be retried on later runs.
		m.cache.Add(item)
	}

	if err := m.cache.Persist(); err != nil {
		slog.Warn("Failed to persist cache", "error", err)
	}

	if m.publisher != nil {
		slog.Info("User run complete", "user", user.ID, "published", result.Published, "new", result.New)
	}

	return result
}

// RunAll processes every configured user sequentially. One user's failure
// never prevents processing of the next.
func (m *Monitor) RunAll(ctx context.Context) []Result {
	users := m.config.Users()
	results := make([]Result, 0, len(users))

	for _, user := range users {
		if ctx.Err() != nil {
			slog.Warn("Run interrupted, skipping remaining users", "remaining", len(users)-len(results))
			break
		}
		results = append(results, m.RunUser(ctx, user))
	}

	succeeded := 0
	for _, result := range results {
		if result.Err == nil {
			succeeded++
		}
	}
	slog.Info("Monitoring complete", "users", len(users), "succeeded", succeeded)

	return results
}

// RunNamed processes a single user looked up by id.
func (m *Monitor) RunNamed(ctx context.Context, id string) (Result, error) {
	user, ok := m.config.FindUser(id)
	if !ok {
		return Result{}, fmt.Errorf("unknown user: %s", id)
	}
	return m.RunUser(ctx, user), nil
}

// FormatUsers renders the configured user list for display.
func (m *Monitor) FormatUsers() string {
	users := m.config.Users()

	out := fmt.Sprintf("configured users (%d):\n", len(users))
	for i, user := range users {
		out += fmt.Sprintf("%2d. %s (%s)\n    id: %s\n", i+1, user.Name, user.Platform, user.ID)
	}

	return out
}
