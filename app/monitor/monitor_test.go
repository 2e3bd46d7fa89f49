package monitor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ivkuz/rss-press/app/cache"
	"github.com/ivkuz/rss-press/app/config"
	"github.com/ivkuz/rss-press/app/feed"
)

const threeItemFeed = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>alice feed</title>
    <link>https://example.com</link>
    <description>posts</description>
    <item>
      <title>Post 1</title>
      <link>https://twitter.com/alice/status/1</link>
      <guid>post-1</guid>
    </item>
    <item>
      <title>Post 2</title>
      <link>https://twitter.com/alice/status/2</link>
      <guid>post-2</guid>
    </item>
    <item>
      <title>Post 3</title>
      <link>https://twitter.com/alice/status/3</link>
      <guid>post-3</guid>
    </item>
  </channel>
</rss>`

type fakePublisher struct {
	calls    int
	titles   []string
	failCall int // 1-based call number to reject, 0 for none
}

func (f *fakePublisher) PublishEntry(ctx context.Context, entry feed.Entry, user config.User) error {
	f.calls++
	f.titles = append(f.titles, entry.Title)
	if f.failCall != 0 && f.calls == f.failCall {
		return errors.New("store rejected the page")
	}
	return nil
}

func configFor(templates ...string) *config.Config {
	return &config.Config{
		Platforms: map[string]config.Platform{
			"twitter": {
				URLTemplates: templates,
				Users: []config.User{
					{ID: "alice", Name: "Alice", Platform: "twitter"},
				},
			},
		},
	}
}

func newMonitorForTest(t *testing.T, conf *config.Config, publisher Publisher) (*Monitor, *cache.Cache) {
	t.Helper()

	fpCache := cache.Load(filepath.Join(t.TempDir(), "cache.json"))
	fetcher := feed.NewFetcher("test-agent/1.0", 5*time.Second)
	return New(conf, fpCache, fetcher, feed.NewTransformer(), publisher), fpCache
}

func TestRunUserPublishesNewEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, threeItemFeed)
	}))
	defer server.Close()

	publisher := &fakePublisher{}
	mon, fpCache := newMonitorForTest(t, configFor(server.URL+"/{username}"), publisher)

	result := mon.RunUser(context.Background(), config.User{ID: "alice", Name: "Alice", Platform: "twitter"})

	if result.Err != nil {
		t.Fatalf("Expected no error, got: %v", result.Err)
	}
	if result.Total != 3 || result.New != 3 || result.Cached != 0 {
		t.Errorf("Expected total=3 new=3 cached=0, got: %+v", result)
	}
	if result.Published != 3 {
		t.Errorf("Expected 3 published, got: %d", result.Published)
	}
	if publisher.calls != 3 {
		t.Errorf("Expected 3 publish calls, got: %d", publisher.calls)
	}
	if fpCache.Len() != 3 {
		t.Errorf("Expected cache to grow by 3, got: %d", fpCache.Len())
	}

	// Entries are processed in feed order
	if publisher.titles[0] != "Post 1" || publisher.titles[2] != "Post 3" {
		t.Errorf("Expected feed order preserved, got: %v", publisher.titles)
	}
}

func TestRunUserDedupIdempotence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, threeItemFeed)
	}))
	defer server.Close()

	publisher := &fakePublisher{}
	mon, fpCache := newMonitorForTest(t, configFor(server.URL+"/{username}"), publisher)
	user := config.User{ID: "alice", Name: "Alice", Platform: "twitter"}

	first := mon.RunUser(context.Background(), user)
	if first.New != 3 {
		t.Fatalf("Expected 3 new entries on first run, got: %d", first.New)
	}

	second := mon.RunUser(context.Background(), user)
	if second.New != 0 || second.Cached != 3 {
		t.Errorf("Expected new=0 cached=3 on second run, got: %+v", second)
	}
	if second.Published != 0 {
		t.Errorf("Expected zero publishes on second run, got: %d", second.Published)
	}
	if publisher.calls != 3 {
		t.Errorf("Expected no additional publish calls, got: %d", publisher.calls)
	}
	if fpCache.Len() != 3 {
		t.Errorf("Expected no cache growth on second run, got: %d", fpCache.Len())
	}
}

func TestRunUserFallbackScenario(t *testing.T) {
	// First candidate fails to parse, second serves 3 entries; if the store
	// rejects entry #2, two publishes succeed and all 3 fingerprints are
	// still committed.
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer bad.Close()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, threeItemFeed)
	}))
	defer good.Close()

	publisher := &fakePublisher{failCall: 2}
	mon, fpCache := newMonitorForTest(t,
		configFor(bad.URL+"/{username}", good.URL+"/{username}"), publisher)

	result := mon.RunUser(context.Background(), config.User{ID: "alice", Name: "Alice", Platform: "twitter"})

	if result.Err != nil {
		t.Fatalf("Expected soft success, got: %v", result.Err)
	}
	if result.SourceURL != good.URL+"/alice" {
		t.Errorf("Expected fallback to second candidate, got: %s", result.SourceURL)
	}
	if result.New != 3 {
		t.Errorf("Expected 3 new entries, got: %d", result.New)
	}
	if publisher.calls != 3 {
		t.Errorf("Expected 3 publish attempts, got: %d", publisher.calls)
	}
	if result.Published != 2 {
		t.Errorf("Expected 2 successful publishes, got: %d", result.Published)
	}
	// The failed entry is still marked as seen
	if fpCache.Len() != 3 {
		t.Errorf("Expected all 3 fingerprints cached, got: %d", fpCache.Len())
	}
}

func TestRunUserAllSourcesFail(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer bad.Close()

	mon, _ := newMonitorForTest(t, configFor(bad.URL+"/{username}"), &fakePublisher{})

	result := mon.RunUser(context.Background(), config.User{ID: "alice", Name: "Alice", Platform: "twitter"})
	if !errors.Is(result.Err, feed.ErrAllSourcesFailed) {
		t.Errorf("Expected ErrAllSourcesFailed, got: %v", result.Err)
	}
}

func TestRunUserNoSourcesConfigured(t *testing.T) {
	mon, _ := newMonitorForTest(t, configFor("https://example.com/{username}"), &fakePublisher{})

	result := mon.RunUser(context.Background(), config.User{ID: "bob", Platform: "mastodon"})
	if !errors.Is(result.Err, feed.ErrNoSources) {
		t.Errorf("Expected ErrNoSources, got: %v", result.Err)
	}
}

func TestRunUserWithoutPublisher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, threeItemFeed)
	}))
	defer server.Close()

	mon, fpCache := newMonitorForTest(t, configFor(server.URL+"/{username}"), nil)

	result := mon.RunUser(context.Background(), config.User{ID: "alice", Name: "Alice", Platform: "twitter"})
	if result.Err != nil {
		t.Fatalf("Expected no error, got: %v", result.Err)
	}
	if result.Published != 0 {
		t.Errorf("Expected no publishes without a publisher, got: %d", result.Published)
	}
	// Entries are still cached so a later configured run starts clean
	if fpCache.Len() != 3 {
		t.Errorf("Expected 3 cached entries, got: %d", fpCache.Len())
	}
}

func TestRunAllContinuesPastFailures(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, threeItemFeed)
	}))
	defer good.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer bad.Close()

	conf := &config.Config{
		Platforms: map[string]config.Platform{
			"twitter": {
				URLTemplates: []string{bad.URL + "/{username}"},
				Users:        []config.User{{ID: "broken", Name: "Broken", Platform: "twitter"}},
			},
			"weibo": {
				URLTemplates: []string{good.URL + "/{username}"},
				Users:        []config.User{{ID: "works", Name: "Works", Platform: "weibo"}},
			},
		},
	}

	publisher := &fakePublisher{}
	mon, _ := newMonitorForTest(t, conf, publisher)

	results := mon.RunAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got: %d", len(results))
	}

	// twitter sorts first and fails; weibo must still be processed
	if results[0].Err == nil {
		t.Error("Expected first user to fail")
	}
	if results[1].Err != nil {
		t.Errorf("Expected second user to succeed, got: %v", results[1].Err)
	}
	if results[1].Published != 3 {
		t.Errorf("Expected 3 publishes for second user, got: %d", results[1].Published)
	}
}

func TestRunNamedUnknownUser(t *testing.T) {
	mon, _ := newMonitorForTest(t, configFor("https://example.com/{username}"), nil)

	if _, err := mon.RunNamed(context.Background(), "nobody"); err == nil {
		t.Error("Expected error for unknown user")
	}
}

func TestRunNamedCaseInsensitive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, threeItemFeed)
	}))
	defer server.Close()

	mon, _ := newMonitorForTest(t, configFor(server.URL+"/{username}"), nil)

	result, err := mon.RunNamed(context.Background(), "ALICE")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.User.ID != "alice" {
		t.Errorf("Expected resolved user 'alice', got: %s", result.User.ID)
	}
}
