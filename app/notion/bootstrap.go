package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"
)

const databaseTitle = "rss-press entries"

// state remembers which database pages are published into, so repeated runs
// reuse it instead of creating a new one under the parent page.
type state struct {
	DatabaseID string `json:"database_id"`
	ParentID   string `json:"parent_id,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// EnsureDatabase resolves the target database id: a saved id that is still
// accessible wins, then the parent id itself if it already is a database,
// otherwise a new database is created under the parent page. The resolved
// id is saved to statePath for the next run.
func EnsureDatabase(ctx context.Context, client *Client, parentID, statePath string) (string, error) {
	if saved := loadState(statePath); saved.DatabaseID != "" {
		if _, err := client.RetrieveDatabase(ctx, saved.DatabaseID); err == nil {
			slog.Debug("Using saved database", "database_id", saved.DatabaseID)
			return saved.DatabaseID, nil
		}
		slog.Warn("Saved database is no longer accessible, resolving again", "database_id", saved.DatabaseID)
	}

	if _, err := client.RetrieveDatabase(ctx, parentID); err == nil {
		saveState(statePath, parentID, parentID)
		return parentID, nil
	}

	db, err := client.CreateDatabase(ctx, databaseRequest(parentID))
	if err != nil {
		return "", fmt.Errorf("failed to create database under page %s: %w", parentID, err)
	}

	slog.Info("Created database", "database_id", db.ID, "parent_page", parentID)
	saveState(statePath, db.ID, parentID)
	return db.ID, nil
}

func databaseRequest(pageID string) DatabaseRequest {
	return DatabaseRequest{
		Parent: Parent{Type: "page_id", PageID: pageID},
		Title:  text(databaseTitle),
		Properties: map[string]SchemaProperty{
			PropTitle:     {Title: &EmptyObject{}},
			PropLink:      {URL: &EmptyObject{}},
			PropAuthor:    {RichText: &EmptyObject{}},
			PropPublished: {Date: &EmptyObject{}},
			PropPlatform: {Select: &SelectSchema{Options: []SelectOption{
				{Name: "TWITTER", Color: "blue"},
				{Name: "WEIBO", Color: "red"},
				{Name: "X", Color: "default"},
			}}},
			PropUser: {RichText: &EmptyObject{}},
			PropStatus: {Select: &SelectSchema{Options: []SelectOption{
				{Name: statusNew, Color: "green"},
				{Name: "read", Color: "gray"},
			}}},
			PropSummary: {RichText: &EmptyObject{}},
		},
	}
}

func loadState(path string) state {
	var s state

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read state file", "path", path, "error", err)
		}
		return s
	}

	if err := json.Unmarshal(data, &s); err != nil {
		slog.Warn("State file is corrupt, ignoring", "path", path, "error", err)
		return state{}
	}

	return s
}

func saveState(path, databaseID, parentID string) {
	s := state{
		DatabaseID: databaseID,
		ParentID:   parentID,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		slog.Warn("Failed to encode state", "error", err)
		return
	}

	// Non-fatal: the next run will just resolve the database again
	if err := os.WriteFile(path, data, 0644); err != nil {
		slog.Warn("Failed to save state file", "path", path, "error", err)
	}
}
