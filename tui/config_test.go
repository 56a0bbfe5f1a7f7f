package tui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/taskleaf/taskleaf/models"
)

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BaseURL != "http://localhost:4000" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.PageSize != 5 {
		t.Errorf("PageSize = %d", cfg.PageSize)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created: %v", err)
	}

	// Second load reads the file it just wrote
	again, err := LoadOrCreate(path)
	if err != nil {
		t.Fatal(err)
	}
	if again != cfg {
		t.Errorf("reloaded config differs: %+v vs %+v", again, cfg)
	}
}

func TestLoadOrCreateFillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	partial := "base_url = \"http://10.0.0.2:4000\"\n"
	if err := os.WriteFile(path, []byte(partial), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BaseURL != "http://10.0.0.2:4000" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.PageSize != 5 {
		t.Errorf("PageSize not defaulted: %d", cfg.PageSize)
	}
	if cfg.Keys.Quit != "q" {
		t.Errorf("keymap not defaulted: %+v", cfg.Keys)
	}
}

func TestFilterAndSortCycles(t *testing.T) {
	if got := nextFilter(models.FilterAll); got != models.FilterActive {
		t.Errorf("nextFilter(all) = %s", got)
	}
	if got := nextFilter(models.FilterCompleted); got != models.FilterAll {
		t.Errorf("nextFilter(completed) = %s", got)
	}
	if got := nextSortBy(models.SortByStatus); got != models.SortByCreatedAt {
		t.Errorf("nextSortBy(status) = %s", got)
	}
	if got := flipOrder(models.SortDesc); got != models.SortAsc {
		t.Errorf("flipOrder(desc) = %s", got)
	}
}
