package tui

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const DefaultConfigFileName = "config.toml"

// Keymap holds the list-mode key bindings. Add and search modes always
// use enter/esc regardless of these.
type Keymap struct {
	Quit     string `toml:"quit"`
	Up       string `toml:"up"`
	Down     string `toml:"down"`
	Add      string `toml:"add"`
	Toggle   string `toml:"toggle"`
	Delete   string `toml:"delete"`
	Undo     string `toml:"undo"`
	Search   string `toml:"search"`
	Filter   string `toml:"filter"`
	Sort     string `toml:"sort"`
	Order    string `toml:"order"`
	NextPage string `toml:"next_page"`
	PrevPage string `toml:"prev_page"`
	Clear    string `toml:"clear_completed"`
	Reload   string `toml:"reload"`
	Dismiss  string `toml:"dismiss"`
}

// Config is the client-side configuration, stored as TOML.
type Config struct {
	BaseURL  string `toml:"base_url"`
	PageSize int    `toml:"page_size"`
	Keys     Keymap `toml:"keys"`
}

// ResolveConfigPath returns the per-user config file location, falling
// back to the working directory when the user config dir is unknown.
func ResolveConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, "taskleaf", DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing one with defaults on
// first run. Missing fields fall back to defaults.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultConfig().BaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultConfig().PageSize
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		BaseURL:  "http://localhost:4000",
		PageSize: 5,
		Keys: Keymap{
			Quit:     "q",
			Up:       "k",
			Down:     "j",
			Add:      "a",
			Toggle:   " ",
			Delete:   "d",
			Undo:     "u",
			Search:   "/",
			Filter:   "f",
			Sort:     "s",
			Order:    "o",
			NextPage: "n",
			PrevPage: "p",
			Clear:    "c",
			Reload:   "r",
			Dismiss:  "x",
		},
	}
}
