package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SchoolConfig identifies the school within the NEIS open-data hub.
type SchoolConfig struct {
	// Name is the human-readable school name shown in the UI.
	Name string `yaml:"name" json:"name"`
	// SchoolCode / OfficeCode are the NEIS identifiers
	// (SD_SCHUL_CODE / ATPT_OFCDC_SC_CODE).
	SchoolCode string `yaml:"school_code" json:"schoolCode"`
	OfficeCode string `yaml:"office_code" json:"officeCode"`
	// Grade and Class select the homeroom; informational for the UI.
	Grade int `yaml:"grade" json:"grade"`
	Class int `yaml:"class" json:"class"`
}

// AlarmConfig controls the class-period alarm.
type AlarmConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Sound is one of classic|chime|soft|digital|melody|custom.
	Sound string `yaml:"sound" json:"sound"`
	// CustomSound is a data URL played when Sound == "custom".
	CustomSound     string `yaml:"custom_sound,omitempty" json:"customSound,omitempty"`
	CustomSoundName string `yaml:"custom_sound_name,omitempty" json:"customSoundName,omitempty"`
}

// ICSSource describes one subscribed ICS calendar feed.
type ICSSource struct {
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label shown in the UI.
	Name string `yaml:"name" json:"name"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the local API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level daemon configuration.
type Config struct {
	// Listen is the HTTP listen address for the widget API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used for all schedule math
	// (e.g. "Asia/Seoul").
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron is the cron schedule for full dashboard refreshes.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// CacheDir is where HTTP fetch caches and the preview snapshot live.
	CacheDir string `yaml:"cache_dir" json:"cacheDir"`

	// NEISAPIKey authenticates against the NEIS open-data hub.
	NEISAPIKey string `yaml:"neis_api_key" json:"neisApiKey"`

	School SchoolConfig `yaml:"school" json:"school"`

	// Latitude/Longitude drive the weather and air-quality lookups.
	Latitude  float64 `yaml:"latitude" json:"latitude"`
	Longitude float64 `yaml:"longitude" json:"longitude"`

	// SpreadsheetURL is the class spreadsheet (full sharing URL or bare ID).
	SpreadsheetURL string `yaml:"spreadsheet_url" json:"spreadsheetUrl"`

	Alarm AlarmConfig `yaml:"alarm" json:"alarm"`

	// ICS lists optional shared calendar feeds merged into the schedule.
	ICS []ICSSource `yaml:"ics" json:"ics"`

	// BasicAuth, if non-nil, protects all endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basicAuth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8188",
		Timezone:    "Asia/Seoul",
		RefreshCron: "*/30 * * * *",
		CacheDir:    "./cache",
		Alarm: AlarmConfig{
			Enabled: true,
			Sound:   "classic",
		},
		ICS: []ICSSource{},
	}
}

// Normalize fills in missing/zero values so partially-filled configs from
// older versions still behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8188"
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Seoul"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/30 * * * *"
	}
	if c.CacheDir == "" {
		c.CacheDir = "./cache"
	}
	switch c.Alarm.Sound {
	case "classic", "chime", "soft", "digital", "melody", "custom":
		// ok
	default:
		c.Alarm.Sound = "classic"
	}
	if c.School.Grade < 0 {
		c.School.Grade = 0
	}
	if c.School.Class < 0 {
		c.School.Class = 0
	}
	if c.ICS == nil {
		c.ICS = []ICSSource{}
	}
}

// Load loads configuration from the given YAML path. A missing file is the
// first-run case: a default config is written (0600) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Return cfg with the error so the caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600 perms.
// The settings file carries the NEIS key and calendar URLs, hence the
// restrictive mode.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".classdash-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method that delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
