package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// ErrInvalidConfig is returned when the settings file has a bad value.
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultBestTrackersURL is the list behind the bestN tracker shortcut.
const DefaultBestTrackersURL = "https://raw.githubusercontent.com/ngosang/trackerslist/master/trackers_best.txt"

// keyDelimiter replaces viper's "." so abbreviation names may contain dots.
const keyDelimiter = "::"

// Settings holds the user-configurable defaults.
type Settings struct {
	// TrackerAbbreviations maps a short name to one URL or a list of URLs.
	TrackerAbbreviations map[string]any  `mapstructure:"tracker_abbreviations" json:"tracker_abbreviations"`
	Advertise            bool            `mapstructure:"advertise" json:"advertise"`
	BestTrackersURL      string          `mapstructure:"best_trackers_url" json:"best_trackers_url"`
	Threads              int             `mapstructure:"threads" json:"threads"`
	Log                  LogSettings     `mapstructure:"log" json:"log"`
	History              HistorySettings `mapstructure:"history" json:"history"`

	abbreviations map[string][]string
}

// LogSettings contains logging settings.
type LogSettings struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
}

// HistorySettings controls the local record of created torrents.
type HistorySettings struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() *Settings {
	return &Settings{
		TrackerAbbreviations: map[string]any{
			"opentrackr": "udp://tracker.opentrackr.org:1337/announce",
			"cyberia":    "udp://tracker.cyberia.is:6969/announce",
		},
		Advertise:       true,
		BestTrackersURL: DefaultBestTrackersURL,
		Threads:         4,
		Log: LogSettings{
			Level:  "warn",
			Format: "console",
		},
		History: HistorySettings{
			Enabled: true,
		},
	}
}

func key(parts ...string) string {
	return strings.Join(parts, keyDelimiter)
}

// LoadSettings reads the settings file at path, falling back to the default
// location when path is empty. A missing default file yields the defaults;
// a missing explicit file is an error. MKTORRENT_* environment variables
// override file values.
func LoadSettings(path string) (*Settings, error) {
	explicit := path != ""
	if !explicit {
		path = GetSettingsPath()
	}

	defaults := DefaultSettings()
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("MKTORRENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelimiter, "_"))
	v.AutomaticEnv()

	v.SetDefault(key("tracker_abbreviations"), defaults.TrackerAbbreviations)
	v.SetDefault(key("advertise"), defaults.Advertise)
	v.SetDefault(key("best_trackers_url"), defaults.BestTrackersURL)
	v.SetDefault(key("threads"), defaults.Threads)
	v.SetDefault(key("log", "level"), defaults.Log.Level)
	v.SetDefault(key("log", "format"), defaults.Log.Format)
	v.SetDefault(key("history", "enabled"), defaults.History.Enabled)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
		if !missing || explicit {
			return nil, fmt.Errorf("%w: reading %s: %w", ErrInvalidConfig, path, err)
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks every field and resolves the abbreviation table.
func (s *Settings) Validate() error {
	abbr := make(map[string][]string, len(s.TrackerAbbreviations))
	for name, raw := range s.TrackerAbbreviations {
		switch val := raw.(type) {
		case string:
			abbr[strings.ToLower(name)] = []string{val}
		case []any:
			urls := make([]string, 0, len(val))
			for _, item := range val {
				str, ok := item.(string)
				if !ok {
					return fmt.Errorf("%w: tracker abbreviation %q must be a string or a list of strings", ErrInvalidConfig, name)
				}
				urls = append(urls, str)
			}
			abbr[strings.ToLower(name)] = urls
		case []string:
			abbr[strings.ToLower(name)] = slices.Clone(val)
		default:
			return fmt.Errorf("%w: tracker abbreviation %q must be a string or a list of strings", ErrInvalidConfig, name)
		}
	}
	s.abbreviations = abbr

	if !strings.HasPrefix(s.BestTrackersURL, "http") {
		return fmt.Errorf("%w: best_trackers_url %q must be a http/https URL", ErrInvalidConfig, s.BestTrackersURL)
	}
	if s.Threads <= 0 {
		return fmt.Errorf("%w: threads must be positive", ErrInvalidConfig)
	}
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, s.Log.Level) {
		return fmt.Errorf("%w: log.level must be one of: debug, info, warn, error", ErrInvalidConfig)
	}
	if s.Log.Format != "json" && s.Log.Format != "console" {
		return fmt.Errorf("%w: log.format must be 'json' or 'console'", ErrInvalidConfig)
	}
	return nil
}

// Abbreviations returns the tracker abbreviation table keyed by lowercase
// name. It is only populated after Validate.
func (s *Settings) Abbreviations() map[string][]string {
	return s.abbreviations
}

// SaveSettings writes s as JSON to path.
func SaveSettings(path string, s *Settings) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	// Atomic write: write to temp file, then rename
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tempPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tempPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return err
	}
	if err := os.Chmod(tempPath, 0o644); err != nil {
		_ = os.Remove(tempPath)
		return err
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return err
	}
	return nil
}
