// Package config loads chaptrack settings from a TOML file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// Config is the full chaptrack configuration.
type Config struct {
	TimeScale int64           `toml:"time_scale" env:"CHAPTRACK_TIME_SCALE"`
	Search    SearchConfig    `toml:"search"`
	FFmpeg    FFmpegConfig    `toml:"ffmpeg"`
	Translate TranslateConfig `toml:"translate"`

	// provider keys are never read from or written to the file
	Keys APIKeys `toml:"-"`
}

// SearchConfig holds the default text search parameters.
type SearchConfig struct {
	CaseSensitive bool `toml:"case_sensitive" env:"CHAPTRACK_SEARCH_CASE_SENSITIVE"`
	Wrap          bool `toml:"wrap" env:"CHAPTRACK_SEARCH_WRAP"`
	Backward      bool `toml:"backward" env:"CHAPTRACK_SEARCH_BACKWARD"`
}

// FFmpegConfig points at the ffmpeg tools. Empty paths fall back to PATH,
// then to a downloaded copy when AutoDownload is set.
type FFmpegConfig struct {
	FFmpegPath   string `toml:"ffmpeg_path" env:"CHAPTRACK_FFMPEG_PATH"`
	FFprobePath  string `toml:"ffprobe_path" env:"CHAPTRACK_FFPROBE_PATH"`
	AutoDownload bool   `toml:"auto_download" env:"CHAPTRACK_FFMPEG_AUTO_DOWNLOAD"`
}

// TranslateConfig selects the chapter title translation provider.
type TranslateConfig struct {
	Provider    string `toml:"provider" env:"CHAPTRACK_TRANSLATE_PROVIDER"`
	Model       string `toml:"model" env:"CHAPTRACK_TRANSLATE_MODEL"`
	APIKey      string `toml:"api_key" env:"CHAPTRACK_TRANSLATE_API_KEY"`
	Concurrency int    `toml:"concurrency" env:"CHAPTRACK_TRANSLATE_CONCURRENCY"`
	BatchSize   int    `toml:"batch_size" env:"CHAPTRACK_TRANSLATE_BATCH_SIZE"`
}

// APIKeys are the per-provider keys read from the environment.
type APIKeys struct {
	Gemini    string `env:"GEMINI_API_KEY"`
	OpenAI    string `env:"OPENAI_API_KEY"`
	Anthropic string `env:"ANTHROPIC_API_KEY"`
}

// Default returns a Config populated with built-in defaults.
func Default() Config {
	return Config{
		TimeScale: 600,
		Search: SearchConfig{
			Wrap: true,
		},
		Translate: TranslateConfig{
			Provider:    "gemini",
			Concurrency: 3,
			BatchSize:   50,
		},
	}
}

// DefaultConfigPath returns the per-user config location.
func DefaultConfigPath() (string, error) {
	if base, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && strings.TrimSpace(base) != "" {
		return expandPath(filepath.Join(base, "chaptrack", "config.toml"))
	}
	return expandPath("~/.config/chaptrack/config.toml")
}

// Load reads the config at path (or the default location when path is
// empty), applies environment overrides, and validates the result. A
// missing file yields the defaults. It also returns the resolved path and
// whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, "", false, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func (c *Config) normalize() error {
	var err error
	if c.FFmpeg.FFmpegPath, err = expandPath(strings.TrimSpace(c.FFmpeg.FFmpegPath)); err != nil {
		return err
	}
	if c.FFmpeg.FFprobePath, err = expandPath(strings.TrimSpace(c.FFmpeg.FFprobePath)); err != nil {
		return err
	}
	c.Translate.Provider = strings.ToLower(strings.TrimSpace(c.Translate.Provider))
	c.Translate.Model = strings.TrimSpace(c.Translate.Model)
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.TimeScale <= 0 {
		return fmt.Errorf("time_scale must be positive, got %d", c.TimeScale)
	}
	if c.Translate.Concurrency <= 0 {
		return fmt.Errorf("translate.concurrency must be positive, got %d", c.Translate.Concurrency)
	}
	if c.Translate.BatchSize <= 0 {
		return fmt.Errorf("translate.batch_size must be positive, got %d", c.Translate.BatchSize)
	}
	switch c.Translate.Provider {
	case "gemini", "openai", "anthropic":
	default:
		return fmt.Errorf("translate.provider %q is not one of gemini, openai, anthropic", c.Translate.Provider)
	}
	return nil
}

// APIKey returns the key for provider: the configured translate.api_key
// when set, otherwise the provider's own environment variable.
func (c *Config) APIKey(provider string) string {
	if c.Translate.APIKey != "" {
		return c.Translate.APIKey
	}
	switch provider {
	case "gemini":
		return c.Keys.Gemini
	case "openai":
		return c.Keys.OpenAI
	case "anthropic":
		return c.Keys.Anthropic
	}
	return ""
}

// Encode writes c as TOML. The translate api_key is redacted.
func (c *Config) Encode() ([]byte, error) {
	out := *c
	if out.Translate.APIKey != "" {
		out.Translate.APIKey = "<redacted>"
	}
	return toml.Marshal(out)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		path = defaultPath
	}

	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %q is a directory", expanded)
	}
	return expanded, true, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

const sample = `# chaptrack configuration

# Time scale of new movies, in units per second.
time_scale = 600

[search]
case_sensitive = false
wrap = true
backward = false

[ffmpeg]
# Leave empty to look up ffmpeg and ffprobe on PATH.
ffmpeg_path = ""
ffprobe_path = ""
# Download a prebuilt ffmpeg into the user cache when none is found.
auto_download = false

[translate]
# gemini, openai or anthropic
provider = "gemini"
model = ""
# Falls back to GEMINI_API_KEY, OPENAI_API_KEY or ANTHROPIC_API_KEY.
api_key = ""
concurrency = 3
batch_size = 50
`

// CreateSample writes a commented sample configuration to path. An
// existing file is left alone.
func CreateSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config %q already exists", path)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
