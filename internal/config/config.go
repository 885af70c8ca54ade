package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Backends the frame can drive.
const (
	BackendInky = "inky"
	BackendSim  = "sim"
)

// APIKeyEnv names the variable holding the NASA API key.
const APIKeyEnv = "INKFRAME_APOD_API_KEY"

// Config is the resolved frame configuration. Paths are absolute.
type Config struct {
	// Path is the config file that was read, even when it did not exist.
	Path      string
	Root      string
	StateFile string
	LogFile   string
	EnvFile   string
	Backend   string

	Gallery Gallery
	Apod    Feed
	Xkcd    Feed
	Clock   Clock
	Panel   Panel
	Buttons Buttons
	Metrics Metrics
	Log     Log
	HTTP    HTTP
}

// Gallery configures the local photo slideshow.
type Gallery struct {
	Dir      string
	Interval time.Duration
}

// Feed configures a daily-fetch app.
type Feed struct {
	Dir      string
	MaxFiles int
	ImageURL string
	MetaURL  string
	// APIKey is appended to MetaURL as api_key. Only the APOD feed uses it.
	APIKey   string
	Interval time.Duration
}

// Clock configures the clock app.
type Clock struct {
	TimeURL  string
	Interval time.Duration
	Zone     *time.Location
}

// Panel describes the display. Width and Height size the simulator; the
// hardware panel reports its own.
type Panel struct {
	Width      int
	Height     int
	SPIPort    string
	I2CBus     string
	DCPin      string
	ResetPin   string
	BusyPin    string
	Saturation uint
}

// Buttons names the GPIO pins of the button bank, in A..E order.
type Buttons struct {
	Pins     [5]string
	LEDs     [5]string
	WarnPin  string
	Debounce time.Duration
}

// Metrics configures the node-exporter textfile.
type Metrics struct {
	Textfile string
}

// Log configures logging.
type Log struct {
	Level   string
	Journal bool
}

// HTTP configures the network client.
type HTTP struct {
	Timeout time.Duration
}

const (
	defaultConfigPath = "~/.config/inkframe/config.toml"
	defaultEnvFile    = "~/.config/inkframe/inkframe.env"
	defaultRoot       = "~/.local/share/inkframe"
	defaultAPIKey     = "DEMO_KEY"

	defaultApodImageURL = "https://pimoroni.github.io/feed2image/nasa-apod-800x480-daily.jpg"
	defaultApodMetaURL  = "https://api.nasa.gov/planetary/apod"
	defaultXkcdImageURL = "https://pimoroni.github.io/feed2image/xkcd-daily.jpg"
	defaultXkcdMetaURL  = "https://xkcd.com/info.0.json"
	defaultTimeURL      = "https://www.google.com/"
)

type rawConfig struct {
	Root      string `toml:"root"`
	StateFile string `toml:"state_file"`
	LogFile   string `toml:"log_file"`
	EnvFile   string `toml:"env_file"`
	Backend   string `toml:"backend"`

	Gallery struct {
		Dir             string `toml:"dir"`
		IntervalMinutes int    `toml:"interval_minutes"`
	} `toml:"gallery"`
	Apod  rawFeed `toml:"apod"`
	Xkcd  rawFeed `toml:"xkcd"`
	Clock struct {
		TimeURL         string   `toml:"time_url"`
		IntervalMinutes int      `toml:"interval_minutes"`
		Zone            string   `toml:"zone"`
		UTCOffsetHours  *float64 `toml:"utc_offset_hours"`
	} `toml:"clock"`
	Panel struct {
		Width      int    `toml:"width"`
		Height     int    `toml:"height"`
		SPIPort    string `toml:"spi_port"`
		I2CBus     string `toml:"i2c_bus"`
		DCPin      string `toml:"dc_pin"`
		ResetPin   string `toml:"reset_pin"`
		BusyPin    string `toml:"busy_pin"`
		Saturation *uint  `toml:"saturation"`
	} `toml:"panel"`
	Buttons struct {
		Pins       []string `toml:"pins"`
		LEDs       []string `toml:"leds"`
		WarnPin    string   `toml:"warn_pin"`
		DebounceMS int      `toml:"debounce_ms"`
	} `toml:"buttons"`
	Metrics struct {
		Textfile string `toml:"textfile"`
	} `toml:"metrics"`
	Log struct {
		Level   string `toml:"level"`
		Journal *bool  `toml:"journal"`
	} `toml:"log"`
	HTTP struct {
		TimeoutSeconds int `toml:"timeout_seconds"`
	} `toml:"http"`
}

type rawFeed struct {
	Dir             string `toml:"dir"`
	MaxFiles        int    `toml:"max_files"`
	ImageURL        string `toml:"image_url"`
	MetaURL         string `toml:"meta_url"`
	IntervalMinutes int    `toml:"interval_minutes"`
}

// Load locates and parses the config file, falling back to defaults when it
// is missing. Secrets come from the environment or the env file.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw rawConfig
	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg, err := build(raw)
	if err != nil {
		return Config{}, err
	}
	cfg.Path = resolved

	key, err := lookupSecret(APIKeyEnv, cfg.EnvFile)
	if err != nil {
		return Config{}, err
	}
	cfg.Apod.APIKey = orDefault(key, defaultAPIKey)
	return cfg, nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	cfg, err := build(rawConfig{})
	if err != nil {
		panic(err)
	}
	cfg.Apod.APIKey = defaultAPIKey
	return cfg
}

func build(raw rawConfig) (Config, error) {
	var cfg Config
	cfg.Root = mustExpand(orDefault(raw.Root, defaultRoot))
	cfg.StateFile = underRoot(cfg.Root, raw.StateFile, "state.json")
	cfg.LogFile = underRoot(cfg.Root, raw.LogFile, "inkframe.log")
	cfg.EnvFile = mustExpand(orDefault(raw.EnvFile, defaultEnvFile))

	cfg.Backend = strings.ToLower(orDefault(raw.Backend, BackendInky))
	if cfg.Backend != BackendInky && cfg.Backend != BackendSim {
		return Config{}, fmt.Errorf("parse config: unknown backend %q", raw.Backend)
	}

	cfg.Gallery = Gallery{
		Dir:      underRoot(cfg.Root, raw.Gallery.Dir, "images"),
		Interval: minutes(raw.Gallery.IntervalMinutes, 15),
	}
	cfg.Apod = feed(cfg.Root, raw.Apod, "nasa_apod", defaultApodImageURL, defaultApodMetaURL)
	cfg.Xkcd = feed(cfg.Root, raw.Xkcd, "xkcd", defaultXkcdImageURL, defaultXkcdMetaURL)

	loc, err := zone(raw.Clock.Zone, raw.Clock.UTCOffsetHours)
	if err != nil {
		return Config{}, err
	}
	cfg.Clock = Clock{
		TimeURL:  orDefault(raw.Clock.TimeURL, defaultTimeURL),
		Interval: minutes(raw.Clock.IntervalMinutes, 10),
		Zone:     loc,
	}

	cfg.Panel = Panel{
		Width:      positive(raw.Panel.Width, 800),
		Height:     positive(raw.Panel.Height, 480),
		SPIPort:    orDefault(raw.Panel.SPIPort, "SPI0.0"),
		I2CBus:     strings.TrimSpace(raw.Panel.I2CBus),
		DCPin:      orDefault(raw.Panel.DCPin, "GPIO22"),
		ResetPin:   orDefault(raw.Panel.ResetPin, "GPIO27"),
		BusyPin:    orDefault(raw.Panel.BusyPin, "GPIO17"),
		Saturation: 50,
	}
	if raw.Panel.Saturation != nil {
		if *raw.Panel.Saturation > 100 {
			return Config{}, fmt.Errorf("parse config: panel saturation %d out of range", *raw.Panel.Saturation)
		}
		cfg.Panel.Saturation = *raw.Panel.Saturation
	}

	cfg.Buttons = Buttons{
		Pins:     [5]string{"GPIO5", "GPIO6", "GPIO16", "GPIO24", "GPIO26"},
		WarnPin:  strings.TrimSpace(raw.Buttons.WarnPin),
		Debounce: time.Duration(positive(raw.Buttons.DebounceMS, 50)) * time.Millisecond,
	}
	if len(raw.Buttons.Pins) > 0 {
		if len(raw.Buttons.Pins) != 5 {
			return Config{}, fmt.Errorf("parse config: buttons.pins needs 5 entries, got %d", len(raw.Buttons.Pins))
		}
		for i, p := range raw.Buttons.Pins {
			cfg.Buttons.Pins[i] = strings.TrimSpace(p)
		}
	}
	if len(raw.Buttons.LEDs) > 5 {
		return Config{}, fmt.Errorf("parse config: buttons.leds has %d entries, want at most 5", len(raw.Buttons.LEDs))
	}
	for i, p := range raw.Buttons.LEDs {
		cfg.Buttons.LEDs[i] = strings.TrimSpace(p)
	}

	if raw.Metrics.Textfile != "" {
		cfg.Metrics.Textfile = mustExpand(raw.Metrics.Textfile)
	}
	cfg.Log = Log{Level: strings.ToLower(orDefault(raw.Log.Level, "info")), Journal: true}
	if raw.Log.Journal != nil {
		cfg.Log.Journal = *raw.Log.Journal
	}
	cfg.HTTP.Timeout = time.Duration(positive(raw.HTTP.TimeoutSeconds, 60)) * time.Second
	return cfg, nil
}

func feed(root string, raw rawFeed, dir, imageURL, metaURL string) Feed {
	return Feed{
		Dir:      underRoot(root, raw.Dir, dir),
		MaxFiles: positive(raw.MaxFiles, 10),
		ImageURL: orDefault(raw.ImageURL, imageURL),
		MetaURL:  orDefault(raw.MetaURL, metaURL),
		Interval: minutes(raw.IntervalMinutes, 240),
	}
}

// KeyedMetaURL returns MetaURL with the API key added, when one is set.
func (f Feed) KeyedMetaURL() string {
	if f.APIKey == "" {
		return f.MetaURL
	}
	u, err := url.Parse(f.MetaURL)
	if err != nil {
		return f.MetaURL
	}
	q := u.Query()
	q.Set("api_key", f.APIKey)
	u.RawQuery = q.Encode()
	return u.String()
}

func zone(name string, offsetHours *float64) (*time.Location, error) {
	name = strings.TrimSpace(name)
	switch {
	case name != "":
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("parse config: clock zone: %w", err)
		}
		return loc, nil
	case offsetHours != nil:
		secs := int(*offsetHours * 3600)
		return time.FixedZone(fmt.Sprintf("UTC%+g", *offsetHours), secs), nil
	default:
		return time.Local, nil
	}
}

// lookupSecret prefers the process environment over the env file. A missing
// env file is not an error.
func lookupSecret(name, envFile string) (string, error) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v, nil
	}
	values, err := godotenv.Read(envFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read env file: %w", err)
	}
	return strings.TrimSpace(values[name]), nil
}

func underRoot(root, value, def string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return filepath.Join(root, def)
	}
	if strings.HasPrefix(value, "~") || filepath.IsAbs(value) {
		return mustExpand(value)
	}
	return filepath.Join(root, value)
}

func orDefault(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}

func positive(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func minutes(v, def int) time.Duration {
	return time.Duration(positive(v, def)) * time.Minute
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
