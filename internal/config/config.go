package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	Input           string `mapstructure:"input" yaml:"input"`
	OutputDir       string `mapstructure:"output_dir" yaml:"output_dir"`
	LeasesOutput    string `mapstructure:"leases_output" yaml:"leases_output"`
	BuildingsOutput string `mapstructure:"buildings_output" yaml:"buildings_output"`

	// Table parsing
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`
	SheetName          string `mapstructure:"sheet_name" yaml:"sheet_name"`
	SheetIndex         int    `mapstructure:"sheet_index" yaml:"sheet_index"`

	// Map framing
	MapCenterLat float64 `mapstructure:"map_center_lat" yaml:"map_center_lat"`
	MapCenterLon float64 `mapstructure:"map_center_lon" yaml:"map_center_lon"`
	MapZoom      int     `mapstructure:"map_zoom" yaml:"map_zoom"`
	MapTiles     string  `mapstructure:"map_tiles" yaml:"map_tiles"`

	// Filters and normalization
	SFQuantile   float64 `mapstructure:"sf_quantile" yaml:"sf_quantile"`
	SFStep       float64 `mapstructure:"sf_step" yaml:"sf_step"`
	ScoreStep    float64 `mapstructure:"score_step" yaml:"score_step"`
	NeutralScore float64 `mapstructure:"neutral_score" yaml:"neutral_score"`

	// Column patterns; empty means the built-in list.
	SafetyPatterns        []string `mapstructure:"safety_patterns" yaml:"safety_patterns,omitempty"`
	AccessibilityPatterns []string `mapstructure:"accessibility_patterns" yaml:"accessibility_patterns,omitempty"`
	SqftPatterns          []string `mapstructure:"sqft_patterns" yaml:"sqft_patterns,omitempty"`

	// Explorer
	HTTPAddr           string `mapstructure:"http_addr" yaml:"http_addr"`
	ShutdownTimeoutSec int    `mapstructure:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Optional S3 publishing
	S3Bucket string `mapstructure:"s3_bucket" yaml:"s3_bucket,omitempty"`
	S3Prefix string `mapstructure:"s3_prefix" yaml:"s3_prefix,omitempty"`
	S3Region string `mapstructure:"s3_region" yaml:"s3_region,omitempty"`
}

var defaults = map[string]any{
	"input":                  "manhattan_geo_access.csv",
	"output_dir":             ".",
	"leases_output":          "leases_map.html",
	"buildings_output":       "buildings_map.html",
	"delimiter":              "",
	"decimal_separator":      ".",
	"thousands_separator":    ",",
	"sheet_name":             "",
	"sheet_index":            1,
	"map_center_lat":         40.75,
	"map_center_lon":         -73.97,
	"map_zoom":               12,
	"map_tiles":              "cartodbpositron",
	"sf_quantile":            0.99,
	"sf_step":                500.0,
	"score_step":             0.01,
	"neutral_score":          0.5,
	"safety_patterns":        []string{},
	"accessibility_patterns": []string{},
	"sqft_patterns":          []string{},
	"http_addr":              ":8080",
	"shutdown_timeout_sec":   10,
	"log_level":              "info",
	"log_format":             "text",
	"s3_bucket":              "",
	"s3_prefix":              "",
	"s3_region":              "",
}

// DefaultPath is ~/.leasemap/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".leasemap", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.leasemap/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := newViper()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c, viper.DecodeHook(decodeHook)); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListSeparator separates pattern lists given as one string (env or config set).
// Commas are left alone because they appear in regex quantifiers like {0,2}.
const ListSeparator = ";"

var decodeHook = mapstructure.ComposeDecodeHookFunc(
	mapstructure.StringToTimeDurationHookFunc(),
	mapstructure.StringToSliceHookFunc(ListSeparator),
)

// Validate checks the values that feed scoring and slider bounds. Set applies the
// same rules key by key; Validate covers values read from env and files.
func (c *Global) Validate() error {
	switch {
	case math.IsNaN(c.NeutralScore) || c.NeutralScore < 0 || c.NeutralScore > 1:
		return fmt.Errorf("invalid neutral_score: %v (use [0,1])", c.NeutralScore)
	case !(c.SFQuantile > 0 && c.SFQuantile <= 1):
		return fmt.Errorf("invalid sf_quantile: %v (use (0,1])", c.SFQuantile)
	case !(c.SFStep > 0):
		return fmt.Errorf("invalid sf_step: %v", c.SFStep)
	case !(c.ScoreStep > 0 && c.ScoreStep <= 1):
		return fmt.Errorf("invalid score_step: %v", c.ScoreStep)
	case c.SheetIndex < 0:
		return fmt.Errorf("invalid sheet_index: %d", c.SheetIndex)
	case c.ShutdownTimeoutSec < 0:
		return fmt.Errorf("invalid shutdown_timeout_sec: %d", c.ShutdownTimeoutSec)
	}
	return nil
}

// Defaults returns the built-in configuration, ignoring env and files.
func Defaults() *Global {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("LEASEMAP")
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	return v
}

// Keys lists every configuration key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the string form of key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "input":
		return c.Input, nil
	case "output_dir":
		return c.OutputDir, nil
	case "leases_output":
		return c.LeasesOutput, nil
	case "buildings_output":
		return c.BuildingsOutput, nil
	case "delimiter":
		return c.Delimiter, nil
	case "decimal_separator":
		return c.DecimalSeparator, nil
	case "thousands_separator":
		return c.ThousandsSeparator, nil
	case "sheet_name":
		return c.SheetName, nil
	case "sheet_index":
		return strconv.Itoa(c.SheetIndex), nil
	case "map_center_lat":
		return formatFloat(c.MapCenterLat), nil
	case "map_center_lon":
		return formatFloat(c.MapCenterLon), nil
	case "map_zoom":
		return strconv.Itoa(c.MapZoom), nil
	case "map_tiles":
		return c.MapTiles, nil
	case "sf_quantile":
		return formatFloat(c.SFQuantile), nil
	case "sf_step":
		return formatFloat(c.SFStep), nil
	case "score_step":
		return formatFloat(c.ScoreStep), nil
	case "neutral_score":
		return formatFloat(c.NeutralScore), nil
	case "safety_patterns":
		return strings.Join(c.SafetyPatterns, ListSeparator), nil
	case "accessibility_patterns":
		return strings.Join(c.AccessibilityPatterns, ListSeparator), nil
	case "sqft_patterns":
		return strings.Join(c.SqftPatterns, ListSeparator), nil
	case "http_addr":
		return c.HTTPAddr, nil
	case "shutdown_timeout_sec":
		return strconv.Itoa(c.ShutdownTimeoutSec), nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	case "s3_bucket":
		return c.S3Bucket, nil
	case "s3_prefix":
		return c.S3Prefix, nil
	case "s3_region":
		return c.S3Region, nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Set parses val and assigns it to key. Pattern lists are separated by ListSeparator.
func (c *Global) Set(key, val string) error {
	switch key {
	case "input":
		c.Input = val
	case "output_dir":
		c.OutputDir = val
	case "leases_output":
		c.LeasesOutput = val
	case "buildings_output":
		c.BuildingsOutput = val
	case "delimiter":
		if val != "" && val != "tab" && val != `\t` && len([]rune(val)) != 1 {
			return fmt.Errorf("invalid delimiter %q: use a single character or 'tab'", val)
		}
		c.Delimiter = val
	case "decimal_separator":
		if len([]rune(val)) > 1 {
			return fmt.Errorf("invalid decimal_separator %q", val)
		}
		c.DecimalSeparator = val
	case "thousands_separator":
		if len([]rune(val)) > 1 {
			return fmt.Errorf("invalid thousands_separator %q", val)
		}
		c.ThousandsSeparator = val
	case "sheet_name":
		c.SheetName = val
	case "sheet_index":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for sheet_index: %v", val)
		}
		c.SheetIndex = i
	case "map_center_lat":
		f, err := parseFloatIn(val, -90, 90)
		if err != nil {
			return fmt.Errorf("invalid map_center_lat: %w", err)
		}
		c.MapCenterLat = f
	case "map_center_lon":
		f, err := parseFloatIn(val, -180, 180)
		if err != nil {
			return fmt.Errorf("invalid map_center_lon: %w", err)
		}
		c.MapCenterLon = f
	case "map_zoom":
		i, err := strconv.Atoi(val)
		if err != nil || i < 1 || i > 20 {
			return fmt.Errorf("invalid map_zoom: %v (use 1-20)", val)
		}
		c.MapZoom = i
	case "map_tiles":
		c.MapTiles = val
	case "sf_quantile":
		f, err := parseFloatIn(val, 0, 1)
		if err != nil || f == 0 {
			return fmt.Errorf("invalid sf_quantile: %v (use (0,1])", val)
		}
		c.SFQuantile = f
	case "sf_step":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid float for sf_step: %v", val)
		}
		c.SFStep = f
	case "score_step":
		f, err := parseFloatIn(val, 0, 1)
		if err != nil || f == 0 {
			return fmt.Errorf("invalid score_step: %v", val)
		}
		c.ScoreStep = f
	case "neutral_score":
		f, err := parseFloatIn(val, 0, 1)
		if err != nil {
			return fmt.Errorf("invalid neutral_score: %w", err)
		}
		c.NeutralScore = f
	case "safety_patterns":
		c.SafetyPatterns = splitList(val)
	case "accessibility_patterns":
		c.AccessibilityPatterns = splitList(val)
	case "sqft_patterns":
		c.SqftPatterns = splitList(val)
	case "http_addr":
		c.HTTPAddr = val
	case "shutdown_timeout_sec":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for shutdown_timeout_sec: %v", val)
		}
		c.ShutdownTimeoutSec = i
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	case "log_format":
		switch strings.ToLower(val) {
		case "text", "json":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	case "s3_bucket":
		c.S3Bucket = val
	case "s3_prefix":
		c.S3Prefix = val
	case "s3_region":
		c.S3Region = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func parseFloatIn(val string, lo, hi float64) (float64, error) {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, err
	}
	if f < lo || f > hi {
		return 0, fmt.Errorf("%v outside [%v, %v]", f, lo, hi)
	}
	return f, nil
}

func splitList(val string) []string {
	var out []string
	for _, p := range strings.Split(val, ListSeparator) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
