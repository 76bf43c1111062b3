package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// dirName is the per-user config directory under $HOME.
const dirName = ".surfloom"

// Global configuration structure.
type Global struct {
	DashboardsDir string `mapstructure:"dashboards_dir" yaml:"dashboards_dir"`
	OutputDir     string `mapstructure:"output_dir" yaml:"output_dir"`

	// Chart defaults; per-view flags override them.
	GridResolution   int     `mapstructure:"grid_resolution" yaml:"grid_resolution"`
	Colorscale       string  `mapstructure:"colorscale" yaml:"colorscale"`
	MarkerColorscale string  `mapstructure:"marker_colorscale" yaml:"marker_colorscale"`
	ShowPins         bool    `mapstructure:"show_pins" yaml:"show_pins"`
	ShowContours     bool    `mapstructure:"show_contours" yaml:"show_contours"`
	ChartWidthCm     float64 `mapstructure:"chart_width_cm" yaml:"chart_width_cm"`
	ChartHeightCm    float64 `mapstructure:"chart_height_cm" yaml:"chart_height_cm"`
	ImageFormat      string  `mapstructure:"image_format" yaml:"image_format"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Keys lists the settable keys in display order.
var Keys = []string{
	"dashboards_dir", "output_dir", "grid_resolution", "colorscale", "marker_colorscale",
	"show_pins", "show_contours", "chart_width_cm", "chart_height_cm", "image_format", "log_level",
}

func homeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.surfloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := homeDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
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
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SURFLOOM")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("dashboards_dir", "")
	v.SetDefault("output_dir", "")
	v.SetDefault("grid_resolution", 30)
	v.SetDefault("colorscale", "YlGnBu")
	v.SetDefault("marker_colorscale", "RdYlGn")
	v.SetDefault("show_pins", true)
	v.SetDefault("show_contours", true)
	v.SetDefault("chart_width_cm", 16.0)
	v.SetDefault("chart_height_cm", 12.0)
	v.SetDefault("image_format", "png")
	v.SetDefault("log_level", "info")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := homeDir()
		if err != nil {
			return nil, err
		}
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve dashboards_dir default: ~/.surfloom/dashboards
	if c.DashboardsDir == "" {
		dir, err := homeDir()
		if err != nil {
			return nil, err
		}
		c.DashboardsDir = filepath.Join(dir, "dashboards")
	}
	return &c, nil
}

// Get returns the string form of key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "dashboards_dir":
		return c.DashboardsDir, nil
	case "output_dir":
		return c.OutputDir, nil
	case "grid_resolution":
		return strconv.Itoa(c.GridResolution), nil
	case "colorscale":
		return c.Colorscale, nil
	case "marker_colorscale":
		return c.MarkerColorscale, nil
	case "show_pins":
		return strconv.FormatBool(c.ShowPins), nil
	case "show_contours":
		return strconv.FormatBool(c.ShowContours), nil
	case "chart_width_cm":
		return strconv.FormatFloat(c.ChartWidthCm, 'g', -1, 64), nil
	case "chart_height_cm":
		return strconv.FormatFloat(c.ChartHeightCm, 'g', -1, 64), nil
	case "image_format":
		return c.ImageFormat, nil
	case "log_level":
		return c.LogLevel, nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Set parses val for key and stores it. Values are checked for type and
// range only; colorscale names are checked by the view layer.
func (c *Global) Set(key, val string) error {
	switch key {
	case "dashboards_dir":
		c.DashboardsDir = val
	case "output_dir":
		c.OutputDir = val
	case "grid_resolution":
		i, err := strconv.Atoi(val)
		if err != nil || i < 2 {
			return fmt.Errorf("invalid grid_resolution: %s (need an integer >= 2)", val)
		}
		c.GridResolution = i
	case "colorscale":
		c.Colorscale = val
	case "marker_colorscale":
		c.MarkerColorscale = val
	case "show_pins", "show_contours":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for %s: %v", key, val)
		}
		if key == "show_pins" {
			c.ShowPins = b
		} else {
			c.ShowContours = b
		}
	case "chart_width_cm", "chart_height_cm":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid size for %s: %v", key, val)
		}
		if key == "chart_width_cm" {
			c.ChartWidthCm = f
		} else {
			c.ChartHeightCm = f
		}
	case "image_format":
		switch f := strings.ToLower(val); f {
		case "png", "svg", "pdf":
			c.ImageFormat = f
		default:
			return fmt.Errorf("invalid image_format: %s (use png, svg or pdf)", val)
		}
	case "log_level":
		switch l := strings.ToLower(val); l {
		case "debug", "info", "warn", "error":
			c.LogLevel = l
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}
