package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultInitialDryWeight = 0.04
	DefaultDensity          = 90.0
	DefaultInterval         = 5 * time.Minute
	DefaultDays             = 40
	DefaultPlotLength       = 10.0
	DefaultPlotWidth        = 10.0
)

type Config struct {
	Crop       CropConfig      `yaml:"crop"`
	Integrator string          `yaml:"integrator"`
	Strategy   StrategyConfig  `yaml:"strategy"`
	Plot       PlotConfig      `yaml:"plot"`
	Export     ExportConfig    `yaml:"export"`
	Render     RenderConfig    `yaml:"render"`
	Telemetry  TelemetryConfig `yaml:"telemetry"`
	Seed       int64           `yaml:"seed"`
}

type CropConfig struct {
	InitialDryWeight float64  `yaml:"initial_dry_weight"`
	Density          float64  `yaml:"density"`
	Interval         Duration `yaml:"interval"`
	Interception     string   `yaml:"interception"`
	ExternalFraction float64  `yaml:"external_fraction"`
	ParamFile        string   `yaml:"param_file"`
}

type StrategyConfig struct {
	File  string      `yaml:"file"`
	Daily DailyConfig `yaml:"daily"`
}

type DailyConfig struct {
	Days        int     `yaml:"days"`
	Sunrise     int     `yaml:"sunrise"`
	Photoperiod int     `yaml:"photoperiod"`
	DayTemp     float64 `yaml:"day_temp"`
	NightTemp   float64 `yaml:"night_temp"`
	PeakRad     float64 `yaml:"peak_rad"`
	DayCO2      float64 `yaml:"day_co2"`
	NightCO2    float64 `yaml:"night_co2"`
}

type PlotConfig struct {
	Length float64 `yaml:"length"`
	Width  float64 `yaml:"width"`
}

type ExportConfig struct {
	CSV    string `yaml:"csv"`
	JSON   string `yaml:"json"`
	SVG    string `yaml:"svg"`
	Record string `yaml:"record"`
}

type RenderConfig struct {
	Enabled bool     `yaml:"enabled"`
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
	OutDir  string   `yaml:"out_dir"`
}

type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Broker  string `yaml:"broker"`
	PlotID  string `yaml:"plot_id"`
	QoS     byte   `yaml:"qos"`
}

// Duration reads and writes as "5m" or "1h30m" in YAML instead of
// nanosecond integers.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Crop: CropConfig{
			InitialDryWeight: DefaultInitialDryWeight,
			Density:          DefaultDensity,
			Interval:         Duration(DefaultInterval),
			Interception:     "beer-lambert",
		},
		Integrator: "rk4",
		Strategy: StrategyConfig{
			Daily: DailyConfig{
				Days:        DefaultDays,
				Sunrise:     6,
				Photoperiod: 14,
				DayTemp:     21,
				NightTemp:   16,
				PeakRad:     250,
				DayCO2:      800,
				NightCO2:    420,
			},
		},
		Plot: PlotConfig{
			Length: DefaultPlotLength,
			Width:  DefaultPlotWidth,
		},
		Render: RenderConfig{
			URL:     "http://127.0.0.1:8080",
			Timeout: Duration(5 * time.Second),
			OutDir:  "frames",
		},
		Telemetry: TelemetryConfig{
			Broker: "tcp://127.0.0.1:1883",
			PlotID: "greenhouse-1",
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
