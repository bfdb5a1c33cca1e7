package config

import (
	"sort"
	"time"
)

var Presets = map[string]map[string]*Config{
	"greenhouse": {
		"summer": {
			Integrator: "rk4",
			Crop: CropConfig{
				InitialDryWeight: DefaultInitialDryWeight, Density: 72,
				Interval: Duration(DefaultInterval), Interception: "beer-lambert",
			},
			Strategy: StrategyConfig{Daily: DailyConfig{
				Days: 35, Sunrise: 5, Photoperiod: 16,
				DayTemp: 24, NightTemp: 18, PeakRad: 400,
				DayCO2: 600, NightCO2: 420,
			}},
			Plot: PlotConfig{Length: 12, Width: 8},
		},
		"spring": {
			Integrator: "rk4",
			Crop: CropConfig{
				InitialDryWeight: DefaultInitialDryWeight, Density: 85,
				Interval: Duration(DefaultInterval), Interception: "beer-lambert",
			},
			Strategy: StrategyConfig{Daily: DailyConfig{
				Days: 42, Sunrise: 6, Photoperiod: 13,
				DayTemp: 21, NightTemp: 15, PeakRad: 260,
				DayCO2: 800, NightCO2: 450,
			}},
			Plot: PlotConfig{Length: 12, Width: 8},
		},
		"winter": {
			Integrator: "rk4",
			Crop: CropConfig{
				InitialDryWeight: DefaultInitialDryWeight, Density: 90,
				Interval: Duration(DefaultInterval), Interception: "beer-lambert",
			},
			Strategy: StrategyConfig{Daily: DailyConfig{
				Days: 55, Sunrise: 8, Photoperiod: 9,
				DayTemp: 18, NightTemp: 12, PeakRad: 120,
				DayCO2: 1000, NightCO2: 500,
			}},
			Plot: PlotConfig{Length: 12, Width: 8},
		},
	},
	"vertical": {
		"standard": {
			Integrator: "rk4",
			Crop: CropConfig{
				InitialDryWeight: DefaultInitialDryWeight, Density: 100,
				Interval: Duration(DefaultInterval), Interception: "beer-lambert",
			},
			Strategy: StrategyConfig{Daily: DailyConfig{
				Days: 30, Sunrise: 6, Photoperiod: 16,
				DayTemp: 22, NightTemp: 19, PeakRad: 220,
				DayCO2: 1200, NightCO2: 1200,
			}},
			Plot: PlotConfig{Length: 4, Width: 2},
		},
		"high-density": {
			Integrator: "rk4",
			Crop: CropConfig{
				InitialDryWeight: DefaultInitialDryWeight, Density: 140,
				Interval: Duration(2 * time.Minute), Interception: "beer-lambert",
			},
			Strategy: StrategyConfig{Daily: DailyConfig{
				Days: 28, Sunrise: 6, Photoperiod: 18,
				DayTemp: 23, NightTemp: 20, PeakRad: 260,
				DayCO2: 1500, NightCO2: 1500,
			}},
			Plot: PlotConfig{Length: 4, Width: 2},
		},
		"economy": {
			Integrator: "rk4",
			Crop: CropConfig{
				InitialDryWeight: DefaultInitialDryWeight, Density: 110,
				Interval: Duration(DefaultInterval), Interception: "beer-lambert",
			},
			Strategy: StrategyConfig{Daily: DailyConfig{
				Days: 38, Sunrise: 6, Photoperiod: 12,
				DayTemp: 20, NightTemp: 17, PeakRad: 160,
				DayCO2: 900, NightCO2: 900,
			}},
			Plot: PlotConfig{Length: 4, Width: 2},
		},
	},
}

func GetPreset(system, preset string) *Config {
	systemPresets, ok := Presets[system]
	if !ok {
		return nil
	}
	cfg, ok := systemPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(system string) []string {
	systemPresets, ok := Presets[system]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(systemPresets))
	for name := range systemPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListSystems() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
