package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Integrator != "rk4" {
		t.Errorf("expected integrator rk4, got %s", cfg.Integrator)
	}
	if cfg.Crop.InitialDryWeight != 0.04 {
		t.Errorf("expected initial dry weight 0.04, got %g", cfg.Crop.InitialDryWeight)
	}
	if cfg.Crop.Density <= 0 {
		t.Error("density should be positive")
	}
	if cfg.Crop.Interval.Std() != 5*time.Minute {
		t.Errorf("expected 5m interval, got %s", cfg.Crop.Interval.Std())
	}
	if cfg.Strategy.Daily.Days <= 0 {
		t.Error("daily cycle should span at least one day")
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	partial := "crop:\n  density: 120\nstrategy:\n  daily:\n    day_temp: 25\n"
	if err := os.WriteFile(path, []byte(partial), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Crop.Density != 120 {
		t.Errorf("expected density 120, got %g", cfg.Crop.Density)
	}
	if cfg.Strategy.Daily.DayTemp != 25 {
		t.Errorf("expected day temp 25, got %g", cfg.Strategy.Daily.DayTemp)
	}
	if cfg.Crop.InitialDryWeight != DefaultInitialDryWeight {
		t.Errorf("unset field lost default: %g", cfg.Crop.InitialDryWeight)
	}
	if cfg.Integrator != "rk4" {
		t.Errorf("unset field lost default: %s", cfg.Integrator)
	}
}

func TestLoadParsesDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("crop:\n  interval: 15m\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Crop.Interval.Std() != 15*time.Minute {
		t.Errorf("expected 15m, got %s", cfg.Crop.Interval.Std())
	}
}

func TestLoadBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("crop:\n  interval: fast\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	} else if !strings.Contains(err.Error(), "parse duration") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSaveRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := DefaultConfig()
	cfg.Crop.Density = 140
	cfg.Render.Enabled = true
	cfg.Render.Timeout = Duration(30 * time.Second)
	cfg.Telemetry.PlotID = "bay-7"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "interval: 5m0s") {
		t.Error("interval not written as a human-readable duration")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Crop.Density != 140 {
		t.Errorf("density: got %g, expected 140", loaded.Crop.Density)
	}
	if !loaded.Render.Enabled || loaded.Render.Timeout.Std() != 30*time.Second {
		t.Errorf("render config mismatch: %+v", loaded.Render)
	}
	if loaded.Telemetry.PlotID != "bay-7" {
		t.Errorf("plot id: got %s, expected bay-7", loaded.Telemetry.PlotID)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("greenhouse", "winter")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Strategy.Daily.Photoperiod != 9 {
		t.Errorf("expected photoperiod 9, got %d", cfg.Strategy.Daily.Photoperiod)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("greenhouse", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "summer"); cfg != nil {
		t.Error("expected nil for nonexistent system")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("greenhouse")
	want := []string{"spring", "summer", "winter"}
	if len(presets) != len(want) {
		t.Fatalf("expected %d presets, got %d", len(want), len(presets))
	}
	for i := range want {
		if presets[i] != want[i] {
			t.Errorf("preset %d: got %s, expected %s", i, presets[i], want[i])
		}
	}

	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent system")
	}
}

func TestListSystems(t *testing.T) {
	systems := ListSystems()
	if len(systems) != 2 || systems[0] != "greenhouse" || systems[1] != "vertical" {
		t.Errorf("unexpected systems: %v", systems)
	}
}

func TestPresetsAreComplete(t *testing.T) {
	for system, group := range Presets {
		for name, cfg := range group {
			if cfg.Crop.Density <= 0 {
				t.Errorf("%s/%s: density not set", system, name)
			}
			if cfg.Crop.Interval.Std() <= 0 {
				t.Errorf("%s/%s: interval not set", system, name)
			}
			if cfg.Strategy.Daily.Days <= 0 {
				t.Errorf("%s/%s: days not set", system, name)
			}
			if cfg.Strategy.Daily.Photoperiod <= 0 || cfg.Strategy.Daily.Photoperiod > 24 {
				t.Errorf("%s/%s: photoperiod out of range", system, name)
			}
		}
	}
}

func TestVerticalPresetsHoldCO2Constant(t *testing.T) {
	for name, cfg := range Presets["vertical"] {
		d := cfg.Strategy.Daily
		if d.DayCO2 != d.NightCO2 {
			t.Errorf("%s: sealed room should hold co2 flat, got %g/%g", name, d.DayCO2, d.NightCO2)
		}
	}
}
