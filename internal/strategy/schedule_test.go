package strategy

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "strategy.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, strings.Join([]string{
		"temp,rad,co2,density,plot,hour",
		"22,200,800,90,A3,0",
		"20.5,0,400,90,A3,1",
	}, "\n"))

	sched, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sched) != 2 {
		t.Fatalf("got %d points, expected 2", len(sched))
	}

	p := sched[0]
	if p.Temp != 22 || p.Rad != 200 || p.CO2 != 800 || p.Density != 90 || p.Hour != 0 {
		t.Errorf("unexpected first point: %+v", p)
	}
	if sched[1].Temp != 20.5 || sched[1].Hour != 1 {
		t.Errorf("unexpected second point: %+v", sched[1])
	}
}

func TestLoadCSVHeaderCase(t *testing.T) {
	path := writeCSV(t, "Temp, Rad ,CO2,Density,Hour\n22,200,800,90,0\n")

	sched, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sched[0].Rad != 200 {
		t.Errorf("rad = %v, expected 200", sched[0].Rad)
	}
}

func TestLoadCSVMissingColumn(t *testing.T) {
	path := writeCSV(t, "temp,rad,co2,hour\n22,200,800,0\n")

	_, err := LoadCSV(path)
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("got %v, expected ErrMissingColumn", err)
	}
	if !strings.Contains(err.Error(), "density") {
		t.Errorf("error does not name the column: %q", err.Error())
	}
}

func TestLoadCSVBadValue(t *testing.T) {
	path := writeCSV(t, "temp,rad,co2,density,hour\n22,200,800,90,0\n22,warm,800,90,1\n")

	_, err := LoadCSV(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "row 3") || !strings.Contains(err.Error(), "rad") {
		t.Errorf("error does not locate the bad field: %q", err.Error())
	}
}

func TestLoadCSVEmpty(t *testing.T) {
	path := writeCSV(t, "temp,rad,co2,density,hour\n")

	if _, err := LoadCSV(path); err == nil {
		t.Fatal("expected error for schedule without data rows")
	}

	if _, err := LoadCSV(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestPointControl(t *testing.T) {
	p := Point{Temp: 22, Rad: 200, CO2: 800, Density: 90, Hour: 5}
	u := p.Control()

	if len(u) != 4 {
		t.Fatalf("control length = %d, expected 4", len(u))
	}
	if u[0] != 22 || u[1] != 200 || u[2] != 800 || u[3] != 90 {
		t.Errorf("control = %v, order must be temp, rad, co2, density", u)
	}
}

func TestScheduleFramesAndDays(t *testing.T) {
	sched := Schedule{
		{Temp: 22, Hour: 0},
		{Temp: 22, Hour: 25},
	}

	frames := sched.Frames()
	if len(frames) != 2 {
		t.Fatalf("got %d frames, expected 2", len(frames))
	}
	if frames[1].Hour != 25 {
		t.Errorf("frame hour = %d, expected 25", frames[1].Hour)
	}
	if sched.Days() != 2 {
		t.Errorf("Days() = %d, expected 2", sched.Days())
	}
	if (Schedule{}).Days() != 0 {
		t.Error("empty schedule should span 0 days")
	}
}

func TestDaily(t *testing.T) {
	spec := DailySpec{
		Days:        2,
		Interval:    time.Hour,
		Sunrise:     6,
		Photoperiod: 12,
		DayTemp:     24,
		NightTemp:   16,
		PeakRad:     300,
		DayCO2:      800,
		NightCO2:    400,
		Density:     90,
	}

	sched := Daily(spec)
	if len(sched) != 48 {
		t.Fatalf("got %d points, expected 48", len(sched))
	}

	night := sched[2] // 02:00
	if night.Temp != 16 || night.Rad != 0 || night.CO2 != 400 {
		t.Errorf("night point = %+v", night)
	}

	noon := sched[12] // 12:00, mid-photoperiod
	if noon.Temp != 24 || noon.CO2 != 800 {
		t.Errorf("midday point = %+v", noon)
	}
	if noon.Rad < 299 || noon.Rad > 300 {
		t.Errorf("midday rad = %v, expected near peak 300", noon.Rad)
	}

	// radiation rises toward noon
	if !(sched[7].Rad < sched[9].Rad && sched[9].Rad < sched[12].Rad) {
		t.Errorf("morning radiation not increasing: %v, %v, %v",
			sched[7].Rad, sched[9].Rad, sched[12].Rad)
	}

	// second day repeats the first
	if sched[26].Temp != sched[2].Temp || sched[26].Hour != 26 {
		t.Errorf("second-day point = %+v", sched[26])
	}

	if sched.Days() != 2 {
		t.Errorf("Days() = %d, expected 2", sched.Days())
	}
}

func TestDailyFiveMinuteDefault(t *testing.T) {
	sched := Daily(DailySpec{Days: 1, Photoperiod: 12, PeakRad: 100, Density: 90})

	if len(sched) != 288 {
		t.Fatalf("got %d points, expected 288 at the default interval", len(sched))
	}
	if sched[287].Hour != 23 {
		t.Errorf("last hour = %d, expected 23", sched[287].Hour)
	}
}
