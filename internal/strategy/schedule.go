// Package strategy supplies control schedules for simulation runs:
// CSV files exported from a climate computer, or synthetic day/night
// cycles generated in code.
package strategy

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/verdantlab/lettsim/internal/sim"
)

// ErrMissingColumn indicates a schedule file without a required header.
var ErrMissingColumn = errors.New("strategy: missing required column")

// Point is one control interval: the greenhouse setpoints applied over
// the interval plus the simulation hour the interval belongs to.
type Point struct {
	Temp    float64
	Rad     float64
	CO2     float64
	Density float64
	Hour    int
}

func (p Point) Control() sim.Control {
	return sim.Control{p.Temp, p.Rad, p.CO2, p.Density}
}

type Schedule []Point

// Frames converts the schedule for the runner.
func (s Schedule) Frames() []sim.Frame {
	frames := make([]sim.Frame, len(s))
	for i, p := range s {
		frames[i] = sim.Frame{U: p.Control(), Hour: p.Hour}
	}
	return frames
}

// Days reports how many simulated days the schedule spans.
func (s Schedule) Days() int {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Hour/24 + 1
}

var requiredColumns = []string{"temp", "rad", "co2", "density", "hour"}

// LoadCSV reads a schedule from a headered CSV file. Columns are
// resolved by name, case-insensitively; columns beyond the required
// five are ignored.
func LoadCSV(path string) (Schedule, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open strategy: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read strategy %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("strategy %s: no data rows", path)
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s in %s", ErrMissingColumn, name, path)
		}
	}

	schedule := make(Schedule, 0, len(records)-1)
	for i, record := range records[1:] {
		row := i + 2 // header is row 1

		field := func(name string) (float64, error) {
			idx := cols[name]
			if idx >= len(record) {
				return 0, fmt.Errorf("strategy %s row %d: missing %s field", path, row, name)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
			if err != nil {
				return 0, fmt.Errorf("strategy %s row %d: parse %s: %w", path, row, name, err)
			}
			return v, nil
		}

		var p Point
		if p.Temp, err = field("temp"); err != nil {
			return nil, err
		}
		if p.Rad, err = field("rad"); err != nil {
			return nil, err
		}
		if p.CO2, err = field("co2"); err != nil {
			return nil, err
		}
		if p.Density, err = field("density"); err != nil {
			return nil, err
		}
		hour, err := field("hour")
		if err != nil {
			return nil, err
		}
		p.Hour = int(hour)

		schedule = append(schedule, p)
	}

	return schedule, nil
}
