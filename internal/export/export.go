// Package export streams run output. Nothing here retains a
// trajectory: observers write each step through and keep only the
// writer and the first error.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/verdantlab/lettsim/internal/sim"
)

// CSVObserver writes one row per simulation step.
type CSVObserver struct {
	w      *csv.Writer
	header bool
	err    error
}

func NewCSVObserver(w io.Writer) *CSVObserver {
	return &CSVObserver{w: csv.NewWriter(w)}
}

func (o *CSVObserver) OnStep(x sim.State, u sim.Control, t float64) {
	if o.err != nil {
		return
	}
	if !o.header {
		o.header = true
		if err := o.w.Write(headerFor(x, u)); err != nil {
			o.err = err
			return
		}
	}

	row := make([]string, 0, 2+len(x)+len(u))
	row = append(row, strconv.FormatFloat(t, 'f', 0, 64))
	for _, v := range x {
		row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
	}
	row = append(row, strconv.FormatFloat(x.Sum(), 'g', -1, 64))
	for _, v := range u {
		row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
	}
	if err := o.w.Write(row); err != nil {
		o.err = err
	}
}

// Flush drains the writer and reports the first error seen.
func (o *CSVObserver) Flush() error {
	o.w.Flush()
	if o.err != nil {
		return o.err
	}
	return o.w.Error()
}

func headerFor(x sim.State, u sim.Control) []string {
	header := []string{"time_s"}
	if len(x) == 2 {
		header = append(header, "assimilate_g", "structural_g")
	} else {
		for i := range x {
			header = append(header, fmt.Sprintf("x%d", i))
		}
	}
	header = append(header, "dry_weight_g")
	if len(u) == 4 {
		header = append(header, "temp", "rad", "co2", "density")
	} else {
		for i := range u {
			header = append(header, fmt.Sprintf("u%d", i))
		}
	}
	return header
}

// JSONObserver writes one JSON object per step, newline-delimited.
type JSONObserver struct {
	enc *json.Encoder
	err error
}

func NewJSONObserver(w io.Writer) *JSONObserver {
	return &JSONObserver{enc: json.NewEncoder(w)}
}

type stepRecord struct {
	TimeSeconds float64   `json:"time_s"`
	State       []float64 `json:"state"`
	DryWeight   float64   `json:"dry_weight_g"`
	Controls    []float64 `json:"controls"`
}

func (o *JSONObserver) OnStep(x sim.State, u sim.Control, t float64) {
	if o.err != nil {
		return
	}
	o.err = o.enc.Encode(stepRecord{
		TimeSeconds: t,
		State:       x,
		DryWeight:   x.Sum(),
		Controls:    u,
	})
}

func (o *JSONObserver) Err() error { return o.err }

// RunRecord captures the outcome of one run for the results file.
type RunRecord struct {
	Timestamp  time.Time          `json:"timestamp"`
	Strategy   string             `json:"strategy"`
	Integrator string             `json:"integrator"`
	DtSeconds  float64            `json:"dt_seconds"`
	Steps      int                `json:"steps"`
	FinalState []float64          `json:"final_state"`
	DryWeight  float64            `json:"dry_weight_g"`
	Metrics    map[string]float64 `json:"metrics"`
}

func WriteRunRecord(path string, rec RunRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}
