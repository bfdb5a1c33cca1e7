package crop

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// NumCoeffs is the length of the derived coefficient vector: the 20
// named physiological coefficients plus the external light-interception
// override in the last slot.
const NumCoeffs = 21

// coeffOrder fixes the slot assignment of the derived vector. The rate
// function unpacks positionally, so this order must never change.
var coeffOrder = [NumCoeffs - 1]string{
	"c_R", "c_Q10_R", "c_epsilon", "c_w", "g_bnd", "g_stm",
	"c_car_1", "c_car_2", "c_car_3", "c_gr_max", "c_r",
	"c_resp_sht", "c_resp_rt", "c_Q10_gr", "c_Q10_resp",
	"c_t", "c_k", "c_lar", "c_a", "c_b",
}

// ParamSet maps coefficient names to values. Keys beyond the required
// set are carried silently.
type ParamSet map[string]float64

func (p ParamSet) Clone() ParamSet {
	c := make(ParamSet, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// Validate checks model construction inputs: positive dry weight and
// density, and presence of every required coefficient.
func Validate(initialDryWeight, plantDensity float64, params ParamSet) error {
	if initialDryWeight <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidDryWeight, initialDryWeight)
	}
	if plantDensity <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidDensity, plantDensity)
	}

	var missing []string
	for _, key := range coeffOrder {
		if _, ok := params[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: %s", ErrMissingParameters, strings.Join(missing, ", "))
	}
	return nil
}

// Store holds the named coefficient set behind a model. The map passed
// to NewStore is referenced, not copied; calibration updates are
// visible to the caller.
type Store struct {
	params ParamSet
}

func NewStore(params ParamSet) *Store {
	return &Store{params: params}
}

func (s *Store) Params() ParamSet { return s.params }

func (s *Store) Get(name string) (float64, bool) {
	v, ok := s.params[name]
	return v, ok
}

// Update merges partial into the store. Every key must already exist;
// on an unknown key nothing is merged and the error names the
// offenders.
func (s *Store) Update(partial ParamSet) error {
	var unknown []string
	for k := range partial {
		if _, ok := s.params[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: %s", ErrUnknownParameter, strings.Join(unknown, ", "))
	}

	for k, v := range partial {
		s.params[k] = v
	}
	return nil
}

// Vector flattens the store into the positional coefficient array the
// rate function consumes, with the external light-interception override
// appended in the final slot.
func (s *Store) Vector(externalInterception float64) [NumCoeffs]float64 {
	var v [NumCoeffs]float64
	for i, key := range coeffOrder {
		v[i] = s.params[key]
	}
	v[NumCoeffs-1] = externalInterception
	return v
}

// LoadParamSet reads a coefficient file. JSON for calibration output,
// YAML otherwise.
func LoadParamSet(path string) (ParamSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read parameters: %w", err)
	}

	var params ParamSet
	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(data, &params); err != nil {
			return nil, fmt.Errorf("parse parameters %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &params); err != nil {
			return nil, fmt.Errorf("parse parameters %s: %w", path, err)
		}
	}
	return params, nil
}

// SaveParamSet writes the set as YAML with sorted keys.
func SaveParamSet(path string, params ParamSet) error {
	data, err := yaml.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal parameters: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write parameters: %w", err)
	}
	return nil
}
