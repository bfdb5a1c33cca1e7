package crop

import (
	"fmt"
	"math"
)

// InterceptionMode selects how canopy light interception enters the
// rate function.
type InterceptionMode int

const (
	// BeerLambert derives interception from leaf area via the
	// Beer-Lambert extinction law.
	BeerLambert InterceptionMode = iota

	// External substitutes an externally observed canopy-closure value
	// for the analytic law, e.g. one estimated from a rendered image.
	External
)

func (m InterceptionMode) String() string {
	switch m {
	case BeerLambert:
		return "beer-lambert"
	case External:
		return "external"
	default:
		return fmt.Sprintf("InterceptionMode(%d)", int(m))
	}
}

func ParseInterceptionMode(s string) (InterceptionMode, error) {
	switch s {
	case "beer-lambert", "beer_lambert", "":
		return BeerLambert, nil
	case "external":
		return External, nil
	default:
		return BeerLambert, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

func beerLambert(lai, k float64) float64 {
	return 1 - math.Exp(-k*lai)
}
