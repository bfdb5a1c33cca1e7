// Package layout turns aggregate crop state into per-plant planting
// frames for the renderer: a grid filling the field, a ground scale
// derived from dry weight, and seeded per-plant jitter.
package layout

import (
	"math"
	"math/rand"
)

// Footprint polynomials mapping per-plant dry weight in grams to
// potential ground coverage in cm2, fitted separately for the seedling
// and mature regimes.
var (
	paramsSmall = [4]float64{7.985305504553652, 291.73135988978663, -707.7401261511758, 772.4044195923515}
	paramsLarge = [4]float64{30.9961439725485, 76.16800558950729, -6.5045717125301445, 0.26365904070466195}
)

const regimeThreshold = 0.3

func cubic(x float64, p [4]float64) float64 {
	return p[0] + x*(p[1]+x*(p[2]+x*p[3]))
}

// GroundScale converts dry weight to the renderer's plant scale unit.
func GroundScale(dryWeight float64) float64 {
	var coverage float64
	if dryWeight < regimeThreshold {
		coverage = cubic(dryWeight, paramsSmall)
	} else {
		coverage = cubic(dryWeight, paramsLarge)
	}
	return math.Sqrt(coverage) / 6
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Plant struct {
	ID       int      `json:"id"`
	Position Position `json:"position"`
	Rotation float64  `json:"rotation"`
	Scale    float64  `json:"scale"`
}

// Frame is the planting document the renderer consumes.
type Frame struct {
	Lettuces []Plant `json:"lettuces"`
	Step     int     `json:"step"`
	Day      int     `json:"day"`
}

// Generator lays plants out over a rectangular field. Jitter is drawn
// from its own seeded source, so equal seeds reproduce equal frames.
type Generator struct {
	length float64
	width  float64
	rng    *rand.Rand
}

func NewGenerator(length, width float64, seed int64) *Generator {
	return &Generator{
		length: length,
		width:  width,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Frame builds the planting document for one render: a grid of at
// least 1.2x the stand density (padded to keep the camera view full),
// each plant at the dry-weight scale with rotation jitter within
// +/-40 degrees and scale jitter within [0.85, 1.15].
func (g *Generator) Frame(dryWeight, density float64, step, day int) Frame {
	scale := GroundScale(dryWeight)
	xs, zs := gridPositions(density, g.length, g.width)

	plants := make([]Plant, len(xs))
	for i := range xs {
		rotation := g.rng.Float64()*80 - 40
		jitter := 0.85 + g.rng.Float64()*0.3
		plants[i] = Plant{
			ID:       i,
			Position: Position{X: xs[i], Y: 0, Z: zs[i]},
			Rotation: rotation,
			Scale:    scale * jitter,
		}
	}

	return Frame{Lettuces: plants, Step: step, Day: day}
}

// gridPositions fills the field with a rows-by-columns grid whose
// aspect follows the field and whose point count reaches the padded
// density target. All grid points are returned, row-major.
func gridPositions(density, length, width float64) (xs, zs []float64) {
	target := int(density * 1.2)
	if target < 1 {
		target = 1
	}

	ratio := length / width
	cols := int(math.Sqrt(float64(target) * ratio))
	rows := int(math.Sqrt(float64(target) / ratio))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	for cols*rows < target {
		if float64(cols)/float64(rows) < ratio {
			cols++
		} else {
			rows++
		}
	}

	xVals := linspace(-length/2, length/2, cols)
	zVals := linspace(-width/2, width/2, rows)

	xs = make([]float64, 0, cols*rows)
	zs = make([]float64, 0, cols*rows)
	for _, z := range zVals {
		for _, x := range xVals {
			xs = append(xs, x)
			zs = append(zs, z)
		}
	}
	return xs, zs
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
