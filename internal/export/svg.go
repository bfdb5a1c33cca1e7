package export

import (
	"fmt"
	"strings"

	"github.com/verdantlab/lettsim/internal/sim"
)

// Series samples (time, dry weight) pairs for post-run charts. Every
// controls downsampling: 1 keeps each step, n keeps every nth.
type Series struct {
	Every   int
	Times   []float64
	Weights []float64
	count   int
}

func NewSeries(every int) *Series {
	if every < 1 {
		every = 1
	}
	return &Series{Every: every}
}

func (s *Series) OnStep(x sim.State, u sim.Control, t float64) {
	s.count++
	if (s.count-1)%s.Every != 0 {
		return
	}
	s.Times = append(s.Times, t)
	s.Weights = append(s.Weights, x.Sum())
}

// GrowthCurveSVG renders the sampled dry-weight curve as a standalone
// SVG polyline.
func GrowthCurveSVG(s *Series, width, height int) string {
	if len(s.Times) < 2 {
		return ""
	}

	minX, maxX := s.Times[0], s.Times[0]
	minY, maxY := s.Weights[0], s.Weights[0]
	for i := range s.Times {
		if s.Times[i] < minX {
			minX = s.Times[i]
		}
		if s.Times[i] > maxX {
			maxX = s.Times[i]
		}
		if s.Weights[i] < minY {
			minY = s.Weights[i]
		}
		if s.Weights[i] > maxY {
			maxY = s.Weights[i]
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="#7bc96f" stroke-width="1.5" d="M`,
		width, height, width, height))

	for i := range s.Times {
		x := (s.Times[i] - minX) / rangeX * float64(width)
		y := float64(height) - (s.Weights[i]-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
