package layout

import (
	"encoding/json"
	"math"
	"testing"
)

func TestGroundScale(t *testing.T) {
	// seedling regime at dw=0: sqrt(7.985...)/6
	want := math.Sqrt(7.985305504553652) / 6
	if got := GroundScale(0); math.Abs(got-want) > 1e-12 {
		t.Errorf("scale at dw=0 = %v, expected %v", got, want)
	}

	// mature regime uses the second polynomial
	small := GroundScale(0.29)
	large := GroundScale(0.31)
	if small <= 0 || large <= 0 {
		t.Fatalf("non-positive scales: %v, %v", small, large)
	}

	// scale grows with dry weight within each regime
	if GroundScale(0.1) <= GroundScale(0.01) {
		t.Error("seedling scale not increasing in dry weight")
	}
	if GroundScale(5.0) <= GroundScale(1.0) {
		t.Error("mature scale not increasing in dry weight")
	}
}

func TestGridPositionsCountAndBounds(t *testing.T) {
	xs, zs := gridPositions(90, 1.0, 1.0)

	target := int(90 * 1.2)
	if len(xs) < target {
		t.Fatalf("grid has %d points, expected at least %d", len(xs), target)
	}
	if len(xs) != len(zs) {
		t.Fatalf("coordinate lengths differ: %d vs %d", len(xs), len(zs))
	}

	for i := range xs {
		if xs[i] < -0.5 || xs[i] > 0.5 || zs[i] < -0.5 || zs[i] > 0.5 {
			t.Fatalf("point %d (%v, %v) outside the field", i, xs[i], zs[i])
		}
	}

	// corners of the grid touch the field edges
	if xs[0] != -0.5 || zs[0] != -0.5 {
		t.Errorf("first point = (%v, %v), expected (-0.5, -0.5)", xs[0], zs[0])
	}
	last := len(xs) - 1
	if xs[last] != 0.5 || zs[last] != 0.5 {
		t.Errorf("last point = (%v, %v), expected (0.5, 0.5)", xs[last], zs[last])
	}
}

func TestGridPositionsAspect(t *testing.T) {
	// a field twice as long as wide gets more columns than rows
	xs, _ := gridPositions(100, 2.0, 1.0)

	distinctX := map[float64]bool{}
	for _, x := range xs {
		distinctX[x] = true
	}
	cols := len(distinctX)
	rows := len(xs) / cols

	if cols <= rows {
		t.Errorf("cols = %d, rows = %d; expected more columns on the long axis", cols, rows)
	}
}

func TestGridPositionsTinyDensity(t *testing.T) {
	xs, zs := gridPositions(1, 1.0, 1.0)
	if len(xs) < 1 {
		t.Fatal("no points for density 1")
	}
	if len(xs) != len(zs) {
		t.Fatal("coordinate lengths differ")
	}
}

func TestFrameJitterRanges(t *testing.T) {
	g := NewGenerator(1.0, 1.0, 42)
	frame := g.Frame(0.04, 90, 12, 1)

	if frame.Step != 12 || frame.Day != 1 {
		t.Errorf("step/day = %d/%d, expected 12/1", frame.Step, frame.Day)
	}
	if len(frame.Lettuces) < 108 {
		t.Fatalf("frame has %d plants, expected at least 108", len(frame.Lettuces))
	}

	base := GroundScale(0.04)
	for _, p := range frame.Lettuces {
		if p.Rotation < -40 || p.Rotation > 40 {
			t.Fatalf("plant %d rotation %v outside +/-40", p.ID, p.Rotation)
		}
		ratio := p.Scale / base
		if ratio < 0.85 || ratio > 1.15 {
			t.Fatalf("plant %d scale jitter %v outside [0.85, 1.15]", p.ID, ratio)
		}
		if p.Position.Y != 0 {
			t.Fatalf("plant %d not on the ground plane: y=%v", p.ID, p.Position.Y)
		}
	}

	// ids are the grid order
	for i, p := range frame.Lettuces {
		if p.ID != i {
			t.Fatalf("plant at index %d has id %d", i, p.ID)
		}
	}
}

func TestFrameSeededDeterminism(t *testing.T) {
	a := NewGenerator(1.0, 1.0, 7).Frame(0.04, 90, 0, 0)
	b := NewGenerator(1.0, 1.0, 7).Frame(0.04, 90, 0, 0)

	if len(a.Lettuces) != len(b.Lettuces) {
		t.Fatal("frame sizes differ for equal seeds")
	}
	for i := range a.Lettuces {
		if a.Lettuces[i] != b.Lettuces[i] {
			t.Fatalf("plant %d differs for equal seeds", i)
		}
	}

	c := NewGenerator(1.0, 1.0, 8).Frame(0.04, 90, 0, 0)
	same := true
	for i := range a.Lettuces {
		if a.Lettuces[i].Rotation != c.Lettuces[i].Rotation {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical jitter")
	}
}

func TestFrameJSONShape(t *testing.T) {
	frame := NewGenerator(1.0, 1.0, 1).Frame(0.04, 4, 3, 0)

	data, err := json.Marshal(frame)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"lettuces", "step", "day"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("marshaled frame missing %q", key)
		}
	}

	plants := decoded["lettuces"].([]any)
	first := plants[0].(map[string]any)
	pos := first["position"].(map[string]any)
	for _, key := range []string{"x", "y", "z"} {
		if _, ok := pos[key]; !ok {
			t.Errorf("position missing %q", key)
		}
	}
}
