package crop

import (
	"errors"
	"math"
	"testing"
)

func TestBeerLambert(t *testing.T) {
	if got := beerLambert(0, 0.9); got != 0 {
		t.Errorf("interception at zero LAI = %v, expected 0", got)
	}

	if got := beerLambert(50, 0.9); got < 0.999999 || got > 1 {
		t.Errorf("interception at huge LAI = %v, expected near 1", got)
	}

	// monotone in LAI
	prev := -1.0
	for lai := 0.0; lai <= 10; lai += 0.5 {
		cur := beerLambert(lai, 0.9)
		if cur <= prev {
			t.Fatalf("interception not increasing at lai=%v: %v <= %v", lai, cur, prev)
		}
		prev = cur
	}

	want := 1 - math.Exp(-0.9*2.0)
	if got := beerLambert(2.0, 0.9); got != want {
		t.Errorf("interception(2, 0.9) = %v, expected %v", got, want)
	}
}

func TestParseInterceptionMode(t *testing.T) {
	tests := []struct {
		in      string
		want    InterceptionMode
		wantErr bool
	}{
		{"beer-lambert", BeerLambert, false},
		{"beer_lambert", BeerLambert, false},
		{"", BeerLambert, false},
		{"external", External, false},
		{"observed", BeerLambert, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInterceptionMode(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownMode) {
					t.Fatalf("got %v, expected ErrUnknownMode", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("mode = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestInterceptionModeString(t *testing.T) {
	if BeerLambert.String() != "beer-lambert" {
		t.Errorf("BeerLambert.String() = %q", BeerLambert.String())
	}
	if External.String() != "external" {
		t.Errorf("External.String() = %q", External.String())
	}
}
