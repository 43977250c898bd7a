package potential

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/galpot/internal/galaxy"
	"github.com/san-kum/galpot/internal/grid"
	"gonum.org/v1/gonum/spatial/r2"
)

func evaluators() []Evaluator {
	return []Evaluator{
		&Direct{G: galaxy.G},
		&Direct{G: galaxy.G, Workers: 4},
		&BarnesHut{G: galaxy.G, Theta: 0},
		&BarnesHut{G: galaxy.G, Theta: 0.5},
		&FFT{G: galaxy.G},
	}
}

func TestSelfTermExcluded(t *testing.T) {
	pts := []r2.Vec{{X: 3, Y: -2}}
	for _, ev := range evaluators() {
		phi, err := ev.Potential(context.Background(), []float64{5e30}, pts, pts)
		if err != nil {
			t.Fatalf("%s: %v", ev.Name(), err)
		}
		if phi[0] != 0 {
			t.Errorf("%s: expected 0 for a lone coincident mass, got %g", ev.Name(), phi[0])
		}
	}
}

func TestTwoEqualMasses(t *testing.T) {
	g, m := galaxy.G, 2e30
	d := 4 * galaxy.Kiloparsec
	pts := []r2.Vec{{X: 0, Y: 0}, {X: d, Y: 0}}
	masses := []float64{m, m}

	want := -g * m / d

	direct := &Direct{G: galaxy.G}
	phi, err := direct.Potential(context.Background(), masses, pts, pts)
	if err != nil {
		t.Fatal(err)
	}
	for i := range phi {
		if phi[i] != want {
			t.Errorf("point %d: expected %g, got %g", i, want, phi[i])
		}
	}

	bh := &BarnesHut{G: galaxy.G, Theta: 0.5}
	phi, err = bh.Potential(context.Background(), masses, pts, pts)
	if err != nil {
		t.Fatal(err)
	}
	for i := range phi {
		if math.Abs(phi[i]-want) > 1e-12*math.Abs(want) {
			t.Errorf("barneshut point %d: expected %g, got %g", i, want, phi[i])
		}
	}
}

func TestDimensionMismatch(t *testing.T) {
	pts := []r2.Vec{{X: 1}, {X: 2}}
	for _, ev := range evaluators() {
		_, err := ev.Potential(context.Background(), []float64{1}, pts, pts)
		if !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("%s: expected ErrDimensionMismatch, got %v", ev.Name(), err)
		}
	}
}

// galaxyGrid returns the masses and points of the reference 30x30 grid.
func galaxyGrid(t testing.TB, halfWidth float64, res int) ([]float64, []r2.Vec) {
	t.Helper()
	g, err := grid.New(halfWidth, res, galaxy.Kiloparsec)
	if err != nil {
		t.Fatal(err)
	}
	prof, err := galaxy.NewProfile(galaxy.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	masses, err := g.AttachMasses(prof, galaxy.DensityFactor(galaxy.SolarMass, 5e12))
	if err != nil {
		t.Fatal(err)
	}
	return masses, g.Points()
}

func TestParallelMatchesSerial(t *testing.T) {
	masses, pts := galaxyGrid(t, 15, 30)

	serial, err := (&Direct{G: galaxy.G}).Potential(context.Background(), masses, pts, pts)
	if err != nil {
		t.Fatal(err)
	}
	for _, workers := range []int{2, 3, 8} {
		par, err := (&Direct{G: galaxy.G, Workers: workers}).Potential(context.Background(), masses, pts, pts)
		if err != nil {
			t.Fatal(err)
		}
		for i := range serial {
			if math.Float64bits(serial[i]) != math.Float64bits(par[i]) {
				t.Fatalf("workers=%d: target %d differs: %g vs %g", workers, i, serial[i], par[i])
			}
		}
	}
}

func TestBarnesHutAgainstDirect(t *testing.T) {
	masses, pts := galaxyGrid(t, 15, 30)

	exact, err := (&Direct{G: galaxy.G}).Potential(context.Background(), masses, pts, pts)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		theta float64
		tol   float64
	}{
		{0, 1e-9},
		{0.5, 5e-2},
	}
	for _, tt := range tests {
		approx, err := (&BarnesHut{G: galaxy.G, Theta: tt.theta}).Potential(context.Background(), masses, pts, pts)
		if err != nil {
			t.Fatal(err)
		}
		for i := range exact {
			rel := math.Abs(approx[i]-exact[i]) / math.Abs(exact[i])
			if rel > tt.tol {
				t.Fatalf("theta=%g target %d: relative error %g exceeds %g", tt.theta, i, rel, tt.tol)
			}
		}
	}
}

func TestPotentialIsNegativeAndDeepestAtCentre(t *testing.T) {
	masses, pts := galaxyGrid(t, 15, 30)
	phi, err := (&Direct{G: galaxy.G}).Potential(context.Background(), masses, pts, pts)
	if err != nil {
		t.Fatal(err)
	}

	deepest := 0
	for i, v := range phi {
		if !(v < 0) {
			t.Fatalf("target %d: expected negative potential, got %g", i, v)
		}
		if v < phi[deepest] {
			deepest = i
		}
	}
	r := r2.Norm(pts[deepest]) / galaxy.Kiloparsec
	if r > 2 {
		t.Errorf("expected the deepest well within 2 kpc of the centre, got %g kpc", r)
	}
}

func TestBarnesHutOwnMassOnLattice(t *testing.T) {
	_, pts := galaxyGrid(t, 15, 30)
	masses := make([]float64, len(pts))
	centre := 465
	masses[centre] = 1e40

	for _, theta := range []float64{0, 0.5, 1} {
		phi, err := (&BarnesHut{G: galaxy.G, Theta: theta}).Potential(context.Background(), masses, pts, pts)
		if err != nil {
			t.Fatal(err)
		}
		if phi[centre] != 0 {
			t.Errorf("theta=%g: expected no contribution from the target's own mass, got %g", theta, phi[centre])
		}
	}
}

func TestBarnesHutNegativeTheta(t *testing.T) {
	masses, pts := galaxyGrid(t, 5, 10)
	_, err := (&BarnesHut{G: galaxy.G, Theta: -0.1}).Potential(context.Background(), masses, pts, pts)
	if !errors.Is(err, ErrInvalidTheta) {
		t.Errorf("expected ErrInvalidTheta, got %v", err)
	}
	if _, err := New(MethodBarnesHut, Options{Theta: -1}); !errors.Is(err, ErrInvalidTheta) {
		t.Errorf("expected ErrInvalidTheta from New, got %v", err)
	}
}

func TestFFTMatchesDirect(t *testing.T) {
	tests := []struct {
		halfWidth float64
		res       int
	}{
		{15, 30},
		{25, 50},
		{5, 7},
	}
	for _, tt := range tests {
		masses, pts := galaxyGrid(t, tt.halfWidth, tt.res)
		exact, err := (&Direct{G: galaxy.G}).Potential(context.Background(), masses, pts, pts)
		if err != nil {
			t.Fatal(err)
		}
		conv, err := (&FFT{G: galaxy.G}).Potential(context.Background(), masses, pts, pts)
		if err != nil {
			t.Fatal(err)
		}
		for i := range exact {
			rel := math.Abs(conv[i]-exact[i]) / math.Abs(exact[i])
			if rel > 1e-9 {
				t.Fatalf("%dx%d target %d: relative error %g", tt.res, tt.res, i, rel)
			}
		}
	}
}

func TestFFTRejectsScatteredPoints(t *testing.T) {
	pts := []r2.Vec{{X: 0, Y: 0}, {X: 4, Y: 0}}
	_, err := (&FFT{G: galaxy.G}).Potential(context.Background(), []float64{1, 1}, pts, pts)
	if !errors.Is(err, ErrNotLattice) {
		t.Errorf("two points: expected ErrNotLattice, got %v", err)
	}

	masses, lattice := galaxyGrid(t, 5, 10)
	moved := append([]r2.Vec(nil), lattice...)
	moved[42].X += 0.3 * galaxy.Kiloparsec
	if _, err := (&FFT{G: galaxy.G}).Potential(context.Background(), masses, moved, moved); !errors.Is(err, ErrNotLattice) {
		t.Errorf("displaced point: expected ErrNotLattice, got %v", err)
	}
	if _, err := (&FFT{G: galaxy.G}).Potential(context.Background(), masses, lattice, moved); !errors.Is(err, ErrNotLattice) {
		t.Errorf("targets off the sources: expected ErrNotLattice, got %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	masses, pts := galaxyGrid(t, 15, 30)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, ev := range evaluators() {
		if _, err := ev.Potential(ctx, masses, pts, pts); !errors.Is(err, context.Canceled) {
			t.Errorf("%s: expected context.Canceled, got %v", ev.Name(), err)
		}
	}
}

func TestNew(t *testing.T) {
	ev, err := New("", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if d, ok := ev.(*Direct); !ok || d.G != galaxy.G {
		t.Errorf("expected default direct evaluator with G, got %#v", ev)
	}

	ev, err = New(MethodBarnesHut, Options{Theta: 0.7})
	if err != nil {
		t.Fatal(err)
	}
	if bh, ok := ev.(*BarnesHut); !ok || bh.Theta != 0.7 {
		t.Errorf("expected barneshut with theta 0.7, got %#v", ev)
	}

	ev, err = New(MethodFFT, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ev.(*FFT); !ok {
		t.Errorf("expected fft evaluator, got %#v", ev)
	}

	if _, err := New("multipole", Options{}); !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("expected ErrUnknownMethod, got %v", err)
	}
}
