package atsp

import (
	"math"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Point is an immutable vector of coordinates.
type Point struct {
	coords []float64
}

// NewPoint copies the given coordinates into a new Point.
func NewPoint(coords ...float64) Point {
	c := make([]float64, len(coords))
	copy(c, coords)
	return Point{coords: c}
}

// Dim returns the number of dimensions of p.
func (p Point) Dim() int {
	return len(p.coords)
}

// Coord returns the coordinate at position i.
func (p Point) Coord(i int) float64 {
	return p.coords[i]
}

// Coords returns a copy of the coordinates.
func (p Point) Coords() []float64 {
	c := make([]float64, len(p.coords))
	copy(c, p.coords)
	return c
}

// Equal reports whether p and q have the same dimensionality and coordinates.
func (p Point) Equal(q Point) bool {
	return floats.Equal(p.coords, q.coords)
}

// DistanceFunc computes the distance from p to q.
type DistanceFunc func(p, q Point) (float64, error)

func checkDims(p, q Point) error {
	if p.Dim() != q.Dim() {
		return errors.Wrapf(ErrDistanceFunctionBadInput, "%d != %d", p.Dim(), q.Dim())
	}
	return nil
}

// Euclidean is the L2 distance.
func Euclidean(p, q Point) (float64, error) {
	if err := checkDims(p, q); err != nil {
		return 0, err
	}
	return floats.Distance(p.coords, q.coords, 2), nil
}

// Manhattan is the L1 distance.
func Manhattan(p, q Point) (float64, error) {
	if err := checkDims(p, q); err != nil {
		return 0, err
	}
	return floats.Distance(p.coords, q.coords, 1), nil
}

// Chebyshev is the maximum absolute difference over all dimensions.
func Chebyshev(p, q Point) (float64, error) {
	if err := checkDims(p, q); err != nil {
		return 0, err
	}
	return floats.Distance(p.coords, q.coords, math.Inf(1)), nil
}

// Nint rounds the distances of fn to the nearest integer, like the EUC_2D
// weights of TSPLIB.
func Nint(fn DistanceFunc) DistanceFunc {
	return func(p, q Point) (float64, error) {
		d, err := fn(p, q)
		if err != nil {
			return 0, err
		}
		return float64(int64(d + 0.5)), nil
	}
}

// Ceil rounds the distances of fn up.
func Ceil(fn DistanceFunc) DistanceFunc {
	return func(p, q Point) (float64, error) {
		d, err := fn(p, q)
		if err != nil {
			return 0, err
		}
		return math.Ceil(d), nil
	}
}

// DistanceByName maps an edge weight type to a distance function. Both the
// TSPLIB names (EUC_2D, MAN_3D, MAX_2D, CEIL_2D) and plain metric names
// (euclidean, manhattan, chebyshev) are accepted.
func DistanceByName(name string) (DistanceFunc, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	switch {
	case n == "CEIL_2D":
		return Ceil(Euclidean), nil
	case strings.HasPrefix(n, "EUC"):
		return Euclidean, nil
	case strings.HasPrefix(n, "MAN"):
		return Manhattan, nil
	case strings.HasPrefix(n, "MAX"), n == "CHEBYSHEV":
		return Chebyshev, nil
	}
	return nil, errors.Errorf("unknown edge weight type %q", name)
}
