package atsp

import (
	"strings"

	"github.com/pkg/errors"
)

// Objective selects what a tour is optimised for.
type Objective int

const (
	// MinDist minimises the total tour length.
	MinDist Objective = iota
	// MaxDist maximises the total tour length.
	MaxDist
	// MinMaxEdge minimises the longest arc of the tour.
	MinMaxEdge
	// MaxMinEdge maximises the shortest arc of the tour.
	MaxMinEdge
)

var objectiveNames = [...]string{"MIN_DIST", "MAX_DIST", "MINMAX_EDGE", "MAXMIN_EDGE"}

func (o Objective) String() string {
	if o < 0 || int(o) >= len(objectiveNames) {
		return "UNKNOWN"
	}
	return objectiveNames[o]
}

// ParseObjective parses the names returned by Objective.String.
func ParseObjective(s string) (Objective, error) {
	for i, name := range objectiveNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Objective(i), nil
		}
	}
	return -1, errors.Wrapf(ErrObjectiveFunctionBadInput, "%q", s)
}

// Instance is an immutable set of cities together with the objective and the
// distance function to optimise. Cities are addressed by 1-based IDs.
type Instance struct {
	points    []Point
	objective Objective
	dist      DistanceFunc
}

// NewInstance creates an Instance. A nil dist defaults to Euclidean.
// The number of points is not validated here, models refuse less than 3.
func NewInstance(points []Point, objective Objective, dist DistanceFunc) *Instance {
	if dist == nil {
		dist = Euclidean
	}
	p := make([]Point, len(points))
	copy(p, points)
	return &Instance{points: p, objective: objective, dist: dist}
}

// Len returns the number of cities.
func (in *Instance) Len() int {
	return len(in.points)
}

// Objective returns the objective policy.
func (in *Instance) Objective() Objective {
	return in.objective
}

// WithObjective returns a copy of the instance optimising for o.
func (in *Instance) WithObjective(o Objective) *Instance {
	return &Instance{points: in.points, objective: o, dist: in.dist}
}

// Point returns the city with the 1-based ID i.
func (in *Instance) Point(i int) Point {
	return in.points[i-1]
}

// Dist returns the distance from city i to city j (1-based IDs).
func (in *Instance) Dist(i, j int) (float64, error) {
	if i < 1 || i > len(in.points) || j < 1 || j > len(in.points) {
		return 0, errors.Errorf("city out of range: (%d, %d) with %d cities", i, j, len(in.points))
	}
	return in.dist(in.points[i-1], in.points[j-1])
}

// Matrix returns all pairwise distances, 0-based.
func (in *Instance) Matrix() ([][]float64, error) {
	n := len(in.points)
	result := make([][]float64, n)
	for i := 0; i < n; i++ {
		result[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			d, err := in.dist(in.points[i], in.points[j])
			if err != nil {
				return nil, errors.Wrapf(err, "distance %d -> %d", i+1, j+1)
			}
			result[i][j] = d
		}
	}
	return result, nil
}

// TourLength sums the arcs of the closed tour given by route (1-based IDs).
func (in *Instance) TourLength(route []int) (float64, error) {
	length := 0.0
	for k := 0; k < len(route); k++ {
		d, err := in.Dist(route[k], route[(k+1)%len(route)])
		if err != nil {
			return 0, err
		}
		length += d
	}
	return length, nil
}

// Evaluate returns the objective value of the closed tour given by route:
// its length for MIN_DIST and MAX_DIST, its longest arc for MINMAX_EDGE and
// its shortest arc for MAXMIN_EDGE.
func (in *Instance) Evaluate(route []int) (float64, error) {
	if len(route) == 0 {
		return 0, errors.New("empty route")
	}
	switch in.objective {
	case MinDist, MaxDist:
		return in.TourLength(route)
	case MinMaxEdge, MaxMinEdge:
		var value float64
		for k := 0; k < len(route); k++ {
			d, err := in.Dist(route[k], route[(k+1)%len(route)])
			if err != nil {
				return 0, err
			}
			if k == 0 || (in.objective == MinMaxEdge && d > value) || (in.objective == MaxMinEdge && d < value) {
				value = d
			}
		}
		return value, nil
	}
	return 0, errors.Wrapf(ErrObjectiveFunctionBadInput, "%v", in.objective)
}
