package atsp

import "github.com/pkg/errors"

var (
	// ErrDistanceFunctionBadInput is returned when two points of different
	// dimensionality are passed to a distance function.
	ErrDistanceFunctionBadInput = errors.New("distance function: points must have the same number of dimensions")
	// ErrFactoryBadInput is returned for an unknown formulation kind.
	ErrFactoryBadInput = errors.New("factory: unknown formulation")
	// ErrObjectiveFunctionBadInput is returned for an unknown objective policy.
	ErrObjectiveFunctionBadInput = errors.New("objective function: unknown objective type")
	// ErrModelBadInput is returned when a model cannot be built for the instance,
	// most notably when it has less than 3 points.
	ErrModelBadInput = errors.New("model: bad input, at least 3 points are required")
	// ErrIncompleteSolution is returned when the solved arcs do not form a
	// single Hamiltonian cycle through vertex 1.
	ErrIncompleteSolution = errors.New("solution: extracted route is not a hamiltonian cycle")
)
