// Package mip is a small mixed-integer programming backend. Its call shapes
// follow the Gurobi C API (environment, model, attributes, status codes) so
// that formulation code reads the same regardless of the engine behind it.
//
// Model solves problems with depth-first branch-and-bound over LP
// relaxations computed with gonum's simplex implementation. It is meant for
// small models; there is no presolve, no cutting planes and no heuristics.
package mip

import (
	"fmt"

	"github.com/pkg/errors"
)

// VarType is the domain of a variable.
type VarType int8

const (
	CONTINUOUS VarType = 'C'
	BINARY     VarType = 'B'
	INTEGER    VarType = 'I'
)

// Relation is the sense of a linear constraint.
type Relation int8

const (
	LESS_EQUAL    Relation = '<'
	GREATER_EQUAL Relation = '>'
	EQUAL         Relation = '='
)

func (r Relation) String() string {
	switch r {
	case LESS_EQUAL:
		return "<="
	case GREATER_EQUAL:
		return ">="
	case EQUAL:
		return "="
	}
	return fmt.Sprintf("Relation(%d)", int8(r))
}

// Sense is the optimisation direction.
type Sense int

const (
	MINIMIZE Sense = 1
	MAXIMIZE Sense = -1
)

// INFINITY is the magnitude from which bounds are treated as infinite.
const INFINITY = 1e100

// Optimization status codes, numbered as in Gurobi.
const (
	LOADED      = 1
	OPTIMAL     = 2
	INFEASIBLE  = 3
	INF_OR_UNBD = 4
	UNBOUNDED   = 5
	NODE_LIMIT  = 8
	TIME_LIMIT  = 9
	NUMERIC     = 12
)

// StatusString names a status code.
func StatusString(status int) string {
	switch status {
	case LOADED:
		return "LOADED"
	case OPTIMAL:
		return "OPTIMAL"
	case INFEASIBLE:
		return "INFEASIBLE"
	case INF_OR_UNBD:
		return "INF_OR_UNBD"
	case UNBOUNDED:
		return "UNBOUNDED"
	case NODE_LIMIT:
		return "NODE_LIMIT"
	case TIME_LIMIT:
		return "TIME_LIMIT"
	case NUMERIC:
		return "NUMERIC"
	}
	return fmt.Sprintf("STATUS_%d", status)
}

var (
	// ErrNoSolution is returned when solution attributes are read but no
	// feasible solution is available.
	ErrNoSolution = errors.New("mip: no solution available")
	// ErrNotOptimized is returned when result attributes are read before
	// Optimize was called.
	ErrNotOptimized = errors.New("mip: model has not been optimized")
	// ErrUnknownVar is returned for a variable handle of another model.
	ErrUnknownVar = errors.New("mip: unknown variable")
	// ErrFreed is returned when a freed model is used.
	ErrFreed = errors.New("mip: model has been freed")
)

// Var is a handle to a variable of a model.
type Var struct {
	idx int
}

// NewVar returns the handle of column idx. Backends other than Model use it
// to hand out their own variables.
func NewVar(idx int) Var {
	return Var{idx: idx}
}

// Index returns the column of the variable in its model.
func (v Var) Index() int {
	return v.idx
}

// Term is a coefficient times a variable.
type Term struct {
	Coeff float64
	Var   Var
}

// LinExpr is a linear expression: a sum of terms plus a constant.
type LinExpr struct {
	Terms    []Term
	Constant float64
}

// AddTerm appends coeff*v to e.
func (e *LinExpr) AddTerm(coeff float64, v Var) *LinExpr {
	e.Terms = append(e.Terms, Term{Coeff: coeff, Var: v})
	return e
}

// AddConstant adds c to the constant of e.
func (e *LinExpr) AddConstant(c float64) *LinExpr {
	e.Constant += c
	return e
}

// Backend is the set of solver capabilities a formulation needs.
type Backend interface {
	AddVar(lb, ub float64, vtype VarType, name string) (Var, error)
	AddConstr(expr LinExpr, rel Relation, rhs float64, name string) error
	SetObjective(expr LinExpr, sense Sense) error
	// Optimize blocks until the solve finishes or a limit is reached.
	Optimize() error
	Value(v Var) (float64, error)
	ObjVal() (float64, error)
	MIPGap() (float64, error)
	Runtime() (float64, error)
	Status() int
	Free()
}
