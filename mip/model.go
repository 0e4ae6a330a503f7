package mip

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type row struct {
	name string
	idx  []int
	val  []float64
	rel  Relation
	rhs  float64
}

// Model is an in-memory MILP solved by branch-and-bound. It implements
// Backend. A Model is not safe for concurrent use.
type Model struct {
	name   string
	params Params
	log    *zap.Logger
	freed  bool

	lb, ub   []float64
	vtype    []VarType
	varNames []string
	rows     []row

	obj      []float64
	objConst float64
	sense    Sense

	optimized bool
	status    int
	hasSol    bool
	x         []float64
	objVal    float64
	objBound  float64
	runtime   float64
	nodeCount int
}

// Name returns the model name.
func (m *Model) Name() string {
	return m.name
}

// NumVars returns the number of variables.
func (m *Model) NumVars() int {
	return len(m.lb)
}

// NumConstrs returns the number of linear constraints.
func (m *Model) NumConstrs() int {
	return len(m.rows)
}

// NodeCount returns the number of branch-and-bound nodes explored by the
// last Optimize.
func (m *Model) NodeCount() int {
	return m.nodeCount
}

// AddVar adds a variable with bounds [lb, ub]. Bounds at or beyond INFINITY
// are infinite. Binary variables are clipped to [0, 1].
func (m *Model) AddVar(lb, ub float64, vtype VarType, name string) (Var, error) {
	if m.freed {
		return Var{}, ErrFreed
	}
	switch vtype {
	case CONTINUOUS, INTEGER:
	case BINARY:
		lb = math.Max(lb, 0)
		ub = math.Min(ub, 1)
	default:
		return Var{}, errors.Errorf("mip: unknown variable type %q", rune(vtype))
	}
	if lb <= -INFINITY {
		lb = math.Inf(-1)
	}
	if ub >= INFINITY {
		ub = math.Inf(1)
	}
	if math.IsNaN(lb) || math.IsNaN(ub) || math.IsInf(lb, 1) || math.IsInf(ub, -1) || lb > ub {
		return Var{}, errors.Errorf("mip: invalid bounds [%g, %g] for %q", lb, ub, name)
	}
	m.lb = append(m.lb, lb)
	m.ub = append(m.ub, ub)
	m.vtype = append(m.vtype, vtype)
	m.varNames = append(m.varNames, name)
	m.obj = append(m.obj, 0)
	m.invalidate()
	return Var{idx: len(m.lb) - 1}, nil
}

// compact merges duplicate variables of expr and drops zero coefficients.
func (m *Model) compact(expr LinExpr) ([]int, []float64, error) {
	pos := make(map[int]int, len(expr.Terms))
	var (
		idx []int
		val []float64
	)
	for _, t := range expr.Terms {
		if t.Var.idx < 0 || t.Var.idx >= len(m.lb) {
			return nil, nil, errors.Wrapf(ErrUnknownVar, "index %d", t.Var.idx)
		}
		if math.IsNaN(t.Coeff) || math.IsInf(t.Coeff, 0) {
			return nil, nil, errors.Errorf("mip: invalid coefficient %g", t.Coeff)
		}
		if p, ok := pos[t.Var.idx]; ok {
			val[p] += t.Coeff
			continue
		}
		pos[t.Var.idx] = len(idx)
		idx = append(idx, t.Var.idx)
		val = append(val, t.Coeff)
	}
	k := 0
	for i := range idx {
		if val[i] != 0 {
			idx[k], val[k] = idx[i], val[i]
			k++
		}
	}
	return idx[:k], val[:k], nil
}

// AddConstr adds expr rel rhs. The constant of expr is moved to the right
// hand side.
func (m *Model) AddConstr(expr LinExpr, rel Relation, rhs float64, name string) error {
	if m.freed {
		return ErrFreed
	}
	switch rel {
	case LESS_EQUAL, GREATER_EQUAL, EQUAL:
	default:
		return errors.Errorf("mip: unknown relation %q in %q", rune(rel), name)
	}
	idx, val, err := m.compact(expr)
	if err != nil {
		return errors.Wrapf(err, "constraint %q", name)
	}
	m.rows = append(m.rows, row{name: name, idx: idx, val: val, rel: rel, rhs: rhs - expr.Constant})
	m.invalidate()
	return nil
}

// SetObjective replaces the objective.
func (m *Model) SetObjective(expr LinExpr, sense Sense) error {
	if m.freed {
		return ErrFreed
	}
	if sense != MINIMIZE && sense != MAXIMIZE {
		return errors.Errorf("mip: unknown objective sense %d", sense)
	}
	idx, val, err := m.compact(expr)
	if err != nil {
		return errors.Wrap(err, "objective")
	}
	for j := range m.obj {
		m.obj[j] = 0
	}
	for k, j := range idx {
		m.obj[j] = val[k]
	}
	m.objConst = expr.Constant
	m.sense = sense
	m.invalidate()
	return nil
}

func (m *Model) invalidate() {
	m.optimized = false
	m.status = LOADED
	m.hasSol = false
	m.x = nil
}

// Optimize runs branch-and-bound until the tree is exhausted or a limit of
// the parameters is hit.
func (m *Model) Optimize() error {
	if m.freed {
		return ErrFreed
	}
	start := time.Now()
	m.log.Info("Optimize",
		zap.Int("vars", m.NumVars()),
		zap.Int("constrs", m.NumConstrs()),
		zap.Float64("timeLimit", m.params.TimeLimit))
	m.branchAndBound(start)
	m.runtime = time.Since(start).Seconds()
	m.optimized = true
	fields := []zap.Field{
		zap.String("status", StatusString(m.status)),
		zap.Int("nodes", m.nodeCount),
		zap.Float64("runtime", m.runtime),
	}
	if m.hasSol {
		gap, _ := m.MIPGap()
		fields = append(fields, zap.Float64("obj", m.objVal), zap.Float64("bound", m.objBound), zap.Float64("gap", gap))
	}
	m.log.Info("Optimization done", fields...)
	return nil
}

// Value returns the value of v in the best solution found.
func (m *Model) Value(v Var) (float64, error) {
	if !m.hasSol {
		return 0, ErrNoSolution
	}
	if v.idx < 0 || v.idx >= len(m.x) {
		return 0, errors.Wrapf(ErrUnknownVar, "index %d", v.idx)
	}
	return m.x[v.idx], nil
}

// ObjVal returns the objective value of the best solution found.
func (m *Model) ObjVal() (float64, error) {
	if !m.hasSol {
		return 0, ErrNoSolution
	}
	return m.objVal, nil
}

// ObjBound returns the best proven bound on the objective.
func (m *Model) ObjBound() (float64, error) {
	if !m.hasSol {
		return 0, ErrNoSolution
	}
	return m.objBound, nil
}

// MIPGap returns |ObjBound - ObjVal| / |ObjVal| like Gurobi does. A zero
// objective with a non-zero gap reports INFINITY, which stays finite so that
// it can be written to JSON.
func (m *Model) MIPGap() (float64, error) {
	if !m.hasSol {
		return 0, ErrNoSolution
	}
	diff := math.Abs(m.objBound - m.objVal)
	if diff == 0 {
		return 0, nil
	}
	if m.objVal == 0 || math.IsInf(diff, 1) {
		return INFINITY, nil
	}
	return diff / math.Abs(m.objVal), nil
}

// Runtime returns the wall-clock seconds of the last Optimize.
func (m *Model) Runtime() (float64, error) {
	if !m.optimized {
		return 0, ErrNotOptimized
	}
	return m.runtime, nil
}

// Status returns the optimization status code.
func (m *Model) Status() int {
	return m.status
}

// Free releases the model data. The model must not be used afterwards.
func (m *Model) Free() {
	m.freed = true
	m.lb, m.ub, m.vtype, m.varNames, m.rows, m.obj, m.x = nil, nil, nil, nil, nil, nil, nil
	m.hasSol = false
	m.optimized = false
}
