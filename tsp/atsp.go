/* Copyright 2021, Arkadiusz Zarychta */

package tsp

import (
	"fmt"
	"math/bits"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"git.solver4all.com/azaryc2s/atsp"
	"git.solver4all.com/azaryc2s/atsp/mip"
)

// MaxDFJVertices bounds the instance size DFJ is built for. The subset
// enumeration emits 2^n-n-2 rows.
const MaxDFJVertices = 30

// Model is one formulation of one instance, built on its own backend model.
type Model struct {
	kind    Kind
	inst    *atsp.Instance
	backend mip.Backend
	log     *zap.Logger
	vars    registry
	n       int
	dist    [][]float64

	solution atsp.Solution
	solved   bool
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger the builder reports its progress to.
func WithLogger(l *zap.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// WithSysInfo stamps the solution with the machine it was computed on.
func WithSysInfo(info atsp.SysInfo) Option {
	return func(m *Model) {
		m.solution.System = info
	}
}

// New builds the kind formulation of inst on backend. The model takes
// ownership of backend on success; on error the caller still owns it.
func New(kind Kind, inst *atsp.Instance, backend mip.Backend, opts ...Option) (*Model, error) {
	if inst == nil || inst.Len() < 3 {
		n := 0
		if inst != nil {
			n = inst.Len()
		}
		return nil, errors.Wrapf(atsp.ErrModelBadInput, "%d points, need at least 3", n)
	}
	if !kind.valid() {
		return nil, errors.Wrapf(atsp.ErrFactoryBadInput, "%v", kind)
	}
	if backend == nil {
		return nil, errors.New("tsp: nil backend")
	}
	m := &Model{
		kind:    kind,
		inst:    inst,
		backend: backend,
		log:     zap.NewNop(),
		vars:    make(registry),
		n:       inst.Len(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(zap.String("formulation", kind.String()))
	m.solution.Model = kind.String()
	m.solution.Objective = inst.Objective().String()
	m.solution.Route = []int{}

	if err := m.build(); err != nil {
		return nil, errors.Wrapf(err, "build %s", kind)
	}
	return m, nil
}

func (m *Model) build() error {
	if m.kind == DFJ && m.n > MaxDFJVertices {
		return errors.Wrapf(atsp.ErrModelBadInput, "DFJ supports at most %d points, got %d", MaxDFJVertices, m.n)
	}
	dist, err := m.inst.Matrix()
	if err != nil {
		return err
	}
	m.dist = dist

	m.log.Debug("Creating and setting arc variables")
	if err := m.createVarsX(); err != nil {
		return err
	}
	m.log.Debug("Creating and setting the objective", zap.Stringer("objective", m.inst.Objective()))
	if err := m.createObjective(); err != nil {
		return err
	}
	m.log.Debug("Creating and setting degree constraints")
	if err := m.createCstrDegreeIn(); err != nil {
		return err
	}
	if err := m.createCstrDegreeOut(); err != nil {
		return err
	}

	switch m.kind {
	case DFJ:
		m.log.Debug("Creating and setting subset constraints")
		return m.createCstrDFJ()
	case MTZ:
		m.log.Debug("Creating and setting potential variables and constraints")
		if err := m.createVarsU(); err != nil {
			return err
		}
		return m.createCstrMTZ()
	case GG:
		m.log.Debug("Creating and setting flow variables and constraints")
		if err := m.createVarsG(); err != nil {
			return err
		}
		if err := m.createCstrFlow(); err != nil {
			return err
		}
		return m.createCstrLink()
	}
	return nil
}

func (m *Model) addVar(k varKey, lb, ub float64, vtype mip.VarType) error {
	v, err := m.backend.AddVar(lb, ub, vtype, k.String())
	if err != nil {
		return errors.Wrapf(err, "add %v", k)
	}
	m.vars[k] = v
	return nil
}

func (m *Model) x(i, j int) mip.Var {
	return m.vars.get(famX, i, j)
}

// d is the distance from city i to city j, both 1-based.
func (m *Model) d(i, j int) float64 {
	return m.dist[i-1][j-1]
}

func (m *Model) createVarsX() error {
	for i := 1; i <= m.n; i++ {
		for j := 1; j <= m.n; j++ {
			if i == j {
				continue
			}
			if err := m.addVar(varKey{fam: famX, i: i, j: j}, 0, 1, mip.BINARY); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Model) createObjective() error {
	switch obj := m.inst.Objective(); obj {
	case atsp.MinDist, atsp.MaxDist:
		var e mip.LinExpr
		for i := 1; i <= m.n; i++ {
			for j := 1; j <= m.n; j++ {
				if i != j {
					e.AddTerm(m.d(i, j), m.x(i, j))
				}
			}
		}
		sense := mip.MINIMIZE
		if obj == atsp.MaxDist {
			sense = mip.MAXIMIZE
		}
		return m.backend.SetObjective(e, sense)

	case atsp.MinMaxEdge:
		// z bounds every selected arc from above
		if err := m.addVar(varKey{fam: famZ}, -mip.INFINITY, mip.INFINITY, mip.CONTINUOUS); err != nil {
			return err
		}
		z := m.vars.get(famZ, 0, 0)
		for i := 1; i <= m.n; i++ {
			for j := 1; j <= m.n; j++ {
				if i == j {
					continue
				}
				var e mip.LinExpr
				e.AddTerm(1, z).AddTerm(-m.d(i, j), m.x(i, j))
				if err := m.backend.AddConstr(e, mip.GREATER_EQUAL, 0, fmt.Sprintf("minmax_%d_%d", i, j)); err != nil {
					return err
				}
			}
		}
		var e mip.LinExpr
		return m.backend.SetObjective(*e.AddTerm(1, z), mip.MINIMIZE)

	case atsp.MaxMinEdge:
		// z bounds the outgoing arc of every city from below
		if err := m.addVar(varKey{fam: famZ}, -mip.INFINITY, mip.INFINITY, mip.CONTINUOUS); err != nil {
			return err
		}
		z := m.vars.get(famZ, 0, 0)
		for i := 1; i <= m.n; i++ {
			var e mip.LinExpr
			e.AddTerm(1, z)
			for j := 1; j <= m.n; j++ {
				if i != j {
					e.AddTerm(-m.d(i, j), m.x(i, j))
				}
			}
			if err := m.backend.AddConstr(e, mip.LESS_EQUAL, 0, fmt.Sprintf("maxmin_%d", i)); err != nil {
				return err
			}
		}
		var e mip.LinExpr
		return m.backend.SetObjective(*e.AddTerm(1, z), mip.MAXIMIZE)

	default:
		return errors.Wrapf(atsp.ErrObjectiveFunctionBadInput, "%v", obj)
	}
}

// createCstrDegreeIn makes every city entered exactly once.
func (m *Model) createCstrDegreeIn() error {
	for j := 1; j <= m.n; j++ {
		var e mip.LinExpr
		for i := 1; i <= m.n; i++ {
			if i != j {
				e.AddTerm(1, m.x(i, j))
			}
		}
		if err := m.backend.AddConstr(e, mip.EQUAL, 1, fmt.Sprintf("deg2i_%d", j)); err != nil {
			return err
		}
	}
	return nil
}

// createCstrDegreeOut makes every city left exactly once.
func (m *Model) createCstrDegreeOut() error {
	for i := 1; i <= m.n; i++ {
		var e mip.LinExpr
		for j := 1; j <= m.n; j++ {
			if i != j {
				e.AddTerm(1, m.x(i, j))
			}
		}
		if err := m.backend.AddConstr(e, mip.EQUAL, 1, fmt.Sprintf("deg2o_%d", i)); err != nil {
			return err
		}
	}
	return nil
}

// createCstrDFJ adds sum(x_i_j, i,j in S) <= |S|-1 for every subset S with
// 2 <= |S| <= n-1. Bit k of the mask stands for city k+1.
func (m *Model) createCstrDFJ() error {
	full := uint64(1)<<uint(m.n) - 1
	members := make([]int, 0, m.n)
	for mask := uint64(1); mask < full; mask++ {
		size := bits.OnesCount64(mask)
		if size < 2 {
			continue
		}
		members = members[:0]
		for rest := mask; rest != 0; rest &= rest - 1 {
			members = append(members, bits.TrailingZeros64(rest)+1)
		}
		var e mip.LinExpr
		for _, i := range members {
			for _, j := range members {
				if i != j {
					e.AddTerm(1, m.x(i, j))
				}
			}
		}
		if err := m.backend.AddConstr(e, mip.LESS_EQUAL, float64(size-1), fmt.Sprintf("dfj_%d", mask)); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) createVarsU() error {
	for i := 1; i <= m.n; i++ {
		if err := m.addVar(varKey{fam: famU, i: i}, 0, float64(m.n-1), mip.CONTINUOUS); err != nil {
			return err
		}
	}
	return nil
}

// createCstrMTZ adds u_i - u_j + (n-1) x_i_j <= n-2 for i != j, both != 1.
func (m *Model) createCstrMTZ() error {
	n := float64(m.n)
	for i := 2; i <= m.n; i++ {
		for j := 2; j <= m.n; j++ {
			if i == j {
				continue
			}
			var e mip.LinExpr
			e.AddTerm(1, m.vars.get(famU, i, 0)).
				AddTerm(-1, m.vars.get(famU, j, 0)).
				AddTerm(n-1, m.x(i, j))
			if err := m.backend.AddConstr(e, mip.LESS_EQUAL, n-2, fmt.Sprintf("mtz_%d_%d", i, j)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Model) createVarsG() error {
	for i := 1; i <= m.n; i++ {
		for j := 1; j <= m.n; j++ {
			if i == j {
				continue
			}
			if err := m.addVar(varKey{fam: famG, i: i, j: j}, 0, float64(m.n-1), mip.CONTINUOUS); err != nil {
				return err
			}
		}
	}
	return nil
}

// createCstrFlow makes every city other than 1 absorb one unit of flow:
// sum(g_j_i) - sum(g_i_j, j != 1) = 1.
func (m *Model) createCstrFlow() error {
	for i := 2; i <= m.n; i++ {
		var e mip.LinExpr
		for j := 1; j <= m.n; j++ {
			if j == i {
				continue
			}
			e.AddTerm(1, m.vars.get(famG, j, i))
			if j != 1 {
				e.AddTerm(-1, m.vars.get(famG, i, j))
			}
		}
		if err := m.backend.AddConstr(e, mip.EQUAL, 1, fmt.Sprintf("flow_%d", i)); err != nil {
			return err
		}
	}
	return nil
}

// createCstrLink lets flow use only selected arcs: g_i_j <= (n-1) x_i_j,
// for arcs not entering city 1.
func (m *Model) createCstrLink() error {
	n := float64(m.n)
	for i := 1; i <= m.n; i++ {
		for j := 2; j <= m.n; j++ {
			if i == j {
				continue
			}
			var e mip.LinExpr
			e.AddTerm(1, m.vars.get(famG, i, j)).AddTerm(-(n - 1), m.x(i, j))
			if err := m.backend.AddConstr(e, mip.LESS_EQUAL, 0, fmt.Sprintf("link_%d_%d", i, j)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Kind returns the formulation.
func (m *Model) Kind() Kind {
	return m.kind
}

// Alias is the short name of the formulation, e.g. "MTZ".
func (m *Model) Alias() string {
	return m.kind.String()
}

// Instance returns the instance the model was built for.
func (m *Model) Instance() *atsp.Instance {
	return m.inst
}

// Backend exposes the underlying backend model.
func (m *Model) Backend() mip.Backend {
	return m.backend
}

type fileWriter interface {
	Write(path string) error
}

// Write exports the formulation to path, if the backend supports it.
func (m *Model) Write(path string) error {
	w, ok := m.backend.(fileWriter)
	if !ok {
		return errors.Errorf("tsp: backend %T cannot export models", m.backend)
	}
	return w.Write(path)
}

// Free releases the backend model.
func (m *Model) Free() {
	m.backend.Free()
	m.vars = nil
}
