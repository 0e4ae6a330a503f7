package tsp

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"git.solver4all.com/azaryc2s/atsp"
	"git.solver4all.com/azaryc2s/atsp/mip"
)

// ErrAlreadySolved is returned by a second call to Solve.
var ErrAlreadySolved = errors.New("tsp: model already solved")

// ArcFunc reports the value of the arc variable from city i to city j.
type ArcFunc func(i, j int) (float64, error)

// Solve optimizes the model and extracts the solution. It may be called once.
// When the selected arcs do not form a single tour through all n cities the
// partial route is kept and ErrIncompleteSolution is returned.
func (m *Model) Solve() error {
	if m.solved {
		return ErrAlreadySolved
	}
	m.solved = true

	m.log.Info("Optimizing", zap.Int("points", m.n), zap.Stringer("objective", m.inst.Objective()))
	start := time.Now()
	if err := m.backend.Optimize(); err != nil {
		return errors.Wrapf(err, "optimize %s", m.Alias())
	}
	m.solution.Time = time.Since(start).String()
	return m.updateSolution()
}

func (m *Model) updateSolution() error {
	s := &m.solution

	value, errV := m.backend.ObjVal()
	gap, errG := m.backend.MIPGap()
	if errV == nil && errG == nil {
		s.Value, s.Gap, s.Found = value, gap, true
	} else {
		s.Value, s.Gap, s.Found = 0, 0, false
	}
	if rt, err := m.backend.Runtime(); err == nil {
		s.Runtime = rt
	} else {
		s.Runtime = 0
	}
	s.Status = m.backend.Status()
	s.Optimal = s.Status == mip.OPTIMAL

	switch s.Status {
	case mip.OPTIMAL:
	case mip.INFEASIBLE, mip.INF_OR_UNBD, mip.UNBOUNDED:
		s.Comment = "Model is infeasible or unbounded"
	case mip.TIME_LIMIT:
		s.Comment = "Time limit reached"
	case mip.NODE_LIMIT:
		s.Comment = "Node limit reached"
	default:
		s.Comment = "Optimization stopped with status " + mip.StatusString(s.Status)
	}

	if !s.Found {
		s.Route = []int{}
		m.log.Warn("No solution found", zap.String("status", mip.StatusString(s.Status)))
		return nil
	}

	route, err := WalkRoute(m.n, m.arcValue)
	s.Route = route
	if err != nil {
		if s.Comment != "" {
			s.Comment += "; "
		}
		s.Comment += err.Error()
		m.log.Warn("Incomplete route", zap.Ints("route", route), zap.Error(err))
		return errors.Wrapf(err, "extract %s", m.Alias())
	}
	m.log.Info("Solution extracted",
		zap.Float64("value", s.Value),
		zap.Float64("gap", s.Gap),
		zap.Float64("runtime", s.Runtime),
		zap.Bool("optimal", s.Optimal))
	return nil
}

func (m *Model) arcValue(i, j int) (float64, error) {
	return m.backend.Value(m.x(i, j))
}

// WalkRoute follows the selected arcs from city 1, each step taking the
// lowest numbered successor whose arc value exceeds 0.5, for n-1 steps. The
// result is checked to visit every city once and to close back at city 1.
func WalkRoute(n int, arc ArcFunc) ([]int, error) {
	route := make([]int, 1, n)
	route[0] = 1
	p0 := 1
	for k := 1; k < n; k++ {
		for p1 := 1; p1 <= n; p1++ {
			if p1 == p0 {
				continue
			}
			v, err := arc(p0, p1)
			if err != nil {
				return route, err
			}
			if v > 0.5 {
				route = append(route, p1)
				p0 = p1
				break
			}
		}
	}
	if err := atsp.CheckRoute(route, n); err != nil {
		return route, err
	}
	v, err := arc(p0, 1)
	if err != nil {
		return route, err
	}
	if v <= 0.5 {
		return route, errors.Wrapf(atsp.ErrIncompleteSolution, "no arc from %d back to 1", p0)
	}
	return route, nil
}

// Solution returns the solution record. It is filled in by Solve.
func (m *Model) Solution() *atsp.Solution {
	return &m.solution
}

// Report writes a human readable summary of the solution to w.
func (m *Model) Report(w io.Writer) error {
	_, err := io.WriteString(w, m.solution.String())
	return err
}
