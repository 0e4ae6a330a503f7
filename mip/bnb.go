package mip

import (
	"math"
	"time"

	"go.uber.org/zap"
)

type node struct {
	lo, hi []float64
	// bound is the relaxation value of the parent, a lower bound for the
	// subtree.
	bound float64
}

// branchAndBound explores the tree depth first, taking the up branch first
// so that a tour is found early. All values are in minimisation form.
func (m *Model) branchAndBound(start time.Time) {
	n := len(m.lb)
	cost := make([]float64, n)
	for j := range cost {
		cost[j] = float64(m.sense) * m.obj[j]
	}
	root := node{lo: make([]float64, n), hi: make([]float64, n), bound: math.Inf(-1)}
	copy(root.lo, m.lb)
	copy(root.hi, m.ub)
	for j, t := range m.vtype {
		if t == CONTINUOUS {
			continue
		}
		root.lo[j] = math.Ceil(root.lo[j] - m.params.IntFeasTol)
		root.hi[j] = math.Floor(root.hi[j] + m.params.IntFeasTol)
	}

	m.nodeCount = 0
	m.hasSol = false
	m.x = nil
	var (
		incumbent = math.Inf(1)
		best      []float64
		pruned    = math.Inf(1)
		status    int
		stack     = []node{root}
	)
	cutoff := func() float64 {
		if math.IsInf(incumbent, 1) {
			return incumbent
		}
		return incumbent - math.Max(1e-9, m.params.MIPGap*math.Abs(incumbent))
	}
	var deadline time.Time
	if m.params.TimeLimit > 0 {
		deadline = start.Add(time.Duration(m.params.TimeLimit * float64(time.Second)))
	}
	prune := func(bound float64) {
		if bound < incumbent && bound < pruned {
			pruned = bound
		}
	}

	for len(stack) > 0 {
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			status = TIME_LIMIT
			break
		}
		if m.params.NodeLimit > 0 && m.nodeCount >= m.params.NodeLimit {
			status = NODE_LIMIT
			break
		}
		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if nd.bound >= cutoff() {
			prune(nd.bound)
			continue
		}
		isRoot := m.nodeCount == 0
		m.nodeCount++
		r := m.relax(nd.lo, nd.hi, cost, deadline)
		if r.status == relaxTimeLimit {
			// the node stays open for the bound
			stack = append(stack, nd)
			status = TIME_LIMIT
			break
		}
		switch r.status {
		case relaxInfeasible:
			continue
		case relaxUnbounded:
			if isRoot {
				m.status = INF_OR_UNBD
				return
			}
			continue
		case relaxNumeric:
			m.log.Warn("LP relaxation failed", zap.Int("node", m.nodeCount), zap.Error(r.err))
			if isRoot {
				m.status = NUMERIC
				return
			}
			continue
		}
		if isRoot {
			m.log.Debug("Root relaxation", zap.Float64("obj", float64(m.sense)*r.z+m.objConst))
		}
		if r.z >= cutoff() {
			prune(r.z)
			continue
		}
		j := m.branchVar(r.x)
		if j < 0 {
			incumbent = r.z
			best = m.roundIntegers(r.x)
			m.log.Debug("New incumbent",
				zap.Int("node", m.nodeCount),
				zap.Float64("obj", float64(m.sense)*incumbent+m.objConst))
			continue
		}
		v := r.x[j]
		down := node{lo: nd.lo, hi: cloneFloats(nd.hi), bound: r.z}
		down.hi[j] = math.Floor(v)
		up := node{lo: cloneFloats(nd.lo), hi: nd.hi, bound: r.z}
		up.lo[j] = math.Ceil(v)
		stack = append(stack, down, up)
	}

	bound := math.Min(incumbent, pruned)
	if status == 0 {
		if best != nil {
			status = OPTIMAL
		} else {
			status = INFEASIBLE
		}
	} else {
		for _, nd := range stack {
			bound = math.Min(bound, nd.bound)
		}
	}
	m.status = status
	if best != nil {
		m.hasSol = true
		m.x = best
		m.objVal = float64(m.sense)*incumbent + m.objConst
		m.objBound = float64(m.sense)*bound + m.objConst
	}
}

// branchVar returns the most fractional integer variable of x, or -1 when x
// is integral within IntFeasTol.
func (m *Model) branchVar(x []float64) int {
	best, bestFrac := -1, m.params.IntFeasTol
	for j, v := range x {
		if m.vtype[j] == CONTINUOUS {
			continue
		}
		f := v - math.Floor(v)
		if d := math.Min(f, 1-f); d > bestFrac {
			best, bestFrac = j, d
		}
	}
	return best
}

func (m *Model) roundIntegers(x []float64) []float64 {
	r := cloneFloats(x)
	for j, t := range m.vtype {
		if t != CONTINUOUS {
			r[j] = math.Round(r[j])
		}
	}
	return r
}

func cloneFloats(s []float64) []float64 {
	r := make([]float64, len(s))
	copy(r, s)
	return r
}
