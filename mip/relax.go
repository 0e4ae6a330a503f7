package mip

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

type relaxStatus int

const (
	relaxOptimal relaxStatus = iota
	relaxInfeasible
	relaxUnbounded
	relaxNumeric
	relaxTimeLimit
)

type relaxation struct {
	status relaxStatus
	x      []float64
	// z is the minimisation objective without the constant term.
	z   float64
	err error
}

// stdCol is a column of the standard form: y >= 0 contributes sign*y to
// variable v.
type stdCol struct {
	v    int
	sign float64
}

// colRange bounds a shifted column from above.
type colRange struct {
	col   int
	width float64
}

type stdRow struct {
	a   []float64
	b   float64
	rel Relation
}

// relax solves the LP relaxation of the model with variable bounds lo and
// hi for the minimisation costs cost, giving up at deadline unless it is
// zero.
//
// The relaxation is brought into the standard form min c'y, Ay = b, y >= 0:
// finite lower bounds are shifted to zero, variables with only an upper
// bound are mirrored, free variables are split and finite ranges become rows.
func (m *Model) relax(lo, hi, cost []float64, deadline time.Time) relaxation {
	n := len(lo)
	off := make([]float64, n)
	colsOf := make([][]int, n)
	var (
		cols   []stdCol
		ranges []colRange
	)
	addCol := func(j int, sign float64) int {
		colsOf[j] = append(colsOf[j], len(cols))
		cols = append(cols, stdCol{v: j, sign: sign})
		return len(cols) - 1
	}
	for j := 0; j < n; j++ {
		switch {
		case hi[j]-lo[j] <= 0:
			off[j] = lo[j]
		case !math.IsInf(lo[j], -1):
			off[j] = lo[j]
			c := addCol(j, 1)
			if !math.IsInf(hi[j], 1) {
				ranges = append(ranges, colRange{col: c, width: hi[j] - lo[j]})
			}
		case !math.IsInf(hi[j], 1):
			off[j] = hi[j]
			addCol(j, -1)
		default:
			addCol(j, 1)
			addCol(j, -1)
		}
	}

	nc := len(cols)
	var rows []stdRow
	for _, r := range m.rows {
		a := make([]float64, nc)
		b := r.rhs
		for k, j := range r.idx {
			coef := r.val[k]
			b -= coef * off[j]
			for _, c := range colsOf[j] {
				a[c] += coef * cols[c].sign
			}
		}
		if nc == 0 || floats.Norm(a, math.Inf(1)) == 0 {
			if !trivialRowHolds(r.rel, b, m.params.FeasTol) {
				return relaxation{status: relaxInfeasible}
			}
			continue
		}
		rows = append(rows, stdRow{a: a, b: b, rel: r.rel})
	}
	for _, rg := range ranges {
		a := make([]float64, nc)
		a[rg.col] = 1
		rows = append(rows, stdRow{a: a, b: rg.width, rel: LESS_EQUAL})
	}

	colCost := make([]float64, nc)
	used := make([]bool, nc)
	for c, col := range cols {
		colCost[c] = cost[col.v] * col.sign
	}
	for _, r := range rows {
		for c, v := range r.a {
			if v != 0 {
				used[c] = true
			}
		}
	}
	var active []int
	for c := range cols {
		if used[c] {
			active = append(active, c)
			continue
		}
		// A column in no row only moves the objective.
		if colCost[c] < 0 {
			return relaxation{status: relaxUnbounded}
		}
	}

	y := make([]float64, nc)
	if len(rows) > 0 {
		status, err := m.simplex(rows, active, colCost, y, deadline)
		if status != relaxOptimal {
			return relaxation{status: status, err: err}
		}
	}

	x := make([]float64, n)
	copy(x, off)
	for c, col := range cols {
		x[col.v] += col.sign * y[c]
	}
	return relaxation{status: relaxOptimal, x: x, z: floats.Dot(cost, x)}
}

func trivialRowHolds(rel Relation, b, tol float64) bool {
	switch rel {
	case LESS_EQUAL:
		return 0 <= b+tol
	case GREATER_EQUAL:
		return 0 >= b-tol
	}
	return math.Abs(b) <= tol
}

// simplex solves the standard form over the active columns and writes the
// column values into y. Inequalities get a slack, rows without a slack
// usable as a starting basis get an artificial.
func (m *Model) simplex(rows []stdRow, active []int, colCost, y []float64, deadline time.Time) (relaxStatus, error) {
	nr := len(rows)
	slackCoef := make([]float64, nr)
	needArt := make([]bool, nr)
	b := make([]float64, nr)
	nSlack, nArt := 0, 0
	for i, r := range rows {
		b[i] = r.b
		switch r.rel {
		case LESS_EQUAL:
			slackCoef[i] = 1
		case GREATER_EQUAL:
			slackCoef[i] = -1
		}
		if b[i] < 0 || (b[i] == 0 && slackCoef[i] < 0) {
			b[i] = -b[i]
			slackCoef[i] = -slackCoef[i]
			rows[i].a = negated(r.a)
		}
		if slackCoef[i] != 0 {
			nSlack++
		}
		if slackCoef[i] != 1 {
			needArt[i] = true
			nArt++
		}
	}

	na := len(active)
	ncols := na + nSlack + nArt
	tb := newTableau(nr, ncols, deadline)
	cost := make([]float64, ncols)
	for k, col := range active {
		cost[k] = colCost[col]
	}
	slack, art := na, na+nSlack
	for i, r := range rows {
		for k, col := range active {
			if v := r.a[col]; v != 0 {
				tb.t.Set(i, k, v)
			}
		}
		tb.t.Set(i, ncols, b[i])
		if slackCoef[i] != 0 {
			tb.t.Set(i, slack, slackCoef[i])
			if !needArt[i] {
				tb.basis[i] = slack
			}
			slack++
		}
		if needArt[i] {
			tb.t.Set(i, art, 1)
			tb.basis[i] = art
			art++
		}
	}

	status, err := tb.solve(cost, na+nSlack, m.params.FeasTol)
	if status != relaxOptimal {
		return status, err
	}
	for i, j := range tb.basis {
		if j < na {
			y[active[j]] = math.Max(tb.rhs(i), 0)
		}
	}
	return relaxOptimal, nil
}

func negated(a []float64) []float64 {
	r := make([]float64, len(a))
	for i, v := range a {
		r[i] = -v
	}
	return r
}
