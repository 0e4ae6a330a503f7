package mip

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var errIterationLimit = errors.New("mip: simplex iteration limit reached")

const (
	pivotTol = 1e-9
	costTol  = 1e-9
	// after this many degenerate pivots in a row pricing switches to
	// Bland's rule for the rest of the phase
	degenerateStreak = 50
	// the deadline is read every deadlineCheck pivots
	deadlineCheck = 32
)

// tableau is a dense simplex tableau of min c'y, Ay = b, y >= 0 with b >= 0.
// Rows 0..rows-1 hold B^-1 [A | b], row rows holds the reduced costs and -z.
type tableau struct {
	t          *mat.Dense
	rows, cols int
	basis      []int
	// barred columns never enter the basis
	barred   []bool
	deadline time.Time
	iters    int
	maxIters int
}

func newTableau(rows, cols int, deadline time.Time) *tableau {
	return &tableau{
		t:        mat.NewDense(rows+1, cols+1, nil),
		rows:     rows,
		cols:     cols,
		basis:    make([]int, rows),
		barred:   make([]bool, cols),
		deadline: deadline,
		maxIters: 50*(rows+cols) + 1000,
	}
}

func (tb *tableau) row(i int) []float64 {
	return tb.t.RawRowView(i)
}

func (tb *tableau) rhs(i int) float64 {
	return tb.t.At(i, tb.cols)
}

// price sets the objective row to the reduced costs of cost for the current
// basis.
func (tb *tableau) price(cost []float64) {
	obj := tb.row(tb.rows)
	copy(obj, cost)
	obj[tb.cols] = 0
	for i, j := range tb.basis {
		if cb := cost[j]; cb != 0 {
			floats.AddScaled(obj, -cb, tb.row(i))
		}
	}
}

// objective returns the value of the priced objective.
func (tb *tableau) objective() float64 {
	return -tb.t.At(tb.rows, tb.cols)
}

func (tb *tableau) pivot(r, c int) {
	pr := tb.row(r)
	floats.Scale(1/pr[c], pr)
	pr[c] = 1
	for i := 0; i <= tb.rows; i++ {
		if i == r {
			continue
		}
		ri := tb.row(i)
		if f := ri[c]; f != 0 {
			floats.AddScaled(ri, -f, pr)
			ri[c] = 0
			if i < tb.rows && ri[tb.cols] < 0 && ri[tb.cols] > -pivotTol {
				ri[tb.cols] = 0
			}
		}
	}
	tb.basis[r] = c
}

func (tb *tableau) entering(bland bool) int {
	obj := tb.row(tb.rows)
	enter, best := -1, -costTol
	for j := 0; j < tb.cols; j++ {
		if tb.barred[j] || obj[j] >= best {
			continue
		}
		if bland {
			return j
		}
		enter, best = j, obj[j]
	}
	return enter
}

// leaving is the ratio test. Ties go to the row with the lowest basic column.
func (tb *tableau) leaving(c int) (int, float64) {
	leave, ratio := -1, math.Inf(1)
	for i := 0; i < tb.rows; i++ {
		a := tb.t.At(i, c)
		if a <= pivotTol {
			continue
		}
		q := math.Max(tb.rhs(i), 0) / a
		switch {
		case q < ratio-pivotTol:
			leave, ratio = i, q
		case q <= ratio+pivotTol && tb.basis[i] < tb.basis[leave]:
			leave = i
		}
	}
	return leave, ratio
}

// iterate pivots until the priced objective is optimal.
func (tb *tableau) iterate() (relaxStatus, error) {
	streak := 0
	bland := false
	for {
		if !tb.deadline.IsZero() && tb.iters%deadlineCheck == 0 && time.Now().After(tb.deadline) {
			return relaxTimeLimit, nil
		}
		tb.iters++
		if tb.iters > tb.maxIters {
			return relaxNumeric, errIterationLimit
		}
		enter := tb.entering(bland)
		if enter < 0 {
			return relaxOptimal, nil
		}
		leave, ratio := tb.leaving(enter)
		if leave < 0 {
			return relaxUnbounded, nil
		}
		if ratio <= pivotTol {
			streak++
			if streak > degenerateStreak {
				bland = true
			}
		} else {
			streak = 0
		}
		tb.pivot(leave, enter)
	}
}

// solve runs both phases. Columns from artStart on are artificials; the
// starting basis must be an identity. Phase one minimises the sum of the
// artificials, phase two minimises cost with the artificials barred.
func (tb *tableau) solve(cost []float64, artStart int, feasTol float64) (relaxStatus, error) {
	if artStart < tb.cols {
		phase1 := make([]float64, tb.cols)
		for j := artStart; j < tb.cols; j++ {
			phase1[j] = 1
		}
		tb.price(phase1)
		if status, err := tb.iterate(); status != relaxOptimal {
			if status == relaxUnbounded {
				// phase one is bounded below by zero
				return relaxNumeric, errors.New("mip: unbounded phase one")
			}
			return status, err
		}
		scale := 1.0
		for i := 0; i < tb.rows; i++ {
			scale = math.Max(scale, math.Abs(tb.rhs(i)))
		}
		if tb.objective() > feasTol*scale {
			return relaxInfeasible, nil
		}
		tb.driveOut(artStart)
		for j := artStart; j < tb.cols; j++ {
			tb.barred[j] = true
		}
	}
	tb.price(cost)
	return tb.iterate()
}

// driveOut pivots basic artificials at zero level out of the basis. A row
// without a usable column is redundant and keeps its artificial, which
// then never moves.
func (tb *tableau) driveOut(artStart int) {
	for i := 0; i < tb.rows; i++ {
		if tb.basis[i] < artStart {
			continue
		}
		r := tb.row(i)
		best, bestAbs := -1, pivotTol
		for j := 0; j < artStart; j++ {
			if a := math.Abs(r[j]); a > bestAbs {
				best, bestAbs = j, a
			}
		}
		if best >= 0 {
			tb.pivot(i, best)
		}
	}
}
