package mip_test

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.solver4all.com/azaryc2s/atsp/mip"
)

func newModel(t *testing.T, mutate func(*mip.Params)) *mip.Model {
	t.Helper()
	params := mip.DefaultParams()
	params.OutputFlag = false
	if mutate != nil {
		mutate(&params)
	}
	m := mip.NewEnv(params, nil).NewModel(t.Name())
	t.Cleanup(m.Free)
	return m
}

func addVar(t *testing.T, m *mip.Model, lb, ub float64, vtype mip.VarType, name string) mip.Var {
	t.Helper()
	v, err := m.AddVar(lb, ub, vtype, name)
	require.NoError(t, err)
	return v
}

func expr(coeffs []float64, vars ...mip.Var) mip.LinExpr {
	var e mip.LinExpr
	for i, v := range vars {
		e.AddTerm(coeffs[i], v)
	}
	return e
}

func TestContinuousLP(t *testing.T) {
	m := newModel(t, nil)
	x := addVar(t, m, 0, mip.INFINITY, mip.CONTINUOUS, "x")
	y := addVar(t, m, 0, mip.INFINITY, mip.CONTINUOUS, "y")
	require.NoError(t, m.AddConstr(expr([]float64{1, 2}, x, y), mip.LESS_EQUAL, 4, "c1"))
	require.NoError(t, m.AddConstr(expr([]float64{3, 1}, x, y), mip.LESS_EQUAL, 6, "c2"))
	require.NoError(t, m.SetObjective(expr([]float64{1, 1}, x, y), mip.MAXIMIZE))

	require.NoError(t, m.Optimize())
	require.Equal(t, mip.OPTIMAL, m.Status())

	obj, err := m.ObjVal()
	require.NoError(t, err)
	assert.InDelta(t, 2.8, obj, 1e-7)
	xv, err := m.Value(x)
	require.NoError(t, err)
	yv, err := m.Value(y)
	require.NoError(t, err)
	assert.InDelta(t, 1.6, xv, 1e-7)
	assert.InDelta(t, 1.2, yv, 1e-7)

	gap, err := m.MIPGap()
	require.NoError(t, err)
	assert.Zero(t, gap)
}

func TestBinaryKnapsack(t *testing.T) {
	m := newModel(t, nil)
	a := addVar(t, m, 0, 1, mip.BINARY, "a")
	b := addVar(t, m, 0, 1, mip.BINARY, "b")
	c := addVar(t, m, 0, 1, mip.BINARY, "c")
	require.NoError(t, m.AddConstr(expr([]float64{2, 3, 1}, a, b, c), mip.LESS_EQUAL, 5, "weight"))
	require.NoError(t, m.SetObjective(expr([]float64{5, 4, 3}, a, b, c), mip.MAXIMIZE))

	require.NoError(t, m.Optimize())
	require.Equal(t, mip.OPTIMAL, m.Status())
	obj, err := m.ObjVal()
	require.NoError(t, err)
	assert.InDelta(t, 9, obj, 1e-6)

	for v, want := range map[mip.Var]float64{a: 1, b: 1, c: 0} {
		got, err := m.Value(v)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestIntegerBranching(t *testing.T) {
	m := newModel(t, nil)
	x := addVar(t, m, 0, 10, mip.INTEGER, "x")
	y := addVar(t, m, 0, 10, mip.INTEGER, "y")
	require.NoError(t, m.AddConstr(expr([]float64{2, 2}, x, y), mip.GREATER_EQUAL, 3, "cover"))
	require.NoError(t, m.SetObjective(expr([]float64{1, 1}, x, y), mip.MINIMIZE))

	require.NoError(t, m.Optimize())
	require.Equal(t, mip.OPTIMAL, m.Status())
	obj, err := m.ObjVal()
	require.NoError(t, err)
	assert.InDelta(t, 2, obj, 1e-6)
	assert.Greater(t, m.NodeCount(), 1)

	// the root relaxation gives 1.5
	bound, err := m.ObjBound()
	require.NoError(t, err)
	assert.LessOrEqual(t, bound, obj+1e-6)
	assert.GreaterOrEqual(t, bound, 1.5-1e-6)
}

func TestFreeVariableAndEquality(t *testing.T) {
	m := newModel(t, nil)
	x := addVar(t, m, 0, 10, mip.INTEGER, "x")
	w := addVar(t, m, 0, 10, mip.CONTINUOUS, "w")
	z := addVar(t, m, -mip.INFINITY, mip.INFINITY, mip.CONTINUOUS, "z")
	// z >= |x - 3|
	require.NoError(t, m.AddConstr(expr([]float64{1, -1}, z, x), mip.GREATER_EQUAL, -3, "abs_lo"))
	require.NoError(t, m.AddConstr(expr([]float64{1, 1}, z, x), mip.GREATER_EQUAL, 3, "abs_hi"))
	require.NoError(t, m.AddConstr(expr([]float64{1, 1}, x, w), mip.EQUAL, 5, "sum"))
	require.NoError(t, m.SetObjective(expr([]float64{1}, z), mip.MINIMIZE))

	require.NoError(t, m.Optimize())
	require.Equal(t, mip.OPTIMAL, m.Status())
	obj, err := m.ObjVal()
	require.NoError(t, err)
	assert.InDelta(t, 0, obj, 1e-7)
	xv, err := m.Value(x)
	require.NoError(t, err)
	wv, err := m.Value(w)
	require.NoError(t, err)
	assert.Equal(t, 3.0, xv)
	assert.InDelta(t, 2, wv, 1e-7)
}

func TestInfeasible(t *testing.T) {
	m := newModel(t, nil)
	x := addVar(t, m, 0, 1, mip.BINARY, "x")
	y := addVar(t, m, 0, 1, mip.BINARY, "y")
	require.NoError(t, m.AddConstr(expr([]float64{1, 1}, x, y), mip.GREATER_EQUAL, 3, "too_much"))
	require.NoError(t, m.SetObjective(expr([]float64{1, 1}, x, y), mip.MINIMIZE))

	require.NoError(t, m.Optimize())
	assert.Equal(t, mip.INFEASIBLE, m.Status())

	_, err := m.ObjVal()
	assert.ErrorIs(t, err, mip.ErrNoSolution)
	_, err = m.MIPGap()
	assert.ErrorIs(t, err, mip.ErrNoSolution)
	_, err = m.Value(x)
	assert.ErrorIs(t, err, mip.ErrNoSolution)
	_, err = m.Runtime()
	assert.NoError(t, err)
}

func TestNodeLimit(t *testing.T) {
	m := newModel(t, func(p *mip.Params) { p.NodeLimit = 1 })
	x := addVar(t, m, 0, 10, mip.INTEGER, "x")
	y := addVar(t, m, 0, 10, mip.INTEGER, "y")
	require.NoError(t, m.AddConstr(expr([]float64{2, 2}, x, y), mip.GREATER_EQUAL, 3, "cover"))
	require.NoError(t, m.SetObjective(expr([]float64{1, 1}, x, y), mip.MINIMIZE))

	require.NoError(t, m.Optimize())
	assert.Equal(t, mip.NODE_LIMIT, m.Status())
	_, err := m.ObjVal()
	assert.ErrorIs(t, err, mip.ErrNoSolution)
}

func TestReadBeforeOptimize(t *testing.T) {
	m := newModel(t, nil)
	x := addVar(t, m, 0, 1, mip.BINARY, "x")

	assert.Equal(t, mip.LOADED, m.Status())
	_, err := m.Runtime()
	assert.ErrorIs(t, err, mip.ErrNotOptimized)
	_, err = m.Value(x)
	assert.ErrorIs(t, err, mip.ErrNoSolution)
}

func TestBadInput(t *testing.T) {
	m := newModel(t, nil)
	x := addVar(t, m, 0, 1, mip.BINARY, "x")

	_, err := m.AddVar(2, 1, mip.CONTINUOUS, "bad")
	assert.Error(t, err)
	_, err = m.AddVar(0, 1, mip.VarType('Q'), "bad")
	assert.Error(t, err)

	var e mip.LinExpr
	e.AddTerm(1, x).AddTerm(1, mip.NewVar(x.Index()))
	assert.NoError(t, m.AddConstr(e, mip.LESS_EQUAL, 1, "ok"))
	assert.ErrorIs(t, m.AddConstr(expr([]float64{1}, mip.NewVar(7)), mip.LESS_EQUAL, 1, "ghost"), mip.ErrUnknownVar)

	other := newModel(t, nil)
	addVar(t, other, 0, 1, mip.BINARY, "a")
	foreign := addVar(t, other, 0, 1, mip.BINARY, "b")
	err = m.AddConstr(expr([]float64{1}, foreign), mip.LESS_EQUAL, 1, "foreign")
	assert.ErrorIs(t, err, mip.ErrUnknownVar)

	assert.Error(t, m.AddConstr(expr([]float64{1}, x), mip.Relation('!'), 1, "rel"))
	assert.Error(t, m.SetObjective(expr([]float64{1}, x), mip.Sense(0)))
}

func TestFreedModel(t *testing.T) {
	params := mip.DefaultParams()
	m := mip.NewEnv(params, nil).NewModel("freed")
	m.Free()
	_, err := m.AddVar(0, 1, mip.BINARY, "x")
	assert.ErrorIs(t, err, mip.ErrFreed)
	assert.ErrorIs(t, m.Optimize(), mip.ErrFreed)
}

func TestWriteLP(t *testing.T) {
	m := newModel(t, nil)
	x := addVar(t, m, 0, 1, mip.BINARY, "x_1_2")
	u := addVar(t, m, 0, 3, mip.CONTINUOUS, "u_2")
	z := addVar(t, m, -mip.INFINITY, mip.INFINITY, mip.CONTINUOUS, "z")
	require.NoError(t, m.AddConstr(expr([]float64{1, -3}, u, x), mip.LESS_EQUAL, 2, "mtz_2_3"))
	require.NoError(t, m.AddConstr(expr([]float64{1, -1.5}, z, x), mip.GREATER_EQUAL, 0, ""))
	require.NoError(t, m.SetObjective(expr([]float64{1}, z), mip.MINIMIZE))

	var buf bytes.Buffer
	require.NoError(t, m.WriteLP(&buf))
	out := buf.String()
	assert.Contains(t, out, "Minimize\n obj: z\n")
	assert.Contains(t, out, " mtz_2_3: u_2 - 3 x_1_2 <= 2\n")
	assert.Contains(t, out, " R1: z - 1.5 x_1_2 >= 0\n")
	assert.Contains(t, out, " 0 <= u_2 <= 3\n")
	assert.Contains(t, out, " z free\n")
	assert.Contains(t, out, "Binaries\n x_1_2\n")

	path := filepath.Join(t.TempDir(), "model.lp")
	require.NoError(t, m.Write(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out, string(b))
}

func TestLoadParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("time_limit: 30\nmip_gap: 0.01\noutput_flag: false\n"), 0644))

	params, err := mip.LoadParams(path)
	require.NoError(t, err)
	assert.Equal(t, 30.0, params.TimeLimit)
	assert.Equal(t, 0.01, params.MIPGap)
	assert.False(t, params.OutputFlag)
	assert.Equal(t, mip.DefaultParams().IntFeasTol, params.IntFeasTol)

	require.NoError(t, os.WriteFile(path, []byte("int_feas_tol: 0.7\n"), 0644))
	_, err = mip.LoadParams(path)
	assert.Error(t, err)

	_, err = mip.LoadParams(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

// assignment adds binary x_i_j for i != j with one outgoing and one incoming
// arc per node of the unit square, the structure of a tour relaxation.
func assignment(t *testing.T, m *mip.Model) (x [4][4]mip.Var, d [4][4]float64) {
	t.Helper()
	pts := [4][2]float64{{0, 0}, {0, 1}, {1, 1}, {1, 0}}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i == j {
				continue
			}
			d[i][j] = math.Hypot(pts[i][0]-pts[j][0], pts[i][1]-pts[j][1])
			x[i][j] = addVar(t, m, 0, 1, mip.BINARY, fmt.Sprintf("x_%d_%d", i, j))
		}
	}
	for i := 0; i < 4; i++ {
		var out, in mip.LinExpr
		for j := 0; j < 4; j++ {
			if i != j {
				out.AddTerm(1, x[i][j])
				in.AddTerm(1, x[j][i])
			}
		}
		require.NoError(t, m.AddConstr(out, mip.EQUAL, 1, fmt.Sprintf("out_%d", i)))
		require.NoError(t, m.AddConstr(in, mip.EQUAL, 1, fmt.Sprintf("in_%d", i)))
	}
	return x, d
}

func TestDegenerateMinimaxAssignment(t *testing.T) {
	m := newModel(t, func(p *mip.Params) { p.TimeLimit = 30 })
	x, d := assignment(t, m)
	z := addVar(t, m, -mip.INFINITY, mip.INFINITY, mip.CONTINUOUS, "z")
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i != j {
				require.NoError(t, m.AddConstr(*new(mip.LinExpr).AddTerm(1, z).AddTerm(-d[i][j], x[i][j]), mip.GREATER_EQUAL, 0, ""))
			}
		}
	}
	require.NoError(t, m.SetObjective(expr([]float64{1}, z), mip.MINIMIZE))

	require.NoError(t, m.Optimize())
	require.Equal(t, mip.OPTIMAL, m.Status())
	obj, err := m.ObjVal()
	require.NoError(t, err)
	assert.InDelta(t, 1, obj, 1e-6)
}

func TestDegenerateMaximinAssignment(t *testing.T) {
	m := newModel(t, func(p *mip.Params) { p.TimeLimit = 30 })
	x, d := assignment(t, m)
	z := addVar(t, m, -mip.INFINITY, mip.INFINITY, mip.CONTINUOUS, "z")
	for i := 0; i < 4; i++ {
		e := new(mip.LinExpr).AddTerm(1, z)
		for j := 0; j < 4; j++ {
			if i != j {
				e.AddTerm(-d[i][j], x[i][j])
			}
		}
		require.NoError(t, m.AddConstr(*e, mip.LESS_EQUAL, 0, ""))
	}
	require.NoError(t, m.SetObjective(expr([]float64{1}, z), mip.MAXIMIZE))

	require.NoError(t, m.Optimize())
	require.Equal(t, mip.OPTIMAL, m.Status())
	obj, err := m.ObjVal()
	require.NoError(t, err)
	// two 2-cycles along the diagonals
	assert.InDelta(t, math.Sqrt2, obj, 1e-6)
}

// Beale's example cycles under most-negative pricing with lowest-index ties.
func TestBealeCycling(t *testing.T) {
	m := newModel(t, func(p *mip.Params) { p.TimeLimit = 30 })
	x4 := addVar(t, m, 0, mip.INFINITY, mip.CONTINUOUS, "x4")
	x5 := addVar(t, m, 0, mip.INFINITY, mip.CONTINUOUS, "x5")
	x6 := addVar(t, m, 0, mip.INFINITY, mip.CONTINUOUS, "x6")
	x7 := addVar(t, m, 0, mip.INFINITY, mip.CONTINUOUS, "x7")
	require.NoError(t, m.AddConstr(expr([]float64{0.25, -8, -1, 9}, x4, x5, x6, x7), mip.LESS_EQUAL, 0, "r1"))
	require.NoError(t, m.AddConstr(expr([]float64{0.5, -12, -0.5, 3}, x4, x5, x6, x7), mip.LESS_EQUAL, 0, "r2"))
	require.NoError(t, m.AddConstr(expr([]float64{1}, x6), mip.LESS_EQUAL, 1, "r3"))
	require.NoError(t, m.SetObjective(expr([]float64{-0.75, 20, -0.5, 6}, x4, x5, x6, x7), mip.MINIMIZE))

	require.NoError(t, m.Optimize())
	require.Equal(t, mip.OPTIMAL, m.Status())
	obj, err := m.ObjVal()
	require.NoError(t, err)
	assert.InDelta(t, -1.25, obj, 1e-7)
}

func TestTimeLimit(t *testing.T) {
	m := newModel(t, func(p *mip.Params) { p.TimeLimit = 1e-9 })
	assignment(t, m)

	require.NoError(t, m.Optimize())
	assert.Equal(t, mip.TIME_LIMIT, m.Status())
	_, err := m.ObjVal()
	assert.ErrorIs(t, err, mip.ErrNoSolution)
	rt, err := m.Runtime()
	require.NoError(t, err)
	assert.Less(t, rt, 1.0)
}
