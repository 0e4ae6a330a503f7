package tsp_test

import (
	"strings"

	"github.com/pkg/errors"

	"git.solver4all.com/azaryc2s/atsp/mip"
)

type recordedVar struct {
	name   string
	lb, ub float64
	vtype  mip.VarType
}

type recordedRow struct {
	name  string
	terms map[string]float64
	rel   mip.Relation
	rhs   float64
}

// recorder is a Backend that records the formulation and answers the
// result queries from canned values.
type recorder struct {
	vars  []recordedVar
	rows  []recordedRow
	obj   map[string]float64
	sense mip.Sense

	values    map[string]float64
	objVal    float64
	noSol     bool
	status    int
	optimized bool
	freed     bool
}

func newRecorder() *recorder {
	return &recorder{status: mip.LOADED}
}

func (r *recorder) AddVar(lb, ub float64, vtype mip.VarType, name string) (mip.Var, error) {
	r.vars = append(r.vars, recordedVar{name: name, lb: lb, ub: ub, vtype: vtype})
	return mip.NewVar(len(r.vars) - 1), nil
}

func (r *recorder) terms(expr mip.LinExpr) map[string]float64 {
	t := make(map[string]float64, len(expr.Terms))
	for _, term := range expr.Terms {
		t[r.vars[term.Var.Index()].name] += term.Coeff
	}
	return t
}

func (r *recorder) AddConstr(expr mip.LinExpr, rel mip.Relation, rhs float64, name string) error {
	r.rows = append(r.rows, recordedRow{name: name, terms: r.terms(expr), rel: rel, rhs: rhs - expr.Constant})
	return nil
}

func (r *recorder) SetObjective(expr mip.LinExpr, sense mip.Sense) error {
	r.obj = r.terms(expr)
	r.sense = sense
	return nil
}

func (r *recorder) Optimize() error {
	r.optimized = true
	if r.status == mip.LOADED {
		r.status = mip.OPTIMAL
	}
	return nil
}

func (r *recorder) Value(v mip.Var) (float64, error) {
	if r.noSol {
		return 0, mip.ErrNoSolution
	}
	return r.values[r.vars[v.Index()].name], nil
}

func (r *recorder) ObjVal() (float64, error) {
	if r.noSol {
		return 0, mip.ErrNoSolution
	}
	return r.objVal, nil
}

func (r *recorder) MIPGap() (float64, error) {
	if r.noSol {
		return 0, mip.ErrNoSolution
	}
	return 0, nil
}

func (r *recorder) Runtime() (float64, error) {
	if !r.optimized {
		return 0, errors.New("not optimized")
	}
	return 0.25, nil
}

func (r *recorder) Status() int {
	return r.status
}

func (r *recorder) Free() {
	r.freed = true
}

func (r *recorder) rowsWithPrefix(prefix string) []recordedRow {
	var rows []recordedRow
	for _, row := range r.rows {
		if strings.HasPrefix(row.name, prefix) {
			rows = append(rows, row)
		}
	}
	return rows
}

func (r *recorder) row(name string) (recordedRow, bool) {
	for _, row := range r.rows {
		if row.name == name {
			return row, true
		}
	}
	return recordedRow{}, false
}

func (r *recorder) variable(name string) (recordedVar, bool) {
	for _, v := range r.vars {
		if v.name == name {
			return v, true
		}
	}
	return recordedVar{}, false
}
