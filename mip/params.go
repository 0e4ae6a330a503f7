package mip

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Params are the solver parameters of an environment. Zero limits mean no
// limit.
type Params struct {
	// TimeLimit in seconds.
	TimeLimit  float64 `yaml:"time_limit"`
	NodeLimit  int     `yaml:"node_limit"`
	MIPGap     float64 `yaml:"mip_gap"`
	IntFeasTol float64 `yaml:"int_feas_tol"`
	FeasTol    float64 `yaml:"feas_tol"`
	OutputFlag bool    `yaml:"output_flag"`
}

// DefaultParams returns the defaults, matching Gurobi's where they exist.
func DefaultParams() Params {
	return Params{
		MIPGap:     1e-4,
		IntFeasTol: 1e-5,
		FeasTol:    1e-6,
		OutputFlag: true,
	}
}

// LoadParams reads a YAML file on top of DefaultParams.
func LoadParams(pn string) (Params, error) {
	params := DefaultParams()
	file, err := os.Open(pn)
	if err != nil {
		return params, err
	}
	defer file.Close()
	d := yaml.NewDecoder(file)
	if err := d.Decode(&params); err != nil {
		return params, errors.Wrapf(err, "decode %s", pn)
	}
	if err := params.validate(); err != nil {
		return params, errors.Wrapf(err, "params %s", pn)
	}
	return params, nil
}

func (p Params) validate() error {
	switch {
	case p.TimeLimit < 0:
		return errors.Errorf("time_limit %g < 0", p.TimeLimit)
	case p.NodeLimit < 0:
		return errors.Errorf("node_limit %d < 0", p.NodeLimit)
	case p.MIPGap < 0:
		return errors.Errorf("mip_gap %g < 0", p.MIPGap)
	case p.IntFeasTol <= 0 || p.IntFeasTol >= 0.5:
		return errors.Errorf("int_feas_tol %g not in (0, 0.5)", p.IntFeasTol)
	case p.FeasTol <= 0:
		return errors.Errorf("feas_tol %g <= 0", p.FeasTol)
	}
	return nil
}
