package tsp

import (
	"github.com/pkg/errors"

	"git.solver4all.com/azaryc2s/atsp"
	"git.solver4all.com/azaryc2s/atsp/mip"
)

// Creator builds formulations of one instance, each on a fresh backend
// model of the shared environment.
type Creator struct {
	env  *mip.Env
	inst *atsp.Instance
	opts []Option
}

// NewCreator returns a Creator for inst. The options are applied to every
// model it builds.
func NewCreator(env *mip.Env, inst *atsp.Instance, opts ...Option) *Creator {
	return &Creator{env: env, inst: inst, opts: opts}
}

// Build creates the kind formulation.
func (c *Creator) Build(kind Kind) (*Model, error) {
	if !kind.valid() {
		return nil, errors.Wrapf(atsp.ErrFactoryBadInput, "%v", kind)
	}
	backend := c.env.NewModel("atsp_" + kind.String())
	m, err := New(kind, c.inst, backend, c.opts...)
	if err != nil {
		backend.Free()
		return nil, err
	}
	return m, nil
}

// BuildByName creates the formulation named by alias, see ParseKind.
func (c *Creator) BuildByName(alias string) (*Model, error) {
	kind, err := ParseKind(alias)
	if err != nil {
		return nil, err
	}
	return c.Build(kind)
}
