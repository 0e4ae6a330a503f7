package mip

import (
	"go.uber.org/zap"
)

// Env carries the parameters and the logger shared by the models created
// from it.
type Env struct {
	params Params
	log    *zap.Logger
}

// NewEnv creates an environment. A nil logger discards all output.
func NewEnv(params Params, logger *zap.Logger) *Env {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Env{params: params, log: logger}
}

// Params returns the environment parameters.
func (e *Env) Params() Params {
	return e.params
}

// SetParams replaces the parameters used by models created afterwards.
func (e *Env) SetParams(params Params) error {
	if err := params.validate(); err != nil {
		return err
	}
	e.params = params
	return nil
}

// NewModel creates an empty minimisation model.
func (e *Env) NewModel(name string) *Model {
	log := e.log
	if !e.params.OutputFlag {
		log = zap.NewNop()
	}
	return &Model{
		name:   name,
		params: e.params,
		log:    log.With(zap.String("model", name)),
		sense:  MINIMIZE,
		status: LOADED,
	}
}
