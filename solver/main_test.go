/* Copyright 2021, Arkadiusz Zarychta, arkadiusz.zarychta@h-brs.de */

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"git.solver4all.com/azaryc2s/atsp"
	"git.solver4all.com/azaryc2s/atsp/mip"
	"git.solver4all.com/azaryc2s/atsp/tsp"
)

func TestSearchFields(t *testing.T) {
	params := mip.DefaultParams()
	params.OutputFlag = false
	points := []atsp.Point{atsp.NewPoint(0, 0), atsp.NewPoint(0, 1), atsp.NewPoint(1, 1), atsp.NewPoint(1, 0)}
	model, err := tsp.NewCreator(mip.NewEnv(params, nil), atsp.NewInstance(points, atsp.MinDist, nil)).Build(tsp.GG)
	require.NoError(t, err)
	defer model.Free()
	require.NoError(t, model.Solve())

	b, ok := model.Backend().(*mip.Model)
	require.True(t, ok)
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range searchFields(tsp.GG, b) {
		f.AddTo(enc)
	}
	assert.Equal(t, "GG", enc.Fields["model"])
	assert.Equal(t, mip.StatusString(mip.OPTIMAL), enc.Fields["status"])
	assert.GreaterOrEqual(t, enc.Fields["nodes"], int64(1))
	assert.InDelta(t, 4, enc.Fields["bound"], 1e-3)
}

func TestSelectKinds(t *testing.T) {
	kinds, err := selectKinds(nil)
	require.NoError(t, err)
	assert.Equal(t, tsp.Kinds(), kinds)

	kinds, err = selectKinds([]string{"mtz", "DFJ"})
	require.NoError(t, err)
	assert.Equal(t, []tsp.Kind{tsp.MTZ, tsp.DFJ}, kinds)

	_, err = selectKinds([]string{"foo"})
	assert.ErrorIs(t, err, atsp.ErrFactoryBadInput)
}
