package atsp

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFlags(t *testing.T) {
	var (
		models ArrayStringFlags
		nodes  ArrayIntFlags
	)
	fs := flag.NewFlagSet("lists", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Var(&models, "model", "")
	fs.Var(&nodes, "nodes", "")

	require.NoError(t, fs.Parse([]string{"-model", "DFJ, MTZ", "-nodes", "10,20", "-model", "GG", "-nodes", "50"}))
	assert.Equal(t, ArrayStringFlags{"DFJ", "MTZ", "GG"}, models)
	assert.Equal(t, ArrayIntFlags{10, 20, 50}, nodes)
	assert.Equal(t, "DFJ,MTZ,GG", models.String())
	assert.Equal(t, "10,20,50", nodes.String())
}

func TestListFlagsBadEntry(t *testing.T) {
	var nodes ArrayIntFlags
	require.NoError(t, nodes.Set("5"))
	err := nodes.Set("7,x")
	assert.ErrorContains(t, err, `"x"`)
	assert.Equal(t, ArrayIntFlags{5}, nodes)

	var empty *ArrayIntFlags
	assert.Empty(t, empty.String())
}
