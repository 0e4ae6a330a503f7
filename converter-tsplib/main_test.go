package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const burma = `NAME: burma4
TYPE: TSP
COMMENT: 4 cities of burma14
DIMENSION: 4
EDGE_WEIGHT_TYPE: EUC_2D
NODE_COORD_SECTION
   1  16.47       96.10
   2  16.47       94.44
   3  20.09       92.54
   4  22.39       93.37
EOF
`

func TestParseTSPLIB(t *testing.T) {
	inst, err := parseTSPLIB(strings.NewReader(burma))
	require.NoError(t, err)
	assert.Equal(t, "burma4", inst.Name)
	assert.Equal(t, "4 cities of burma14", inst.Comment)
	assert.Equal(t, "ATSP", inst.Type)
	assert.Equal(t, 4, inst.Dimension)
	assert.Equal(t, "EUC_2D", inst.EdgeWeightType)
	assert.True(t, inst.Integral)
	assert.Equal(t, []float64{20.09, 92.54}, inst.NodeCoordinates[2])

	i, err := inst.Instance()
	require.NoError(t, err)
	assert.Equal(t, 4, i.Len())
}

func TestParseTSPLIBErrors(t *testing.T) {
	_, err := parseTSPLIB(strings.NewReader("NAME: x\nEDGE_WEIGHT_TYPE: GEO\nNODE_COORD_SECTION\n1 0 0\n"))
	assert.Error(t, err)

	_, err = parseTSPLIB(strings.NewReader("NAME: x\nDIMENSION: 3\nNODE_COORD_SECTION\n1 0 0\n2 1 1\n"))
	assert.Error(t, err)

	_, err = parseTSPLIB(strings.NewReader("NAME: x\nEDGE_WEIGHT_SECTION\n0 1\n"))
	assert.Error(t, err)

	_, err = parseTSPLIB(strings.NewReader("NAME: x\n"))
	assert.Error(t, err)
}
