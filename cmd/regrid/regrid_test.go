package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParamList(t *testing.T) {
	t.Parallel()
	params, err := parseParamList("6371007.181,0,0,0,-100")
	require.NoError(t, err)
	assert.Equal(t, 6371007.181, params[0])
	assert.Equal(t, -100.0, params[4])
	assert.Equal(t, 0.0, params[14])

	empty, err := parseParamList("")
	require.NoError(t, err)
	assert.Equal(t, 0.0, empty[0])

	_, err = parseParamList("1,2,three")
	assert.Error(t, err)
	_, err = parseParamList("1,2,3,4,5,6,7,8,9,10,11,12,13,14,15,16")
	assert.Error(t, err)
}

func TestParseQuad(t *testing.T) {
	t.Parallel()
	q, err := parseQuad("50.0,-117.5,40.0,-92.4")
	require.NoError(t, err)
	assert.Equal(t, [4]float64{50.0, -117.5, 40.0, -92.4}, q)

	_, err = parseQuad("1,2,3")
	assert.Error(t, err)
	_, err = parseQuad("a,b,c,d")
	assert.Error(t, err)
}

func TestBandPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "out.ndvi.dat", bandPath("out", "ndvi"))
}
