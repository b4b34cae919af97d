package value

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberStringHasNoTrailingZeros(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{5, "5"},
		{2.5, "2.5"},
		{0, "0"},
		{-3.25, "-3.25"},
		{100, "100"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Number(tt.in).String())
	}
}

func TestNumberStringRoundTrips(t *testing.T) {
	for _, n := range []float64{0, 1, -1, 2.5, 3.14159, 1e6, -0.001} {
		parsed, err := strconv.ParseFloat(Number(n).String(), 64)
		require.NoError(t, err)
		assert.Equal(t, n, parsed)
	}
}

func TestToBool(t *testing.T) {
	assert.False(t, ToBool(Nil{}))
	assert.False(t, ToBool(Bool(false)))
	assert.True(t, ToBool(Bool(true)))
	assert.True(t, ToBool(Number(0)))
	assert.True(t, ToBool(Str("")))
	assert.True(t, ToBool(TableRef(1)))
}

func TestToNum(t *testing.T) {
	assert.Equal(t, 3.5, ToNum(Number(3.5)))
	assert.Equal(t, 42.0, ToNum(Str("42")))
	assert.Equal(t, 0.0, ToNum(Str("not a number")))
	assert.Equal(t, 1.0, ToNum(Bool(true)))
	assert.Equal(t, 0.0, ToNum(Bool(false)))
	assert.Equal(t, 0.0, ToNum(Nil{}))
	assert.Equal(t, 0.0, ToNum(TableRef(7)))
}

func TestEqualStringifiesBothSides(t *testing.T) {
	assert.True(t, Equal(Number(2), Number(2)))
	assert.False(t, Equal(Number(2), Number(3)))
	assert.True(t, Equal(Str("true"), Bool(true)))
	assert.True(t, Equal(Nil{}, Nil{}))
	assert.False(t, Equal(TableRef(1), TableRef(2)))
}

func TestTableGetMissingKeyIsNil(t *testing.T) {
	tbl := NewTable()
	assert.Equal(t, Nil{}, tbl.Get("absent"))
	tbl.Set("k", Number(1))
	assert.Equal(t, Number(1), tbl.Get("k"))
}
