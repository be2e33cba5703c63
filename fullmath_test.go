package clmmcore

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestMulDivBasic(t *testing.T) {
	a := uint256.NewInt(1000)
	b := uint256.NewInt(3000)
	d := uint256.NewInt(500)
	got, err := MulDiv(a, b, d)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(6000).String(), got.String())
}

func TestMulDivExactMax(t *testing.T) {
	// (2^256-1) * 1 / (2^256-1) == 1, exercises the full 512-bit intermediate.
	got, err := MulDiv(maxUint256, uint256.NewInt(1), maxUint256)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(1).String(), got.String())
}

func TestMulDivDivByZero(t *testing.T) {
	_, err := MulDiv(uint256.NewInt(1), uint256.NewInt(1), uint256.NewInt(0))
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrDivByZero, kind)
}

func TestMulDivOverflow(t *testing.T) {
	_, err := MulDiv(maxUint256, maxUint256, uint256.NewInt(1))
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrMulDivOverflow, kind)
}

func TestMulDivRoundingUpRoundsWhenRemainder(t *testing.T) {
	a := uint256.NewInt(7)
	b := uint256.NewInt(1)
	d := uint256.NewInt(2)
	got, err := MulDivRoundingUp(a, b, d)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(4).String(), got.String()) // ceil(7/2) = 4
}

func TestMulDivRoundingUpExact(t *testing.T) {
	a := uint256.NewInt(8)
	b := uint256.NewInt(1)
	d := uint256.NewInt(2)
	got, err := MulDivRoundingUp(a, b, d)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(4).String(), got.String())
}
