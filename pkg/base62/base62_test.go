package base62

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	cases := []struct {
		num  uint64
		want string
	}{
		{0, "0"},
		{61, "z"},
		{62, "10"},
		{123456789, "8M0kX"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Encode(tc.num))
	}
}

func TestDecode(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"0", 0},
		{"z", 61},
		{"10", 62},
		{"8M0kX", 123456789},
		{"", 0},
	}
	for _, tc := range cases {
		got, err := Decode(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestDecodeInvalidCharacter(t *testing.T) {
	_, err := Decode("abc!")
	assert.ErrorIs(t, err, ErrInvalidCharacter)
}

func TestDecodeOverflow(t *testing.T) {
	// 12 symbols of 'z' exceed the uint64 range.
	_, err := Decode("zzzzzzzzzzzz")
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestRoundTrip(t *testing.T) {
	for _, num := range []uint64{1, 42, 62, 3843, 1<<32 - 1, 1 << 40} {
		decoded, err := Decode(Encode(num))
		require.NoError(t, err)
		assert.Equal(t, num, decoded)
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("abc1234"))
	assert.True(t, IsValid("XYZ"))
	assert.False(t, IsValid("with space"))
	assert.False(t, IsValid("under_score"))
}
