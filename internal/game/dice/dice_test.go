package dice_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dicetrace/internal/game/dice"
)

// maxSource always returns the top of the requested range.
type maxSource struct{}

func (maxSource) Draw(_, high int) (int, error) { return high, nil }

// TestCryptoSource_Draw_InRange verifies the postcondition: every value
// returned by Draw(1, 6) is in [1, 6].
func TestCryptoSource_Draw_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v, err := src.Draw(1, 6)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 6)
	}
}

// TestCryptoSource_Draw_RejectsInvertedRange verifies the precondition is
// reported as an error rather than a panic.
func TestCryptoSource_Draw_RejectsInvertedRange(t *testing.T) {
	src := dice.NewCryptoSource()
	_, err := src.Draw(5, 4)
	assert.Error(t, err)
}

func TestCryptoSource_Draw_SingleValueRange(t *testing.T) {
	v, err := dice.NewCryptoSource().Draw(7, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

// TestSeededSource_Deterministic verifies two sources with the same seed
// produce the same sequence.
func TestSeededSource_Deterministic(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 50; i++ {
		va, err := a.Draw(1, 20)
		require.NoError(t, err)
		vb, err := b.Draw(1, 20)
		require.NoError(t, err)
		assert.Equal(t, va, vb, "draw %d diverged", i)
	}
}

func TestProperty_SeededSource_InRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")
		low := rapid.IntRange(-50, 50).Draw(rt, "low")
		high := low + rapid.IntRange(0, 100).Draw(rt, "span")

		v, err := dice.NewSeededSource(seed).Draw(low, high)
		require.NoError(rt, err)
		assert.GreaterOrEqual(rt, v, low)
		assert.LessOrEqual(rt, v, high)
	})
}

func TestSequenceSource_ExhaustsAfterValues(t *testing.T) {
	src := dice.NewSequenceSource(3, 1)

	v, err := src.Draw(1, 6)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	v, err = src.Draw(1, 6)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = src.Draw(1, 6)
	assert.True(t, errors.Is(err, dice.ErrSourceExhausted))
}

func TestSequenceSource_CopiesInput(t *testing.T) {
	values := []int{4}
	src := dice.NewSequenceSource(values...)
	values[0] = 6

	v, err := src.Draw(1, 6)
	require.NoError(t, err)
	assert.Equal(t, 4, v)
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "adv", dice.Advantage.String())
	assert.Equal(t, "dis", dice.Disadvantage.String())
	assert.Equal(t, "unknown", dice.Mode(0).String())
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]dice.Mode{
		"adv":          dice.Advantage,
		"Advantage":    dice.Advantage,
		" dis ":        dice.Disadvantage,
		"DISADVANTAGE": dice.Disadvantage,
	} {
		got, ok := dice.ParseMode(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := dice.ParseMode("normal")
	assert.False(t, ok)
}

func TestSelectorOp_String(t *testing.T) {
	assert.Equal(t, "kh", dice.KeepHighest.String())
	assert.Equal(t, "kl", dice.KeepLowest.String())
	assert.Equal(t, "dh", dice.DropHighest.String())
	assert.Equal(t, "dl", dice.DropLowest.String())
	assert.Equal(t, "", dice.NoSelector.String())
}

func TestExpression_DiceCount(t *testing.T) {
	assert.Equal(t, 7, dice.MustParse("4d6kh3+2d8+1d4-3").DiceCount())
	assert.Equal(t, 0, dice.MustParse("5").DiceCount())
}

func TestTerm_String(t *testing.T) {
	expr := dice.MustParse("4d6kh3 - 2 + 1d8")
	require.Len(t, expr.Terms, 3)
	assert.Equal(t, "+4d6kh3", expr.Terms[0].String())
	assert.Equal(t, "-2", expr.Terms[1].String())
	assert.Equal(t, "+1d8", expr.Terms[2].String())
}

func TestExpression_DiceCountSaturates(t *testing.T) {
	expr := dice.Expression{Terms: []dice.Term{
		{Kind: dice.DiceTerm, Sign: dice.Plus, Count: math.MaxInt - 1, Faces: 6},
		{Kind: dice.DiceTerm, Sign: dice.Plus, Count: 5, Faces: 6},
	}}
	assert.Equal(t, math.MaxInt, expr.DiceCount())
}
