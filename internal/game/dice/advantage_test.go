package dice_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dicetrace/internal/game/dice"
)

func TestEvaluateAdvantage_KeepsHigher(t *testing.T) {
	expr := dice.MustParse("1d20+5")
	res, err := dice.EvaluateAdvantage(expr, dice.NewSequenceSource(9, 14))
	require.NoError(t, err)

	assert.Equal(t, dice.Advantage, res.Mode)
	assert.Equal(t, 1, res.Index)
	assert.Equal(t, 19, res.Total)
	assert.Equal(t, 19, res.Chosen().Total)
	assert.Equal(t, 14, res.Other().Total)
	assert.Equal(t, "adv 1d20+5: (1d20[9] +5 = 14) vs (1d20[14] +5 = 19) -> 19", res.Detail)
}

func TestEvaluateDisadvantage_KeepsLower(t *testing.T) {
	expr := dice.MustParse("1d20+5")
	res, err := dice.EvaluateDisadvantage(expr, dice.NewSequenceSource(14, 9))
	require.NoError(t, err)

	assert.Equal(t, dice.Disadvantage, res.Mode)
	assert.Equal(t, 1, res.Index)
	assert.Equal(t, 14, res.Total)
	assert.Equal(t, "dis 1d20+5: (1d20[14] +5 = 19) vs (1d20[9] +5 = 14) -> 14", res.Detail)
}

func TestEvaluateMode_TieKeepsFirst(t *testing.T) {
	expr := dice.MustParse("2d6")
	for _, mode := range []dice.Mode{dice.Advantage, dice.Disadvantage} {
		res, err := dice.EvaluateMode(expr, dice.NewSequenceSource(6, 1, 3, 4), mode)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Index, "mode %s", mode)
		assert.Equal(t, []int{6, 1}, res.Chosen().Terms[0].Rolls, "mode %s", mode)
	}
}

func TestEvaluateMode_UnknownMode(t *testing.T) {
	_, err := dice.EvaluateMode(dice.MustParse("1d6"), dice.NewSequenceSource(1, 2), dice.Mode(0))
	assert.True(t, errors.Is(err, dice.ErrEvaluation))
}

func TestEvaluateAdvantage_DrawsFreshValues(t *testing.T) {
	res, err := dice.EvaluateAdvantage(dice.MustParse("4d6kh3+2"), dice.NewSequenceSource(4, 2, 6, 5, 1, 1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, []int{4, 2, 6, 5}, res.First.Terms[0].Rolls)
	assert.Equal(t, []int{1, 1, 2, 3}, res.Second.Terms[0].Rolls)
	assert.Equal(t, 17, res.Total)
}

func TestEvaluateAdvantage_SecondEvaluationFails(t *testing.T) {
	_, err := dice.EvaluateAdvantage(dice.MustParse("1d20"), dice.NewSequenceSource(10))
	require.Error(t, err)
	assert.True(t, errors.Is(err, dice.ErrSourceExhausted))
}

// TestProperty_Advantage_NotBelowDisadvantage verifies that advantage and
// disadvantage over the same pair of evaluations order their totals.
func TestProperty_Advantage_NotBelowDisadvantage(t *testing.T) {
	expr := dice.MustParse("2d8+1d4-1")
	rapid.Check(t, func(rt *rapid.T) {
		first := rapid.SliceOfN(rapid.IntRange(1, 4), 3, 3).Draw(rt, "first")
		second := rapid.SliceOfN(rapid.IntRange(1, 4), 3, 3).Draw(rt, "second")
		draws := append(append([]int{}, first...), second...)

		adv, err := dice.EvaluateAdvantage(expr, dice.NewSequenceSource(draws...))
		require.NoError(rt, err)
		dis, err := dice.EvaluateDisadvantage(expr, dice.NewSequenceSource(draws...))
		require.NoError(rt, err)

		assert.GreaterOrEqual(rt, adv.Total, dis.Total)
		assert.Equal(rt, adv.First, dis.First)
		assert.Equal(rt, adv.Second, dis.Second)
	})
}

func TestRollD20Advantage(t *testing.T) {
	res, err := dice.RollD20Advantage(5, dice.NewSequenceSource(14, 9))
	require.NoError(t, err)

	assert.Equal(t, [2]int{14, 9}, res.Rolls)
	assert.Equal(t, 14, res.Kept)
	assert.Equal(t, 9, res.Dropped)
	assert.Equal(t, 19, res.Total)
	assert.Equal(t, "1d20+5 adv", res.Expression)
	assert.Equal(t, "1d20+5 adv [14,9] keep 14 drop 9 +5 = 19", res.Detail)
	assert.Equal(t, res.Detail, res.String())
}

func TestRollD20Disadvantage(t *testing.T) {
	res, err := dice.RollD20Disadvantage(-1, dice.NewSequenceSource(14, 9))
	require.NoError(t, err)

	assert.Equal(t, 9, res.Kept)
	assert.Equal(t, 14, res.Dropped)
	assert.Equal(t, 8, res.Total)
	assert.Equal(t, "1d20-1 dis [14,9] keep 9 drop 14 -1 = 8", res.Detail)
}

func TestRollD20_NoModifier(t *testing.T) {
	res, err := dice.RollD20(dice.Advantage, 0, dice.NewSequenceSource(3, 17))
	require.NoError(t, err)
	assert.Equal(t, "1d20 adv", res.Expression)
	assert.Equal(t, "1d20 adv [3,17] keep 17 drop 3 +0 = 17", res.Detail)
}

func TestRollD20_Errors(t *testing.T) {
	_, err := dice.RollD20Advantage(0, dice.NewSequenceSource(21, 1))
	assert.True(t, errors.Is(err, dice.ErrEvaluation))

	_, err = dice.RollD20Disadvantage(0, dice.NewSequenceSource(5))
	assert.True(t, errors.Is(err, dice.ErrSourceExhausted))

	_, err = dice.RollD20(dice.Mode(7), 0, dice.NewSequenceSource(5, 5))
	assert.True(t, errors.Is(err, dice.ErrEvaluation))
}

func TestProperty_RollD20_TotalIsKeptPlusModifier(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.IntRange(1, 20).Draw(rt, "a")
		b := rapid.IntRange(1, 20).Draw(rt, "b")
		mod := rapid.IntRange(-10, 10).Draw(rt, "modifier")

		adv, err := dice.RollD20Advantage(mod, dice.NewSequenceSource(a, b))
		require.NoError(rt, err)
		dis, err := dice.RollD20Disadvantage(mod, dice.NewSequenceSource(a, b))
		require.NoError(rt, err)

		assert.Equal(rt, max(a, b)+mod, adv.Total)
		assert.Equal(rt, min(a, b)+mod, dis.Total)
		assert.Equal(rt, min(a, b), adv.Dropped)
		assert.Equal(rt, max(a, b), dis.Dropped)
	})
}

func TestD20Expression(t *testing.T) {
	assert.Equal(t, "1d20+5", dice.D20Expression(5))
	assert.Equal(t, "1d20-1", dice.D20Expression(-1))
	assert.Equal(t, "1d20+0", dice.D20Expression(0))
}
