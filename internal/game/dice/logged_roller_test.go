package dice_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dicetrace/internal/game/dice"
)

func TestRoller_RollExpr_LogsAtDebug(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	roller := dice.NewLoggedRoller(dice.NewSequenceSource(4, 2, 6, 5), zap.New(core))

	res, err := roller.RollExpr("4d6kh3+2")
	require.NoError(t, err)
	assert.Equal(t, 17, res.Total)

	entries := logs.FilterMessage("dice roll").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.DebugLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "4d6kh3+2", fields["expression"])
	assert.EqualValues(t, 17, fields["total"])
	assert.Equal(t, "4d6kh3[4,6,5]~[2] +2 = 17", fields["detail"])
	assert.NotNil(t, fields["terms"])
}

func TestRoller_RollExpr_ParseError(t *testing.T) {
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), zaptest.NewLogger(t))
	_, err := roller.RollExpr("4d6kh7")
	assert.True(t, errors.Is(err, dice.ErrParse))
}

func TestRoller_Roll_EvaluationErrorLoggedAtError(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	roller := dice.NewLoggedRoller(dice.NewSequenceSource(9), zap.New(core))

	_, err := roller.RollExpr("1d6")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dice.ErrEvaluation))
	assert.Equal(t, 1, logs.FilterLevelExact(zap.ErrorLevel).Len())
}

func TestRoller_RollExprMode(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	roller := dice.NewLoggedRoller(dice.NewSequenceSource(14, 9), zap.New(core))

	res, err := roller.RollExprMode("1d20+5", dice.Disadvantage)
	require.NoError(t, err)
	assert.Equal(t, 14, res.Total)

	entries := logs.FilterMessage("dice roll").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "dis", entries[0].ContextMap()["mode"])
}

func TestRoller_RollExprMode_ParseError(t *testing.T) {
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), zaptest.NewLogger(t))
	_, err := roller.RollExprMode("", dice.Advantage)
	assert.True(t, errors.Is(err, dice.ErrParse))
}

func TestRoller_RollD20(t *testing.T) {
	roller := dice.NewLoggedRoller(dice.NewSequenceSource(14, 9), zaptest.NewLogger(t))
	res, err := roller.RollD20(dice.Advantage, 5)
	require.NoError(t, err)
	assert.Equal(t, 19, res.Total)
	assert.Equal(t, 9, res.Dropped)
}

func TestRoller_MaxDice(t *testing.T) {
	tests := []struct {
		name  string
		expr  string
		mode  dice.Mode
		limit int
		ok    bool
	}{
		{name: "over limit", expr: "4d6", limit: 3},
		{name: "exactly at limit", expr: "3d6", limit: 3, ok: true},
		{name: "constants are free", expr: "3d6+100", limit: 3, ok: true},
		{name: "multi-term sum at limit", expr: "2d6+1d4-1d8", limit: 4, ok: true},
		{name: "multi-term sum over limit", expr: "2d6+1d4+2d8", limit: 4},
		// Advantage draws the expression twice.
		{name: "advantage doubles count", expr: "2d6", mode: dice.Advantage, limit: 3},
		{name: "advantage at limit", expr: "2d6", mode: dice.Disadvantage, limit: 4, ok: true},
		{name: "advantage with odd limit", expr: "1d20", mode: dice.Advantage, limit: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roller := dice.NewLoggedRoller(dice.NewCryptoSource(), zaptest.NewLogger(t), dice.WithMaxDice(tt.limit))
			var err error
			if tt.mode == 0 {
				_, err = roller.RollExpr(tt.expr)
			} else {
				_, err = roller.RollExprMode(tt.expr, tt.mode)
			}
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, dice.ErrTooManyDice), "got %v", err)
			}
		})
	}
}

func TestRoller_MaxDice_HugeCountDoesNotWrap(t *testing.T) {
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), zaptest.NewLogger(t), dice.WithMaxDice(1000))
	expr := dice.Expression{Terms: []dice.Term{{Kind: dice.DiceTerm, Sign: dice.Plus, Count: math.MaxInt/2 + 1, Faces: 6}}}

	_, err := roller.RollMode(expr, dice.Advantage)
	assert.True(t, errors.Is(err, dice.ErrTooManyDice))

	_, err = roller.Roll(expr)
	assert.True(t, errors.Is(err, dice.ErrTooManyDice))

	_, err = roller.RollExprMode("4611686018427387904d6", dice.Advantage)
	assert.True(t, errors.Is(err, dice.ErrParse))
}

func TestProperty_Roller_RejectsEveryCountOverLimit(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(1, 50).Draw(rt, "limit")
		count := rapid.IntRange(1, 60).Draw(rt, "count")
		mode := dice.Mode(rapid.IntRange(0, int(dice.Disadvantage)).Draw(rt, "mode"))
		evaluations := 1
		if mode != 0 {
			evaluations = 2
		}

		roller := dice.NewLoggedRoller(maxSource{}, zap.NewNop(), dice.WithMaxDice(limit))
		expr := dice.Expression{Terms: []dice.Term{{Kind: dice.DiceTerm, Sign: dice.Plus, Count: count, Faces: 6}}}
		var err error
		if mode == 0 {
			_, err = roller.Roll(expr)
		} else {
			_, err = roller.RollMode(expr, mode)
		}

		if count*evaluations > limit {
			assert.True(rt, errors.Is(err, dice.ErrTooManyDice), "count %d x%d limit %d", count, evaluations, limit)
		} else {
			assert.NoError(rt, err)
		}
	})
}
