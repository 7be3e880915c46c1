package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetrace/internal/game/dice"
)

// registerModules installs the engine global with its dice and log tables.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine.dice and engine.log are defined in L.
func (e *Engine) registerModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "dice", e.diceModule(L))
	L.SetField(engine, "log", e.logModule(L))
	L.SetGlobal("engine", engine)
}

func (e *Engine) diceModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()

	L.SetField(mod, "roll", L.NewFunction(func(L *lua.LState) int {
		res, err := e.roller.RollExpr(L.CheckString(1))
		if err != nil {
			L.RaiseError("engine.dice.roll: %s", err.Error())
			return 0
		}
		L.Push(resultTable(L, res))
		return 1
	}))

	modeFn := func(name string, mode dice.Mode) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			res, err := e.roller.RollExprMode(L.CheckString(1), mode)
			if err != nil {
				L.RaiseError("engine.dice.%s: %s", name, err.Error())
				return 0
			}
			L.Push(advantageTable(L, res))
			return 1
		})
	}
	L.SetField(mod, "adv", modeFn("adv", dice.Advantage))
	L.SetField(mod, "dis", modeFn("dis", dice.Disadvantage))

	L.SetField(mod, "d20", L.NewFunction(func(L *lua.LState) int {
		mode, ok := dice.ParseMode(L.CheckString(1))
		if !ok {
			L.ArgError(1, `mode must be "adv" or "dis"`)
			return 0
		}
		res, err := e.roller.RollD20(mode, L.OptInt(2, 0))
		if err != nil {
			L.RaiseError("engine.dice.d20: %s", err.Error())
			return 0
		}
		t := L.NewTable()
		L.SetField(t, "total", lua.LNumber(res.Total))
		L.SetField(t, "kept", lua.LNumber(res.Kept))
		L.SetField(t, "dropped", lua.LNumber(res.Dropped))
		L.SetField(t, "modifier", lua.LNumber(res.Modifier))
		L.SetField(t, "detail", lua.LString(res.Detail))
		L.SetField(t, "expression", lua.LString(res.Expression))
		L.Push(t)
		return 1
	}))

	return mod
}

// resultTable converts a Result into {total, detail, expression, dice,
// modifier}; dice + modifier == total.
func resultTable(L *lua.LState, res dice.Result) *lua.LTable {
	var diceSum, modifier int
	for _, tr := range res.Terms {
		if tr.Term.Kind == dice.ConstantTerm {
			modifier += tr.Subtotal
		} else {
			diceSum += tr.Subtotal
		}
	}
	t := L.NewTable()
	L.SetField(t, "total", lua.LNumber(res.Total))
	L.SetField(t, "detail", lua.LString(res.Detail))
	L.SetField(t, "expression", lua.LString(res.Expression))
	L.SetField(t, "dice", lua.LNumber(diceSum))
	L.SetField(t, "modifier", lua.LNumber(modifier))
	return t
}

func advantageTable(L *lua.LState, res dice.AdvantageResult) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "total", lua.LNumber(res.Total))
	L.SetField(t, "detail", lua.LString(res.Detail))
	L.SetField(t, "expression", lua.LString(res.First.Expression))
	L.SetField(t, "mode", lua.LString(res.Mode.String()))
	L.SetField(t, "first", resultTable(L, res.First))
	L.SetField(t, "second", resultTable(L, res.Second))
	// Lua indexes from 1.
	L.SetField(t, "index", lua.LNumber(res.Index+1))
	return t
}

func (e *Engine) logModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": e.logger.Debug,
		"info":  e.logger.Info,
		"warn":  e.logger.Warn,
		"error": e.logger.Error,
	}
	for name, fn := range levels {
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			fn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	return mod
}
