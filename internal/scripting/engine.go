package scripting

import (
	"context"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetrace/internal/game/dice"
)

// Roller is the subset of *dice.Roller exposed to scripts.
type Roller interface {
	RollExpr(expr string) (dice.Result, error)
	RollExprMode(expr string, mode dice.Mode) (dice.AdvantageResult, error)
	RollD20(mode dice.Mode, modifier int) (dice.D20Result, error)
}

// Engine owns one sandboxed Lua VM with the engine.dice and engine.log
// modules registered.
//
// Engine is safe for concurrent use; calls into the VM are serialized.
type Engine struct {
	mu        sync.Mutex
	state     *lua.LState
	cancel    context.CancelFunc
	roller    Roller
	logger    *zap.Logger
	instLimit int
}

// NewEngine creates an Engine whose scripts roll through roller.
//
// Precondition: roller and logger must be non-nil; instLimit >= 0, where 0
// uses DefaultInstructionLimit.
// Postcondition: The caller must call Close when done.
func NewEngine(roller Roller, logger *zap.Logger, instLimit int) *Engine {
	e := &Engine{roller: roller, logger: logger, instLimit: instLimit}
	e.state, e.cancel = NewSandboxedState(instLimit)
	e.registerModules(e.state)
	return e
}

// Close releases the Lua VM.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancel()
	e.state.Close()
}

// resetBudget releases the previous instruction budget and installs a fresh
// one for the next run.
//
// Precondition: e.mu is held.
func (e *Engine) resetBudget() {
	e.cancel()
	e.cancel = limitInstructions(e.state, e.instLimit)
}

// RunString executes src. Each run gets a fresh instruction budget.
//
// Postcondition: Returns a non-nil error on Lua compile or runtime failure,
// including an exhausted instruction budget.
func (e *Engine) RunString(src string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.resetBudget()
	if err := e.state.DoString(src); err != nil {
		return fmt.Errorf("scripting: running chunk: %w", err)
	}
	return nil
}

// RunFile executes the Lua file at path.
func (e *Engine) RunFile(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.resetBudget()
	if err := e.state.DoFile(path); err != nil {
		return fmt.Errorf("scripting: running %q: %w", path, err)
	}
	return nil
}

// Call invokes the global Lua function fn with args and returns its first
// result. An undefined function returns (LNil, nil).
//
// Postcondition: Lua runtime errors are logged at Warn level and returned.
func (e *Engine) Call(fn string, args ...lua.LValue) (lua.LValue, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	f := e.state.GetGlobal(fn)
	if f == lua.LNil {
		return lua.LNil, nil
	}

	e.resetBudget()
	if err := e.state.CallByParam(lua.P{Fn: f, NRet: 1, Protect: true}, args...); err != nil {
		e.logger.Warn("scripting: Lua runtime error",
			zap.String("function", fn),
			zap.Error(err),
		)
		return lua.LNil, fmt.Errorf("scripting: calling %q: %w", fn, err)
	}

	ret := e.state.Get(-1)
	e.state.Pop(1)
	return ret, nil
}
