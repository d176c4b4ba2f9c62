package luadsl

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Shopify/go-lua"

	"github.com/roach88/casebook/internal/scenario"
)

// refTable is the global holding Lua values referenced from Go.
const refTable = "_CASEBOOK_REFS"

// ScriptError reports a Lua error raised while loading a script or while
// calling one of its functions.
type ScriptError struct {
	Chunk   string
	Message string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("lua %s: %s", e.Chunk, e.Message)
}

// ref points at a Lua value kept alive in the ref table.
type ref struct {
	id int
}

// Runtime owns one Lua interpreter and the catalog its scripts populate.
// Calls into Lua are serialized, so scenarios built here may be executed
// from any goroutine.
type Runtime struct {
	mu      sync.Mutex
	state   *lua.State
	catalog *scenario.Catalog
	logger  *slog.Logger
	nextRef int
	chunk   string

	// pending is the Go error behind the Lua error being raised, so the
	// caller sees the typed error rather than its message.
	pending error
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger for script loading and Lua print output.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.logger = l
		}
	}
}

// New returns a Runtime with the standard Lua libraries and the scenario
// builder installed.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		state:   lua.NewState(),
		catalog: scenario.NewCatalog(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(rt)
	}

	lua.OpenLibraries(rt.state)
	rt.state.NewTable()
	rt.state.SetGlobal(refTable)
	rt.registerPrint()
	rt.registerBuilder()
	return rt
}

// SetGlobal exposes v to scripts under name. Maps become tables.
func (rt *Runtime) SetGlobal(name string, v any) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.pushValue(rt.state, v)
	rt.state.SetGlobal(name)
}

// LoadFile runs the script at path. The file's base name, without
// extension, is the default scenario name for scenario.new().
func (rt *Runtime) LoadFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	return rt.LoadString(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), string(src))
}

// LoadString runs src as a chunk called name.
func (rt *Runtime) LoadString(name, src string) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	l := rt.state
	top := l.Top()
	defer l.SetTop(top)

	rt.chunk = name
	rt.pending = nil
	if err := rt.loadChunk(name, src); err != nil {
		return err
	}
	if err := l.ProtectedCall(0, 0, 0); err != nil {
		return rt.failure(name, err)
	}
	rt.logger.Info("script loaded", "chunk", name, "scenarios", len(rt.catalog.Names()))
	return nil
}

// Names lists the scenarios declared so far.
func (rt *Runtime) Names() []string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.catalog.Names()
}

// Seal freezes every declared scenario. Scripts can no longer be loaded
// afterwards.
func (rt *Runtime) Seal() ([]*scenario.Scenario, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.catalog.Seal()
}

// loadChunk compiles src and leaves the chunk on the stack.
func (rt *Runtime) loadChunk(name, src string) error {
	if err := lua.LoadBuffer(rt.state, src, "="+name, "t"); err != nil {
		return &ScriptError{Chunk: name, Message: err.Error()}
	}
	return nil
}

// failure prefers the Go error that caused a Lua error.
func (rt *Runtime) failure(chunk string, err error) error {
	if pending := rt.pending; pending != nil {
		rt.pending = nil
		return fmt.Errorf("lua %s: %w", chunk, pending)
	}
	return &ScriptError{Chunk: chunk, Message: err.Error()}
}

// raise aborts the running Lua function with err.
func (rt *Runtime) raise(l *lua.State, err error) {
	rt.pending = err
	lua.Errorf(l, "%s", err.Error())
}

// newRef stores the value at index and returns a handle to it.
func (rt *Runtime) newRef(l *lua.State, index int) *ref {
	index = l.AbsIndex(index)
	rt.nextRef++
	l.Global(refTable)
	l.PushValue(index)
	l.RawSetInt(-2, rt.nextRef)
	l.Pop(1)
	return &ref{id: rt.nextRef}
}

func (rt *Runtime) pushRef(l *lua.State, id int) {
	l.Global(refTable)
	l.RawGetInt(-1, id)
	l.Remove(-2)
}

// call invokes the referenced function with args and returns its first
// result converted to Go.
func (rt *Runtime) call(chunk string, fn *ref, args ...any) (any, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	l := rt.state
	top := l.Top()
	defer l.SetTop(top)

	rt.pending = nil
	rt.pushRef(l, fn.id)
	for _, arg := range args {
		rt.pushValue(l, arg)
	}
	if err := l.ProtectedCall(len(args), 1, 0); err != nil {
		return nil, rt.failure(chunk, err)
	}
	return luaToGo(l, -1), nil
}

func (rt *Runtime) registerPrint() {
	rt.state.Register("print", func(l *lua.State) int {
		n := l.Top()
		parts := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			parts = append(parts, fmt.Sprint(luaToGo(l, i)))
		}
		rt.logger.Info("lua print", "chunk", rt.chunk, "msg", strings.Join(parts, " "))
		return 0
	})
}
