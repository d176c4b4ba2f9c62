package luadsl

import (
	"context"
	"fmt"

	"github.com/Shopify/go-lua"

	"github.com/roach88/casebook/internal/ir"
	"github.com/roach88/casebook/internal/scenario"
)

const builderTypeName = "casebook.scenario"

// builder is the userdata behind scenario.new.
type builder struct {
	name  string
	chunk string
}

func (rt *Runtime) registerBuilder() {
	l := rt.state

	lua.NewMetaTable(l, builderTypeName)
	l.NewTable()
	lua.SetFunctions(l, rt.builderMethods(), 0)
	l.SetField(-2, "__index")
	l.Pop(1)

	l.NewTable()
	lua.SetFunctions(l, []lua.RegistryFunction{
		{Name: "new", Function: rt.scenarioNew},
	}, 0)
	l.SetGlobal("scenario")
}

func (rt *Runtime) builderMethods() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "title", Function: rt.method(func(l *lua.State, b *builder) scenario.Annotation {
			return scenario.Title(lua.OptString(l, 2, ""))
		})},
		{Name: "meta", Function: rt.method(func(l *lua.State, b *builder) scenario.Annotation {
			return scenario.Meta(tableToMap(l, 2))
		})},
		{Name: "p0", Function: rt.method(func(*lua.State, *builder) scenario.Annotation { return scenario.P0() })},
		{Name: "p1", Function: rt.method(func(*lua.State, *builder) scenario.Annotation { return scenario.P1() })},
		{Name: "salesforce", Function: rt.method(func(l *lua.State, b *builder) scenario.Annotation {
			return scenario.Salesforce(optionalConfig(l)...)
		})},
		{Name: "google", Function: rt.method(func(l *lua.State, b *builder) scenario.Annotation {
			return scenario.Google(optionalConfig(l)...)
		})},
		{Name: "rc", Function: rt.method(func(l *lua.State, b *builder) scenario.Annotation {
			return scenario.RC(optionalConfig(l)...)
		})},
		{Name: "bt", Function: rt.method(func(l *lua.State, b *builder) scenario.Annotation {
			return scenario.BT(optionalConfig(l)...)
		})},
		{Name: "examples", Function: rt.method(func(l *lua.State, b *builder) scenario.Annotation {
			return scenario.ExamplesOf(luaToGo(l, 2))
		})},
		{Name: "before_each", Function: rt.method(func(l *lua.State, b *builder) scenario.Annotation {
			return scenario.BeforeEach(rt.hook(l, 2, b.chunk))
		})},
		{Name: "after_each", Function: rt.method(func(l *lua.State, b *builder) scenario.Annotation {
			return scenario.AfterEach(rt.hook(l, 2, b.chunk))
		})},
		{Name: "plugins", Function: rt.method(func(l *lua.State, b *builder) scenario.Annotation {
			return scenario.Plugins(rt.plugins(l, 2, b.chunk)...)
		})},
		{Name: "params", Function: rt.method(func(l *lua.State, b *builder) scenario.Annotation {
			return scenario.Params(rt.transform(l, 2, b.chunk))
		})},
		{Name: "context", Function: rt.method(func(l *lua.State, b *builder) scenario.Annotation {
			return scenario.Context(rt.newRef(l, 2))
		})},
		{Name: "run", Function: rt.bindStep},
	}
}

// method adapts an annotation constructor to a chainable Lua method.
func (rt *Runtime) method(build func(l *lua.State, b *builder) scenario.Annotation) lua.Function {
	return func(l *lua.State) int {
		b := checkBuilder(l)
		if err := rt.catalog.Annotate(b.name, build(l, b)); err != nil {
			rt.raise(l, err)
			return 0
		}
		l.PushValue(1)
		return 1
	}
}

func (rt *Runtime) scenarioNew(l *lua.State) int {
	b := &builder{name: lua.OptString(l, 1, rt.chunk), chunk: rt.chunk}
	if _, exists := rt.catalog.Descriptor(b.name); !exists {
		l.NewTable()
		shared := rt.newRef(l, -1)
		l.Pop(1)
		if err := rt.catalog.Annotate(b.name, scenario.Context(shared)); err != nil {
			rt.raise(l, err)
			return 0
		}
	}
	l.PushUserData(b)
	lua.SetMetaTableNamed(l, builderTypeName)
	return 1
}

func (rt *Runtime) bindStep(l *lua.State) int {
	b := checkBuilder(l)
	var step scenario.Step
	if l.TypeOf(2) == lua.TypeFunction {
		step = &luaStep{rt: rt, chunk: b.chunk, fn: rt.newRef(l, 2)}
	}
	if err := rt.catalog.Bind(b.name, step); err != nil {
		rt.raise(l, err)
		return 0
	}
	l.PushValue(1)
	return 1
}

func checkBuilder(l *lua.State) *builder {
	ud := lua.CheckUserData(l, 1, builderTypeName)
	if b, ok := ud.(*builder); ok && b != nil {
		return b
	}
	lua.ArgumentError(l, 1, "scenario expected")
	return nil
}

// optionalConfig returns the tag configuration argument, if one was given.
func optionalConfig(l *lua.State) []any {
	if l.IsNoneOrNil(2) {
		return nil
	}
	return []any{luaToGo(l, 2)}
}

// hook wraps the Lua function at index. A non-function yields a nil hook,
// which the annotation rejects.
func (rt *Runtime) hook(l *lua.State, index int, chunk string) scenario.Hook {
	if l.TypeOf(index) != lua.TypeFunction {
		return nil
	}
	fn := rt.newRef(l, index)
	return func(ctx context.Context, params ir.Record, shared any, sc *scenario.Scenario) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := rt.call(chunk, fn, params, shared, sc.Name())
		return err
	}
}

func (rt *Runtime) plugins(l *lua.State, index int, chunk string) []scenario.Plugin {
	if l.TypeOf(index) != lua.TypeTable {
		return nil
	}
	index = l.AbsIndex(index)
	var out []scenario.Plugin
	for i := 1; ; i++ {
		l.RawGetInt(index, i)
		if l.IsNoneOrNil(-1) {
			l.Pop(1)
			return out
		}
		p := scenario.Plugin{Name: fmt.Sprintf("%s[%d]", chunk, i)}
		if l.TypeOf(-1) == lua.TypeTable {
			l.Field(-1, "name")
			if name, ok := l.ToString(-1); ok && name != "" {
				p.Name = name
			}
			l.Pop(1)
			l.Field(-1, "before_each")
			p.BeforeEach = rt.hook(l, -1, chunk)
			l.Pop(1)
			l.Field(-1, "after_each")
			p.AfterEach = rt.hook(l, -1, chunk)
			l.Pop(1)
		}
		l.Pop(1)
		out = append(out, p)
	}
}

func (rt *Runtime) transform(l *lua.State, index int, chunk string) scenario.Transform {
	if l.TypeOf(index) != lua.TypeFunction {
		return nil
	}
	fn := rt.newRef(l, index)
	return func(records []ir.Record) ([]ir.Record, error) {
		result, err := rt.call(chunk, fn, records)
		if err != nil {
			return nil, err
		}
		return toRecords(result)
	}
}

func toRecords(v any) ([]ir.Record, error) {
	switch val := v.(type) {
	case map[string]any:
		if len(val) == 0 {
			return []ir.Record{}, nil
		}
	case []any:
		out := make([]ir.Record, 0, len(val))
		for i, item := range val {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("params result[%d] is %T, want a table of fields", i+1, item)
			}
			out = append(out, ir.Record(m))
		}
		return out, nil
	}
	return nil, fmt.Errorf("params must return a list of records, got %T", v)
}

// luaStep runs a scenario's Lua run function.
type luaStep struct {
	rt    *Runtime
	chunk string
	fn    *ref
}

func (s *luaStep) Run(ctx context.Context, params ir.Record, shared any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.rt.call(s.chunk, s.fn, params, shared)
	return err
}
