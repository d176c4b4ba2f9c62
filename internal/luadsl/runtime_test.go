package luadsl

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/casebook/internal/ir"
	"github.com/roach88/casebook/internal/scenario"
	"github.com/roach88/casebook/internal/testutil"
)

func global(rt *Runtime, name string) any {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.state.Global(name)
	defer rt.state.Pop(1)
	return luaToGo(rt.state, -1)
}

func loadAndSeal(t *testing.T, paths ...string) (*Runtime, []*scenario.Scenario) {
	t.Helper()
	rt := New()
	for _, p := range paths {
		require.NoError(t, rt.LoadFile(p))
	}
	scs, err := rt.Seal()
	require.NoError(t, err)
	return rt, scs
}

func TestLoadFile_SendSMS(t *testing.T) {
	rt, scs := loadAndSeal(t, "testdata/send_sms.lua")
	require.Len(t, scs, 1)
	assert.Equal(t, "send_sms", scs[0].Name())

	d := scs[0].Descriptor()
	assert.Equal(t, scenario.PriorityP0, d.Level)
	assert.Equal(t, map[string]any{"owner": "qa"}, d.Meta)
	require.Len(t, d.Plugins, 2)
	assert.Equal(t, "login", d.Plugins[0].Name)

	var reg testutil.Registrar
	n, err := scenario.NewMaterializer(nil).Materialize(scs[0], &reg)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t,
		`{"title":"send 1 to us","tags":[["salesforce",{"modes":["classic"]}]],"owner":"qa","level":["p0"]}`,
		reg.Titles()[0])

	for _, err := range reg.RunAll(context.Background()) {
		require.NoError(t, err)
	}

	perInvocation := func(region string) []any {
		return []any{
			"scenario.before", "login.before", "audit.before",
			"run " + region,
			"audit.after", "login.after", "scenario.after",
		}
	}
	want := append(perInvocation("us"), perInvocation("uk")...)
	assert.Equal(t, want, global(rt, "log"))
}

func TestLoadFile_ScatteredAnnotations(t *testing.T) {
	_, scs := loadAndSeal(t, "testdata/scattered.lua")
	require.Len(t, scs, 2)
	assert.Equal(t, "checkout", scs[0].Name())
	assert.Equal(t, "refund", scs[1].Name())

	d := scs[0].Descriptor()
	assert.Equal(t, scenario.PriorityP1, d.Level, "first priority wins")
	require.Len(t, d.Brands, 2)
	assert.Equal(t, map[string]any{"region": "emea"}, d.Brands[1].Config)

	recs, err := scs[0].Resolve()
	require.NoError(t, err)
	assert.Equal(t, []ir.Record{{"item": "book"}, {"item": "pen"}}, recs)
}

func TestSharedContextDefaultsToFreshTable(t *testing.T) {
	rt, scs := loadAndSeal(t, "testdata/scattered.lua")

	var reg testutil.Registrar
	_, err := scenario.NewMaterializer(nil).Materialize(scs[0], &reg)
	require.NoError(t, err)
	for _, err := range reg.RunAll(context.Background()) {
		require.NoError(t, err)
	}

	shared, ok := scs[0].Shared().(*ref)
	require.True(t, ok)
	got, err := rt.call("check", rt.mustCompile(t, "return function(s) return s.count end"), shared)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)
}

// mustCompile evaluates src, which must return a function, and keeps a
// reference to it.
func (rt *Runtime) mustCompile(t *testing.T, src string) *ref {
	t.Helper()
	rt.mu.Lock()
	defer rt.mu.Unlock()
	top := rt.state.Top()
	defer rt.state.SetTop(top)
	require.NoError(t, rt.loadChunk("compile", src))
	require.NoError(t, rt.state.ProtectedCall(0, 1, 0))
	return rt.newRef(rt.state, -1)
}

func TestDefaultNameIsChunkName(t *testing.T) {
	rt := New()
	require.NoError(t, rt.LoadString("default_name", `scenario.new():title("t"):run(function() end)`))
	assert.Equal(t, []string{"default_name"}, rt.Names())
}

func TestSetGlobal(t *testing.T) {
	rt := New()
	rt.SetGlobal("suite", map[string]any{"region": "us", "n": 3})
	require.NoError(t, rt.LoadString("globals", `
		scenario.new("g")
		  :title("{{.region}} {{.n}}")
		  :examples({ { region = suite.region, n = suite.n } })
		  :run(function() end)
	`))
	scs, err := rt.Seal()
	require.NoError(t, err)

	invs, err := scenario.NewMaterializer(nil).Invocations(scs[0])
	require.NoError(t, err)
	assert.Equal(t, "us 3", invs[0].Title)
}

func TestPrintGoesToLogger(t *testing.T) {
	var buf bytes.Buffer
	rt := New(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	require.NoError(t, rt.LoadString("printer", `print("hello", 42)`))
	assert.Contains(t, buf.String(), `msg="hello 42"`)
	assert.Contains(t, buf.String(), "chunk=printer")
}

func TestSyntaxError(t *testing.T) {
	rt := New()
	err := rt.LoadString("broken", `scenario.new("x"):title(`)
	require.Error(t, err)
	var se *ScriptError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "broken", se.Chunk)
}

func TestLoadFile_Missing(t *testing.T) {
	err := New().LoadFile("testdata/nope.lua")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read script")
}

func TestSealedRuntimeRejectsScripts(t *testing.T) {
	rt := New()
	require.NoError(t, rt.LoadString("a", `scenario.new("a"):title("a"):run(function() end)`))
	_, err := rt.Seal()
	require.NoError(t, err)

	err = rt.LoadString("b", `scenario.new("a"):p0()`)
	require.Error(t, err)
	assert.ErrorIs(t, err, scenario.ErrSealed)
}
