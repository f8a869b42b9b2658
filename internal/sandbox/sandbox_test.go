package sandbox

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callProbe(t *testing.T, source string) (any, error) {
	t.Helper()
	rt := New()
	require.NoError(t, rt.SetGlobal("__ctx", map[string]any{"name": "test"}))
	require.NoError(t, rt.Eval("plugin.js", source))
	return rt.Call("__plugin", "probe", "__ctx")
}

func TestCallReturnsExportedObject(t *testing.T) {
	t.Parallel()

	result, err := callProbe(t, `globalThis.__plugin = { probe: function(ctx) { return { name: ctx.name, n: 2, list: [1, "a"] } } }`)
	require.NoError(t, err)

	obj, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "test", obj["name"])
	assert.EqualValues(t, 2, obj["n"])
	assert.Equal(t, []any{int64(1), "a"}, obj["list"])
}

func TestCallBindsReceiver(t *testing.T) {
	t.Parallel()

	result, err := callProbe(t, `globalThis.__plugin = { tag: "self", probe: function() { return { tag: this.tag } } }`)
	require.NoError(t, err)
	assert.Equal(t, "self", result.(map[string]any)["tag"])
}

func TestCallResolvesAsyncResult(t *testing.T) {
	t.Parallel()

	result, err := callProbe(t, `
		async function load() { return "done" }
		globalThis.__plugin = { probe: async function() { const v = await load(); return { v: v } } }`)
	require.NoError(t, err)
	assert.Equal(t, "done", result.(map[string]any)["v"])
}

func TestCallCapturesStringThrow(t *testing.T) {
	t.Parallel()

	_, err := callProbe(t, `globalThis.__plugin = { probe: function() { throw "  token expired  " } }`)
	var thrownErr *ThrownError
	require.ErrorAs(t, err, &thrownErr)
	assert.True(t, thrownErr.Verbatim)
	assert.Equal(t, "token expired", thrownErr.Message)
}

func TestCallCapturesStringRejection(t *testing.T) {
	t.Parallel()

	_, err := callProbe(t, `globalThis.__plugin = { probe: async function() { throw "token expired" } }`)
	var thrownErr *ThrownError
	require.ErrorAs(t, err, &thrownErr)
	assert.True(t, thrownErr.Verbatim)
	assert.Equal(t, "token expired", thrownErr.Message)
}

func TestCallErrorObjectIsNotVerbatim(t *testing.T) {
	t.Parallel()

	_, err := callProbe(t, `globalThis.__plugin = { probe: function() { throw new Error("structured") } }`)
	var thrownErr *ThrownError
	require.ErrorAs(t, err, &thrownErr)
	assert.False(t, thrownErr.Verbatim)
	assert.Contains(t, thrownErr.Message, "structured")

	_, err = callProbe(t, `globalThis.__plugin = { probe: function() { throw "   " } }`)
	require.ErrorAs(t, err, &thrownErr)
	assert.False(t, thrownErr.Verbatim)
}

func TestCallPendingPromise(t *testing.T) {
	t.Parallel()

	_, err := callProbe(t, `globalThis.__plugin = { probe: function() { return new Promise(function() {}) } }`)
	assert.True(t, errors.Is(err, ErrUnresolvedPromise))
}

func TestCallNonObjectResult(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`return 42`, `return "x"`, `return null`, `return undefined`, `return Promise.resolve(5)`} {
		_, err := callProbe(t, `globalThis.__plugin = { probe: function() { `+body+` } }`)
		assert.True(t, errors.Is(err, ErrNonObject), body)
	}
}

func TestCallMissingObjectAndMethod(t *testing.T) {
	t.Parallel()

	_, err := callProbe(t, `var unrelated = 1`)
	assert.True(t, errors.Is(err, ErrMissingObject))

	_, err = callProbe(t, `globalThis.__plugin = { run: function() {} }`)
	assert.True(t, errors.Is(err, ErrMissingMethod))

	_, err = callProbe(t, `globalThis.__plugin = { probe: 3 }`)
	assert.True(t, errors.Is(err, ErrMissingMethod))
}

func TestEvalReportsSyntaxAndTopLevelErrors(t *testing.T) {
	t.Parallel()

	rt := New()
	var evalErr *EvalError
	require.ErrorAs(t, rt.Eval("broken.js", "function ("), &evalErr)
	assert.Equal(t, "broken.js", evalErr.Name)

	require.ErrorAs(t, rt.Eval("throws.js", `throw new Error("top")`), &evalErr)
}

func TestGoFunctionErrorsAreThrown(t *testing.T) {
	t.Parallel()

	rt := New()
	require.NoError(t, rt.SetGlobal("__ctx", map[string]any{
		"fail": func(string) (string, error) { return "", errors.New("disk on fire") },
	}))
	require.NoError(t, rt.Eval("plugin.js", `
		globalThis.__plugin = { probe: function(ctx) {
			try { ctx.fail("x"); return { caught: false } }
			catch (e) { return { caught: true, message: e.message } }
		} }`))

	result, err := rt.Call("__plugin", "probe", "__ctx")
	require.NoError(t, err)
	obj := result.(map[string]any)
	assert.Equal(t, true, obj["caught"])
	assert.Equal(t, "disk on fire", obj["message"])
}

func TestRuntimesAreIsolated(t *testing.T) {
	t.Parallel()

	first := New()
	require.NoError(t, first.Eval("a.js", `globalThis.leak = 1`))
	assert.Contains(t, first.Globals(), "leak")

	second := New()
	assert.NotContains(t, second.Globals(), "leak")
}

func TestDeepRecursionIsCaught(t *testing.T) {
	t.Parallel()

	_, err := callProbe(t, `
		function down(n) { return down(n + 1) }
		globalThis.__plugin = { probe: function() { return down(0) } }`)
	require.Error(t, err)
}

func TestInterruptStopsBusyCall(t *testing.T) {
	t.Parallel()

	rt := New()
	require.NoError(t, rt.Eval("plugin.js", `globalThis.__plugin = { probe: function() { while (true) {} } }`))
	time.AfterFunc(50*time.Millisecond, func() { rt.Interrupt("stop") })

	done := make(chan error, 1)
	go func() {
		_, err := rt.Call("__plugin", "probe")
		done <- err
	}()

	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrInterrupted)
		assert.Contains(t, err.Error(), "stop")
	case <-time.After(3 * time.Second):
		t.Fatal("call kept running after Interrupt")
	}
}

func TestInterruptBeforeEvalStopsScript(t *testing.T) {
	t.Parallel()

	rt := New()
	rt.Interrupt("early")
	err := rt.Eval("plugin.js", `while (true) {}`)
	require.ErrorIs(t, err, ErrInterrupted)
}

func TestCallThrowingGetterIsUnreadable(t *testing.T) {
	t.Parallel()

	_, err := callProbe(t, `globalThis.__plugin = { probe: function() {
		return { get lines() { throw new Error("nope") } }
	} }`)
	require.ErrorIs(t, err, ErrUnreadableResult)
	assert.Contains(t, err.Error(), "nope")
}
