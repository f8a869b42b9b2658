// Package engine runs plugin probes in fresh sandboxes and converts every
// outcome into a well-formed PluginOutput.
package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/alexisbeaulieu97/openusage/internal/hostapi"
	"github.com/alexisbeaulieu97/openusage/internal/logger"
	"github.com/alexisbeaulieu97/openusage/internal/manifest"
	"github.com/alexisbeaulieu97/openusage/internal/model"
	"github.com/alexisbeaulieu97/openusage/internal/sandbox"
	usageerrors "github.com/alexisbeaulieu97/openusage/pkg/errors"
)

// PluginGlobal is the script global a plugin registers itself under.
const PluginGlobal = "__openusage_plugin"

// Failure messages shown on the error badge.
const (
	MsgHostAPIInjection = "host api injection failed"
	MsgScriptEval       = "script eval failed"
	MsgMissingEntry     = "missing plugin entry"
	MsgMissingProbe     = "missing probe()"
	MsgUnresolved       = "probe returned unresolved promise"
	MsgNonObject        = "probe() returned non-object"
	MsgMissingLines     = "missing lines"
	MsgNoLines          = "no lines returned"
	MsgCancelled        = "probe cancelled"
	MsgFallback         = "The plugin failed, try again or contact plugin author."
)

// Probe stages, used in logs.
const (
	stageInject = "inject"
	stageEval   = "eval"
	stageInvoke = "invoke"
	stageParse  = "parse"
)

// Options configures an Engine.
type Options struct {
	AppDataDir string
	AppVersion string
	// Platform defaults to runtime.GOOS.
	Platform string
	// Workers bounds ProbeAll parallelism; defaults to runtime.NumCPU().
	Workers    int
	Logger     *logger.Logger
	HTTPClient *http.Client
	Keychain   hostapi.Keychain
}

// Engine probes loaded plugins. It holds no per-probe state and is safe for
// concurrent use.
type Engine struct {
	opts Options
	log  *logger.Logger
}

// New creates an Engine.
func New(opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = hostapi.NewHTTPClient()
	}
	return &Engine{opts: opts, log: opts.Logger.WithComponent("engine")}
}

// failure carries the badge text for a terminal probe state.
type failure struct {
	message string
	cause   error
}

func (f *failure) Error() string { return f.message }

func (f *failure) Unwrap() error { return f.cause }

func fail(pluginID, stage, message string, cause error) error {
	return usageerrors.NewProbeError(pluginID, stage, &failure{message: message, cause: cause})
}

// Probe runs one plugin. It never fails: every error, panic included, is
// reported as a single error badge.
func (e *Engine) Probe(ctx context.Context, plugin manifest.LoadedPlugin) (out model.PluginOutput) {
	log := e.log.WithPlugin(plugin.ID())

	defer func() {
		if rec := recover(); rec != nil {
			log.Error(fmt.Errorf("%v", rec), "probe panicked")
			out = model.ErrorOutput(plugin.ID(), plugin.Name(), plugin.IconURL, MsgFallback)
		}
	}()

	lines, err := e.run(ctx, plugin, log)
	if err != nil {
		message := MsgFallback
		var f *failure
		if errors.As(err, &f) {
			message = f.message
		}
		log.Error(err, "probe failed")
		return model.ErrorOutput(plugin.ID(), plugin.Name(), plugin.IconURL, message)
	}

	return model.PluginOutput{
		ProviderID:  plugin.ID(),
		DisplayName: plugin.Name(),
		Lines:       lines,
		IconURL:     plugin.IconURL,
	}
}

func (e *Engine) run(ctx context.Context, plugin manifest.LoadedPlugin, log *logger.Logger) ([]model.MetricLine, error) {
	id := plugin.ID()
	if err := ctx.Err(); err != nil {
		return nil, fail(id, stageInject, MsgCancelled, err)
	}

	rt := sandbox.New()
	stop := context.AfterFunc(ctx, func() { rt.Interrupt(ctx.Err()) })
	defer stop()

	pc := hostapi.New(hostapi.Options{
		PluginID:   id,
		AppDataDir: e.opts.AppDataDir,
		AppVersion: e.opts.AppVersion,
		Platform:   e.opts.Platform,
		Logger:     e.opts.Logger,
		HTTPClient: e.opts.HTTPClient,
		Keychain:   e.opts.Keychain,
		Context:    ctx,
	})
	if err := rt.SetGlobal(hostapi.GlobalName, pc.Globals()); err != nil {
		return nil, fail(id, stageInject, MsgHostAPIInjection, err)
	}
	if err := rt.Eval("openusage-prelude.js", hostapi.Prelude); err != nil {
		if errors.Is(err, sandbox.ErrInterrupted) {
			return nil, fail(id, stageInject, MsgCancelled, err)
		}
		return nil, fail(id, stageInject, MsgHostAPIInjection, err)
	}

	if err := rt.Eval(plugin.Manifest.Entry, plugin.EntryScript); err != nil {
		if errors.Is(err, sandbox.ErrInterrupted) {
			return nil, fail(id, stageEval, MsgCancelled, err)
		}
		return nil, fail(id, stageEval, MsgScriptEval, err)
	}

	result, err := rt.Call(PluginGlobal, "probe", hostapi.GlobalName)
	if err != nil {
		return nil, invokeFailure(id, err)
	}

	lines, err := parseLines(result, log)
	if err != nil {
		return nil, fail(id, stageParse, err.Error(), err)
	}
	return lines, nil
}

func invokeFailure(id string, err error) error {
	var thrown *sandbox.ThrownError
	switch {
	case errors.Is(err, sandbox.ErrInterrupted):
		return fail(id, stageInvoke, MsgCancelled, err)
	case errors.As(err, &thrown):
		if thrown.Verbatim {
			return fail(id, stageInvoke, thrown.Message, err)
		}
		return fail(id, stageInvoke, MsgFallback, err)
	case errors.Is(err, sandbox.ErrMissingObject):
		return fail(id, stageInvoke, MsgMissingEntry, err)
	case errors.Is(err, sandbox.ErrMissingMethod):
		return fail(id, stageInvoke, MsgMissingProbe, err)
	case errors.Is(err, sandbox.ErrUnresolvedPromise):
		return fail(id, stageInvoke, MsgUnresolved, err)
	case errors.Is(err, sandbox.ErrNonObject):
		return fail(id, stageInvoke, MsgNonObject, err)
	case errors.Is(err, sandbox.ErrUnreadableResult):
		return fail(id, stageParse, MsgMissingLines, err)
	default:
		return fail(id, stageInvoke, MsgFallback, err)
	}
}

// ProbeAll runs every plugin on a bounded pool and returns outputs in input
// order.
func (e *Engine) ProbeAll(ctx context.Context, plugins []manifest.LoadedPlugin) []model.PluginOutput {
	outputs := make([]model.PluginOutput, len(plugins))
	e.ProbeEach(ctx, plugins, func(i int, out model.PluginOutput) {
		outputs[i] = out
	})
	return outputs
}

// ProbeEach runs every plugin on a bounded pool and hands each output to
// report as soon as it is ready, together with the plugin's input index.
// report may be called concurrently. ProbeEach returns once every plugin has
// reported.
func (e *Engine) ProbeEach(ctx context.Context, plugins []manifest.LoadedPlugin, report func(int, model.PluginOutput)) {
	var group errgroup.Group
	group.SetLimit(e.opts.Workers)
	for i, plugin := range plugins {
		group.Go(func() error {
			report(i, e.Probe(ctx, plugin))
			return nil
		})
	}
	_ = group.Wait()
}
