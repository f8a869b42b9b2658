// Package sandbox wraps a single-use JavaScript runtime with three operations:
// construct, inject globals, and evaluate or call to completion.
package sandbox

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dop251/goja"
)

// MaxCallStackSize bounds script recursion.
const MaxCallStackSize = 4096

var (
	// ErrMissingObject means the named global is absent or not an object.
	ErrMissingObject = errors.New("missing global object")
	// ErrMissingMethod means the global object has no callable with the given name.
	ErrMissingMethod = errors.New("missing method")
	// ErrUnresolvedPromise means a returned promise was still pending after the job queue drained.
	ErrUnresolvedPromise = errors.New("unresolved promise")
	// ErrNonObject means a call settled to something other than an object.
	ErrNonObject = errors.New("non-object result")
	// ErrUnreadableResult means reading the settled object threw, e.g. from a getter.
	ErrUnreadableResult = errors.New("unreadable result")
	// ErrInterrupted means Interrupt stopped the running script.
	ErrInterrupted = errors.New("script interrupted")
)

// ThrownError carries a value thrown or rejected by script code. Verbatim is
// true when the value was a non-empty string, which is then the message.
type ThrownError struct {
	Message  string
	Verbatim bool
}

func (e *ThrownError) Error() string {
	if e == nil {
		return ""
	}
	return "script threw: " + e.Message
}

// EvalError wraps a syntax or top-level failure while evaluating source.
type EvalError struct {
	Name string
	Err  error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluate %s: %v", e.Name, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

// Runtime is a fresh, isolated script context. It is not safe for concurrent
// use and must not be reused across probes.
type Runtime struct {
	vm *goja.Runtime
}

// New constructs an empty runtime.
func New() *Runtime {
	vm := goja.New()
	vm.SetMaxCallStackSize(MaxCallStackSize)
	return &Runtime{vm: vm}
}

// SetGlobal binds value under name. Nested map[string]any values become
// plain script objects; Go funcs become callable functions whose non-nil
// error returns are thrown into the script.
func (r *Runtime) SetGlobal(name string, value any) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("set global %s: %v", name, rec)
		}
	}()
	return r.vm.Set(name, r.convert(value))
}

// Interrupt stops the running script, or the next one to start, at its next
// instruction. reason is carried in the resulting ErrInterrupted error. It may
// be called from any goroutine; the runtime is unusable afterwards.
func (r *Runtime) Interrupt(reason any) {
	r.vm.Interrupt(reason)
}

// Eval runs source at top level and drains any jobs it queued.
func (r *Runtime) Eval(name, source string) error {
	if _, err := r.vm.RunScript(name, source); err != nil {
		if stopped := interrupted(err); stopped != nil {
			return stopped
		}
		return &EvalError{Name: name, Err: simplify(err)}
	}
	return nil
}

// Call invokes object.method(args...) with the object as receiver. The
// named argument globals are passed in order. A returned promise is settled
// by draining the job queue; the settled value must be an object, which is
// returned as plain Go values (maps, slices, strings, numbers, bools).
func (r *Runtime) Call(object, method string, argGlobals ...string) (any, error) {
	receiver, ok := r.vm.Get(object).(*goja.Object)
	if !ok || receiver == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingObject, object)
	}

	fn, ok := goja.AssertFunction(receiver.Get(method))
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrMissingMethod, object, method)
	}

	args := make([]goja.Value, 0, len(argGlobals))
	for _, global := range argGlobals {
		args = append(args, r.vm.Get(global))
	}

	result, err := fn(receiver, args...)
	if err != nil {
		if stopped := interrupted(err); stopped != nil {
			return nil, stopped
		}
		return nil, thrown(err)
	}

	settled, err := settle(result)
	if err != nil {
		return nil, err
	}

	obj, ok := settled.(*goja.Object)
	if !ok || obj == nil {
		return nil, ErrNonObject
	}
	return r.export(obj)
}

// export converts obj to plain Go values. Accessors run during the copy, so
// a throwing getter surfaces as ErrUnreadableResult.
func (r *Runtime) export(obj *goja.Object) (value any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if cause, ok := rec.(error); ok {
				if stopped := interrupted(cause); stopped != nil {
					err = stopped
					return
				}
			}
			panic(rec)
		}
	}()

	if ex := r.vm.Try(func() { value = obj.Export() }); ex != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnreadableResult, describe(ex.Value()).Message)
	}
	return value, nil
}

// Globals lists the names currently bound on the global object.
func (r *Runtime) Globals() []string {
	keys := r.vm.GlobalObject().Keys()
	sort.Strings(keys)
	return keys
}

func settle(value goja.Value) (goja.Value, error) {
	obj, ok := value.(*goja.Object)
	if !ok || obj == nil {
		return value, nil
	}
	promise, ok := obj.Export().(*goja.Promise)
	if !ok {
		return value, nil
	}

	switch promise.State() {
	case goja.PromiseStateFulfilled:
		return promise.Result(), nil
	case goja.PromiseStateRejected:
		return nil, describe(promise.Result())
	default:
		return nil, ErrUnresolvedPromise
	}
}

func (r *Runtime) convert(value any) goja.Value {
	tree, ok := value.(map[string]any)
	if !ok {
		return r.vm.ToValue(value)
	}

	obj := r.vm.NewObject()
	keys := make([]string, 0, len(tree))
	for key := range tree {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		_ = obj.Set(key, r.convert(tree[key]))
	}
	return obj
}

func interrupted(err error) error {
	var stop *goja.InterruptedError
	if errors.As(err, &stop) {
		return fmt.Errorf("%w: %v", ErrInterrupted, stop.Value())
	}
	return nil
}

func thrown(err error) error {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return describe(ex.Value())
	}
	return &ThrownError{Message: err.Error()}
}

// describe turns a thrown or rejected value into a ThrownError.
func describe(value goja.Value) *ThrownError {
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return &ThrownError{}
	}
	if obj, ok := value.(*goja.Object); ok {
		return &ThrownError{Message: obj.String()}
	}
	if s, ok := value.Export().(string); ok {
		msg := strings.TrimSpace(s)
		return &ThrownError{Message: msg, Verbatim: msg != ""}
	}
	return &ThrownError{Message: value.String()}
}

func simplify(err error) error {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return errors.New(ex.Error())
	}
	return err
}
