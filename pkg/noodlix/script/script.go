// Package script runs user JavaScript in an isolated goja runtime. Scripts
// see a print builtin and nothing of the host.
package script

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
	errs "github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a script run when no timeout is configured
const DefaultTimeout = 5 * time.Second

// Config holds runtime limits
type Config struct {
	Timeout          time.Duration
	MaxCallStackSize int
}

// Output is what a script produced
type Output struct {
	Lines    []string // one line per print call
	Value    string   // formatted completion value
	HasValue bool     // false when the completion value was undefined
	Duration time.Duration
}

// Runner executes scripts, one fresh runtime per run
type Runner struct {
	config Config
	logger zerolog.Logger
}

// Option configures a Runner
type Option func(*Runner)

// WithTimeout bounds every run
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) { r.config.Timeout = d }
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// New creates a runner
func New(opts ...Option) *Runner {
	r := &Runner{
		config: Config{Timeout: DefaultTimeout, MaxCallStackSize: 1024},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type runtime struct {
	vm    *goja.Runtime
	lines []string
}

func (r *Runner) newRuntime() *runtime {
	rt := &runtime{vm: goja.New()}
	rt.vm.SetMaxCallStackSize(r.config.MaxCallStackSize)

	for _, name := range []string{"require", "process", "module", "exports"} {
		rt.vm.Set(name, goja.Undefined())
	}
	rt.vm.Set("print", rt.print)
	console := rt.vm.NewObject()
	console.Set("log", rt.print)
	rt.vm.Set("console", console)
	return rt
}

func (rt *runtime) print(call goja.FunctionCall) goja.Value {
	parts := make([]string, len(call.Arguments))
	for i, arg := range call.Arguments {
		parts[i] = rt.format(arg)
	}
	rt.lines = append(rt.lines, strings.Join(parts, " "))
	return goja.Undefined()
}

// format renders a value the way print shows it: objects as JSON,
// functions as [function]
func (rt *runtime) format(v goja.Value) string {
	switch {
	case v == nil || goja.IsUndefined(v):
		return "undefined"
	case goja.IsNull(v):
		return "null"
	}
	if _, ok := goja.AssertFunction(v); ok {
		return "[function]"
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return v.String()
	}

	json := rt.vm.Get("JSON").ToObject(rt.vm)
	stringify, _ := goja.AssertFunction(json.Get("stringify"))
	out, err := stringify(json, obj)
	if err != nil {
		return "[Circular Object]"
	}
	return out.String()
}

// Run executes source. A failing script returns an error carrying the
// script's message and an Output holding whatever was printed before.
func (r *Runner) Run(ctx context.Context, name, source string) (*Output, error) {
	start := time.Now()
	rt := r.newRuntime()
	out := &Output{}

	prg, err := goja.Compile(name, source, true)
	if err != nil {
		return out, errs.New(errs.CodeExecutionFailed, syntaxMessage(err))
	}

	done := make(chan struct{})
	timer := time.NewTimer(r.config.Timeout)
	defer timer.Stop()
	go func() {
		select {
		case <-timer.C:
			rt.vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			rt.vm.Interrupt("context cancelled")
		case <-done:
		}
	}()

	val, err := rt.vm.RunProgram(prg)
	close(done)

	out.Lines = rt.lines
	out.Duration = time.Since(start)
	r.logger.Debug().Str("script", name).Dur("duration", out.Duration).Err(err).Msg("script finished")

	if err != nil {
		return out, runtimeError(err)
	}
	if val != nil && !goja.IsUndefined(val) {
		out.Value = rt.format(val)
		out.HasValue = true
	}
	return out, nil
}

func syntaxMessage(err error) string {
	var se *goja.CompilerSyntaxError
	if errors.As(err, &se) {
		return "SyntaxError: " + se.Message
	}
	return err.Error()
}

func runtimeError(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return errs.New(errs.CodeTimeout, fmt.Sprint(interrupted.Value()))
	}

	var ex *goja.Exception
	if errors.As(err, &ex) {
		if obj, ok := ex.Value().(*goja.Object); ok {
			msg := obj.Get("message")
			if msg != nil && !goja.IsUndefined(msg) {
				if n := obj.Get("name"); n != nil && n.String() == "SyntaxError" {
					return errs.New(errs.CodeExecutionFailed, "SyntaxError: "+msg.String())
				}
				return errs.New(errs.CodeExecutionFailed, msg.String())
			}
		}
		return errs.New(errs.CodeExecutionFailed, ex.Value().String())
	}
	return errs.Wrap(err, errs.CodeExecutionFailed, err.Error())
}
