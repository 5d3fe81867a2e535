package rxjs

import (
	"go.uber.org/zap"

	"github.com/benlesh/rxjs/internal"
)

type ErrorMode = internal.ErrorMode

const (
	// ErrorModeReport sends unhandled errors to the runtime's handler, or logs
	// them when no handler is set. Panics in callbacks become error events.
	ErrorModeReport = internal.ErrorModeReport

	// ErrorModeSync re-panics unhandled errors where they happen and lets
	// callback panics propagate.
	ErrorModeSync = internal.ErrorModeSync
)

// Runtime is the execution context a subscription runs in.
type Runtime struct {
	rt *internal.Runtime
}

// Option configures a Runtime.
type Option func(*internal.Runtime)

// WithErrorMode selects how unhandled errors and callback panics are treated.
func WithErrorMode(mode ErrorMode) Option {
	return func(r *internal.Runtime) { r.SetMode(mode) }
}

// WithLogger sets the logger unhandled errors are written to.
func WithLogger(logger *zap.Logger) Option {
	return func(r *internal.Runtime) { r.SetLogger(logger) }
}

// WithUnhandledErrorHandler replaces logging of unhandled errors with fn.
func WithUnhandledErrorHandler(fn func(error)) Option {
	return func(r *internal.Runtime) { r.SetUnhandledErrorHandler(fn) }
}

// NewRuntime creates a runtime that can be passed explicitly to
// SubscribeRuntime and to schedulers.
func NewRuntime(opts ...Option) *Runtime {
	rt := internal.NewRuntime()
	for _, opt := range opts {
		opt(rt)
	}

	return &Runtime{rt}
}

// CurrentRuntime returns the runtime bound to the calling goroutine, or the
// process wide default.
func CurrentRuntime() *Runtime {
	return &Runtime{internal.GetRuntime()}
}

// Configure applies opts to CurrentRuntime.
func Configure(opts ...Option) {
	rt := internal.GetRuntime()
	for _, opt := range opts {
		opt(rt)
	}
}

// Bind makes r the runtime of the calling goroutine until Unbind.
func (r *Runtime) Bind() {
	internal.SetRuntime(r.rt)
}

// Unbind returns the calling goroutine to the default runtime.
func Unbind() {
	internal.ReleaseRuntime()
}

// ReportUnhandled hands err to the runtime's unhandled error sink.
func (r *Runtime) ReportUnhandled(err error) {
	r.rt.ReportUnhandled(err)
}
