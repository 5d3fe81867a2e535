package internal

import (
	"sync"

	"go.uber.org/zap"
)

type ErrorMode int

const (
	// ErrorModeReport sends errors nobody handles to the runtime's sink.
	ErrorModeReport ErrorMode = iota
	// ErrorModeSync re-panics unhandled errors at the call site and stops
	// recovering panics from user callbacks.
	ErrorModeSync
)

// Runtime is the execution context shared by subscribers and schedulers:
// how errors nobody handles are reported and where logs go.
type Runtime struct {
	mu sync.RWMutex

	mode        ErrorMode
	logger      *zap.Logger
	onUnhandled func(error)
}

var defaultLogger = sync.OnceValue(func() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return logger
})

func NewRuntime() *Runtime {
	return &Runtime{
		mode:   ErrorModeReport,
		logger: defaultLogger(),
	}
}

func (r *Runtime) Mode() ErrorMode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mode
}

func (r *Runtime) SetMode(mode ErrorMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mode = mode
}

func (r *Runtime) Logger() *zap.Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.logger
}

func (r *Runtime) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

func (r *Runtime) SetUnhandledErrorHandler(fn func(error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onUnhandled = fn
}

// ReportUnhandled delivers an error that reached a consumer without an error
// handler, or that has no caller left to return to.
func (r *Runtime) ReportUnhandled(err error) {
	if err == nil {
		return
	}

	r.mu.RLock()
	mode, handler, logger := r.mode, r.onUnhandled, r.logger
	r.mu.RUnlock()

	if mode == ErrorModeSync {
		panic(err)
	}

	if handler != nil {
		handler(err)
		return
	}

	logger.Error("unhandled error", zap.Error(err))
}

// Guard runs fn and turns a panic into a *PanicError. In ErrorModeSync the
// panic is left to propagate.
func (r *Runtime) Guard(fn func()) (err error) {
	if r.Mode() == ErrorModeSync {
		fn()
		return nil
	}

	defer func() {
		if v := recover(); v != nil {
			err = NewPanicError(v)
		}
	}()

	fn()
	return nil
}
