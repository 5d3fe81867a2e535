//go:build !wasm

package internal

import (
	"sync"

	"github.com/petermattis/goid"
)

var (
	runtimes sync.Map

	defaultRuntime = sync.OnceValue(NewRuntime)
)

// GetRuntime returns the runtime bound to the calling goroutine, or the
// process wide default when none was bound.
func GetRuntime() *Runtime {
	if r, ok := runtimes.Load(getGID()); ok {
		return r.(*Runtime)
	}
	return defaultRuntime()
}

// SetRuntime binds r to the calling goroutine.
func SetRuntime(r *Runtime) {
	runtimes.Store(getGID(), r)
}

// ReleaseRuntime unbinds the calling goroutine's runtime.
func ReleaseRuntime() {
	runtimes.Delete(getGID())
}

func getGID() int64 {
	return goid.Get()
}
