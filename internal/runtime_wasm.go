//go:build wasm

package internal

import "sync"

var (
	mu            sync.Mutex
	globalRuntime *Runtime
)

func GetRuntime() *Runtime {
	mu.Lock()
	defer mu.Unlock()

	if globalRuntime == nil {
		globalRuntime = NewRuntime()
	}
	return globalRuntime
}

func SetRuntime(r *Runtime) {
	mu.Lock()
	defer mu.Unlock()
	globalRuntime = r
}

func ReleaseRuntime() {
	mu.Lock()
	defer mu.Unlock()
	globalRuntime = nil
}
