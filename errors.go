package rxjs

import (
	"errors"
	"fmt"

	"github.com/benlesh/rxjs/internal"
)

// UnsubscriptionError is returned by Unsubscribe when one or more teardowns
// failed. Errors holds every failure, flattened, in registration order.
type UnsubscriptionError = internal.UnsubscriptionError

// PanicError wraps a panic recovered from a user supplied callback.
type PanicError = internal.PanicError

var (
	// ErrEmpty is emitted by operators that require at least one value.
	ErrEmpty = errors.New("rxjs: no elements in sequence")

	// ErrAborted rejects a ForEach whose external subscription was
	// unsubscribed before the stream completed.
	ErrAborted = errors.New("rxjs: aborted")
)

// SequenceError reports a stream that emitted a different number of values
// than a consumer requires.
type SequenceError struct {
	Message string
}

func (e *SequenceError) Error() string {
	return "rxjs: " + e.Message
}

// InteropTypeError is returned when a value cannot be turned into an Observable.
type InteropTypeError struct {
	Value any
}

func (e *InteropTypeError) Error() string {
	return fmt.Sprintf("rxjs: %T does not provide a valid Subscribe method", e.Value)
}
