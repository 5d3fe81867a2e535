package internal

import (
	"fmt"
	"runtime"
	"strings"

	"go.uber.org/multierr"
)

// UnsubscriptionError bundles every failure collected while a subscription
// tore down its children and itself.
type UnsubscriptionError struct {
	Errors []error
}

func (e *UnsubscriptionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d errors occurred during unsubscription:", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "\n%d) %v", i+1, err)
	}
	return b.String()
}

func (e *UnsubscriptionError) Unwrap() []error {
	return e.Errors
}

// flatten unpacks an aggregate so collecting it never nests more than one level.
func flatten(err error) error {
	if ue, ok := err.(*UnsubscriptionError); ok {
		return multierr.Combine(ue.Errors...)
	}
	return err
}

// PanicError wraps a value recovered from a user callback together with the
// stack at the point of the panic.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v\n\n%s", e.Value, e.Stack)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func NewPanicError(v any) *PanicError {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return &PanicError{
		Value: v,
		Stack: string(buf[:n]),
	}
}
