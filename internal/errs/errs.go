package errs

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type Kind string

const (
	// KindTransient covers timeouts, 5xx and rate limits that survived retries.
	KindTransient Kind = "TRANSIENT"
	// KindMalformed covers upstream content that could not be understood.
	KindMalformed Kind = "MALFORMED"
	// KindConfig aborts a run before any collection work.
	KindConfig Kind = "CONFIG"
	// KindDelivery fails the run after the failure notification is attempted.
	KindDelivery Kind = "DELIVERY"
	// KindRender means the report could not be produced from collected data.
	KindRender Kind = "RENDER"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
	Stack   []byte
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) StackTrace() []byte {
	return e.Stack
}

func New(kind Kind, message string, err error) *Error {
	var stack []byte
	var ge *goerrors.Error
	switch {
	case err != nil && errors.As(err, &ge):
		stack = ge.Stack()
	case err != nil:
		stack = goerrors.Wrap(err, 2).Stack()
	default:
		stack = goerrors.New(message).Stack()
	}

	return &Error{
		Kind:    kind,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

func Transient(message string, err error) *Error {
	return New(KindTransient, message, err)
}

func Malformed(message string, err error) *Error {
	return New(KindMalformed, message, err)
}

func Config(message string, err error) *Error {
	return New(KindConfig, message, err)
}

func Delivery(message string, err error) *Error {
	return New(KindDelivery, message, err)
}

func Render(message string, err error) *Error {
	return New(KindRender, message, err)
}

// Is reports whether any error in err's chain is of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}

// Fatal reports whether err should fail a run.
func Fatal(err error) bool {
	return Is(err, KindConfig) || Is(err, KindDelivery) || Is(err, KindRender)
}
