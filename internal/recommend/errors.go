// internal/recommend/errors.go
package recommend

import "errors"

// Outcome kinds. Match them with errors.Is against an error returned by the Engine.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnprocessableEntity = errors.New("unprocessable entity")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// Error is a classified recommendation failure. Message is safe to show to clients.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func invalidInput(msg string, cause error) *Error {
	return &Error{Kind: ErrInvalidInput, Message: msg, Err: cause}
}

func unprocessable(msg string, cause error) *Error {
	return &Error{Kind: ErrUnprocessableEntity, Message: msg, Err: cause}
}

func upstreamUnavailable(cause error) *Error {
	return &Error{Kind: ErrUpstreamUnavailable, Message: "review service unavailable", Err: cause}
}
