package generation

import "errors"

var (
	ErrTransport         = errors.New("transport failure")
	ErrService           = errors.New("service failure")
	ErrMalformedResponse = errors.New("invalid response format from server")
	ErrEmptyBatch        = errors.New("no valid tasks were created from the response")
)

const defaultServiceMessage = "failed to process your request"

// TransportError wraps a failure of the generation call itself. Its message is
// the collaborator's message, untouched.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// ServiceError is an explicit error status reported by the generation service.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return defaultServiceMessage
	}
	return e.Message
}

func (e *ServiceError) Is(target error) bool {
	return target == ErrService
}
