package identify

import "fmt"

// ServerError is a non-2xx response from the identification endpoint.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("identification endpoint returned status %d", e.Status)
	}
	return fmt.Sprintf("identification endpoint returned status %d: %s", e.Status, e.Body)
}

// ApplicationError is a well-formed response whose success flag is false.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("identification failed: %s", e.Message)
}

// ProtocolError is a response (or request) the client could not interpret.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("identification protocol error: %s: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// NetworkError is a transport-level failure; no response was received.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("identification request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
