package types

import "fmt"

// Stable machine-readable error codes surfaced by the bridge.
const (
	CodeDeviceNotFound    = "DEVICE_NOT_FOUND"
	CodePairingInProgress = "PAIRING_IN_PROGRESS"
	CodePairingStopped    = "PAIRING_STOPPED"
	CodeInvalidPayload    = "INVALID_PAYLOAD"
)

// BridgeError is a terminal rejection carrying a stable code plus a
// human-readable message. Operations reject with exactly one of these.
type BridgeError struct {
	Code    string
	Message string
}

func (e *BridgeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBridgeError builds a BridgeError with a formatted message.
func NewBridgeError(code, format string, args ...any) *BridgeError {
	return &BridgeError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// RemoteError carries the cloud service's own error code and message,
// verbatim. It is never translated or retried at this layer.
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote backend %s: %s", e.Code, e.Message)
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// NewErrorResponse builds a consistent API error payload.
// details can be string, map, struct, etc.
func NewErrorResponse(code, message string, details any) ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}
