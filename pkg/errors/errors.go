package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the different kinds of failure the pipeline can report
type ErrorType string

const (
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeDecode     ErrorType = "decode"
	ErrorTypeMissingKey ErrorType = "missing_key"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeWrite      ErrorType = "write"
	ErrorTypeMalformed  ErrorType = "malformed"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error is a failure tagged with its kind and the resource it concerns
type Error struct {
	Type     ErrorType
	Message  string
	Resource string // URL or path
	Code     int    // HTTP status when known
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error: %s", e.Type, e.Message)
	if e.Resource != "" {
		msg += " (" + e.Resource + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a tagged error
func New(t ErrorType, resource, message string, cause error) *Error {
	return &Error{
		Type:     t,
		Message:  message,
		Resource: resource,
		Err:      cause,
	}
}

// Network reports a failed GET or a non-200 response
func Network(url string, code int, cause error) *Error {
	msg := "failed to fetch"
	if code != 0 {
		msg = fmt.Sprintf("failed to fetch, status %d", code)
	}
	return &Error{Type: ErrorTypeNetwork, Message: msg, Resource: url, Code: code, Err: cause}
}

// Decode reports bytes that are not a valid image
func Decode(resource string, cause error) *Error {
	return New(ErrorTypeDecode, resource, "not a decodable image", cause)
}

// MissingKey reports a URL without an ixid and no explicit name
func MissingKey(url string, cause error) *Error {
	return New(ErrorTypeMissingKey, url, "no ixid parameter and no explicit name", cause)
}

// NotFound reports an absent dictionary or image file
func NotFound(path string, cause error) *Error {
	return New(ErrorTypeNotFound, path, "file does not exist", cause)
}

// Write reports an I/O error while saving an artifact
func Write(path string, cause error) *Error {
	return New(ErrorTypeWrite, path, "failed to write file", cause)
}

// Malformed reports a dictionary that fails to parse
func Malformed(path string, cause error) *Error {
	return New(ErrorTypeMalformed, path, "failed to parse dictionary", cause)
}

// TypeOf returns the kind of the first tagged error in err's chain
func TypeOf(err error) ErrorType {
	if err == nil {
		return ""
	}
	var tagged *Error
	if stderrors.As(err, &tagged) {
		return tagged.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err carries the given kind
func Is(err error, t ErrorType) bool {
	return err != nil && TypeOf(err) == t
}
