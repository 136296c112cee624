package fluke45

import "errors"

// Predefined error types for robust error handling
var (
	ErrInvalidBaudRate = errors.New("invalid baud rate")
	ErrInvalidConfig   = errors.New("invalid meter configuration")
	ErrNoMeterFound    = errors.New("no meter found")
	ErrSessionClosed   = errors.New("session is closed")

	// Protocol errors
	ErrNoPrompt       = errors.New("no prompt from device")
	ErrNoReply        = errors.New("no reply from device")
	ErrCommandError   = errors.New("device rejected command syntax")
	ErrExecutionError = errors.New("device could not execute command")
	ErrMalformedReply = errors.New("malformed reply")

	// State errors
	ErrUnknownFunction = errors.New("unknown function code")
	ErrInvalidValue    = errors.New("invalid numeric value")
)
