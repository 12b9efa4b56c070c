// Package core defines sentinel errors.
package core

import "errors"

var (
	// Frame extraction errors
	ErrPacketTooShort = errors.New("chatsniff: packet too short")
	ErrNoPayload      = errors.New("chatsniff: no tcp payload")

	// Chat protocol errors
	ErrUndecodable = errors.New("chatsniff: message not decodable")

	// Capture errors
	ErrCapturePermission = errors.New("chatsniff: insufficient privilege to capture")
	ErrSourceClosed      = errors.New("chatsniff: source closed")

	// Reporter errors
	ErrReporterNotFound = errors.New("chatsniff: reporter not found")

	// Configuration errors
	ErrConfigInvalid = errors.New("chatsniff: invalid configuration")
)
