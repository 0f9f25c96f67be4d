package helpers

import "errors"

var (
	// ErrTimeout represents a timeout error
	ErrTimeout = errors.New("operation timed out")

	// ErrNetwork represents a network error
	ErrNetwork = errors.New("network error")

	// ErrPromptCanceled is returned when the user leaves a selection prompt
	ErrPromptCanceled = errors.New("selection canceled")

	// ErrNoInput is returned when input ends before a valid selection is read
	ErrNoInput = errors.New("no selection entered")
)
