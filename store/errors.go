package store

import "errors"

var (
	// ErrRunNotFound indicates the run does not exist.
	ErrRunNotFound = errors.New("run not found")
)
