package core

// Process exit codes.
const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)
