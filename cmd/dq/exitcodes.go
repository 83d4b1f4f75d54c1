package main

// Exit codes used by all dq commands.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing config, invalid paths)
	ExitDataError   = 3 // Data error (empty document, embedding provider unavailable)
	ExitNotReady    = 4 // Query against an empty index
	ExitDenied      = 5 // Admin token missing or rejected
)
