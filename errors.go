package tintbar

import (
	"errors"
)

// Application errors
var (
	// Lifecycle errors
	ErrApplicationRunning = errors.New("an application instance already exists in this process")
	ErrLoggerNil          = errors.New("logger cannot be nil")
	ErrGatewayNil         = errors.New("configuration gateway cannot be nil")

	// Async result errors
	ErrResultConsumed     = errors.New("async result has already been awaited")
	ErrResultNotCompleted = errors.New("async result is not completed")

	// Host manager errors
	ErrNoPageFactory     = errors.New("no page factory registered for window kind")
	ErrWindowNotFound    = errors.New("no hosted window with that handle")
	ErrConfigureCallback = errors.New("configure callback cannot be nil")

	// Startup registration errors
	ErrStartupTaskConsumed = errors.New("startup registration task already acquired")

	// Observer errors
	ErrInvalidEvent = errors.New("event failed CloudEvent validation")
)
