package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// API and server errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrServerBusy         = fmt.Errorf("another job is running")

	// Domain rule violations caught before any request is sent
	ErrProtectedProject = fmt.Errorf("the Default project is protected")
	ErrProjectNotFound  = fmt.Errorf("project not found")
	ErrFileNotFound     = fmt.Errorf("file not found")
	ErrFavoriteNotFound = fmt.Errorf("favorite not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
