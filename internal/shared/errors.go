package shared

import "errors"

var (
	// Configuration errors
	ErrMissingConfig      = errors.New("configuration not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrMissingCredentials = errors.New("missing credentials")

	// Store errors
	ErrDataAccess   = errors.New("data access failed")
	ErrInvalidQuery = errors.New("invalid query")
	ErrNotFound     = errors.New("not found")
	ErrNotMirrored  = errors.New("collection has not been mirrored; run 'mixtape collection refresh'")

	// Remote errors
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// Input validation errors
	ErrInvalidInput    = errors.New("invalid input")
	ErrMissingArgument = errors.New("missing required argument")
	ErrInvalidArgument = errors.New("invalid argument")
)
