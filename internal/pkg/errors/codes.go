package errors

import "net/http"

var (
	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidRadius = New(
		"INVALID_RADIUS",
		"Invalid radius value",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrLocationNotFound = New(
		"LOCATION_NOT_FOUND",
		"Location not found",
		http.StatusNotFound,
	)

	ErrProviderTimeout = New(
		"PROVIDER_TIMEOUT",
		"Provider request timed out",
		http.StatusGatewayTimeout,
	)

	ErrProviderOffline = New(
		"PROVIDER_OFFLINE",
		"Provider is unreachable",
		http.StatusBadGateway,
	)

	ErrProviderResponse = New(
		"PROVIDER_RESPONSE",
		"Provider returned a malformed response",
		http.StatusBadGateway,
	)

	ErrRateLimited = New(
		"RATE_LIMITED",
		"Too many requests to the provider",
		http.StatusTooManyRequests,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
