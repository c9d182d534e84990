// api/errors/errors.go
package errors

import "errors"

var (
	ErrInvalidSearchRequest = errors.New("invalid search request")
	ErrUnauthorized         = errors.New("unauthorized")

	ErrGeoLookupFailed = errors.New("geolocation lookup failed")
	ErrSearchFailed    = errors.New("search execution failed")

	ErrInvalidPolicyConfig = errors.New("invalid policy configuration")
)
