package model

//
// Common HTTP definitions.
//

const (
	// HTTPHeaderAccept is the Accept header used for probing.
	HTTPHeaderAccept = "*/*"

	// HTTPHeaderUserAgentPrefix is the prefix of the User-Agent header
	// used for probing. The version string follows the slash.
	HTTPHeaderUserAgentPrefix = "safenet/"
)

// HTTPStatusIsAvailable tells whether an HTTP status code belongs to the
// success (2xx) or redirect (3xx) ranges.
func HTTPStatusIsAvailable(code int) bool {
	return code >= 200 && code < 400
}
