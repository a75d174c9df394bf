// Package api defines the wire messages of the splitroom services.
//
// Messages are plain structs encoded as JSON with lowerCamelCase field
// names, matching what Connect's JSON clients send. Timestamps are Unix
// seconds. Money is sent both as a raw float64 and, where a response is meant
// for display, as a locale-formatted string.
package api
