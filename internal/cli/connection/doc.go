// Package connection provides the HTTP client snapkeep-cli uses to talk to
// the admin API.
//
// Responses from the server are wrapped in a JSON envelope carrying a code,
// a message and a request ID. ParseResponse unwraps the data field of a
// successful response; failed responses surface as *APIError with the
// server's error code.
package connection
