// Package handler implements the admin API endpoints.
//
// Every JSON response is wrapped in the same envelope:
//
//	{"code": "OK", "message": "...", "request_id": "req-...", "timestamp": ..., "data": ...}
//
// Domain errors carry their SK-* code into the envelope and pick the HTTP
// status; anything else becomes a generic 500 with the detail kept in the
// server log. GET /admin/v1/backups/{id}/content is the one exception to
// the envelope: it streams the restored snapshot JSON as the body.
package handler
