// Package httpserver serves the snapkeep admin API over HTTP or HTTPS.
//
// Probes (/health, /ready, /metrics) pass through RequestID, Recover and
// Audit only. Routes under /admin/v1/backups additionally go through the
// IP allowlist and the per-IP rate limiter when those are configured.
package httpserver
