// Package httputil holds shared HTTP response helpers: a single JSON error
// envelope, status-code shortcuts, and request-body decoding. Every API
// failure the portal returns goes through this package so clients always see
// the same `{"error": "..."}` shape.
package httputil
