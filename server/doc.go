// Package server provides the HTTP server for the analysis API: a Gin
// engine with HTTP/2 cleartext support, a standard middleware stack, and
// response helpers that map application errors to structured JSON bodies.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: Panic recovery with structured logging
//   - Logging: Request logging with duration tracking
//   - CORS: Cross-origin resource sharing configuration
//   - RequestID: Request ID generation and propagation
//   - RateLimit: Per-client sliding-window rate limiting
//   - BodySize: Request body size limits
//
// Route handlers live in the api package; this package owns the listener
// lifecycle and the cross-cutting request plumbing.
package server
