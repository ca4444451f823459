// Package requestid attaches a correlation id to every request.
//
// Middleware reuses a well-formed X-Request-ID header or mints a UUID,
// echoes it back in the response and stores it in the request context.
// LoggerExtractor adds it to every log record written with that context.
package requestid
