// Package clientip resolves the address a request came from.
//
// Proxy headers are consulted in order (CF-Connecting-IP, X-Forwarded-For,
// X-Real-IP) before the connection's remote address. Only values that
// parse as an IP address are accepted. Deploy behind a proxy that
// overwrites these headers; they are trivially spoofed otherwise.
package clientip
