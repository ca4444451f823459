// Package session owns the authentication state of every browser.
//
// A single Manager per process holds one Session per browser, keyed by an
// opaque ID carried in an encrypted cookie. The Manager is the only writer:
// it consumes the identity provider's auth-state stream in order (Run),
// resolves each signed-in principal against the backend profile, and moves
// the session through loading, authenticated and anonymous according to a
// fixed transition table. Every stored value passes Session.Validate.
//
// Readers get value snapshots: from the request context (Middleware), from
// Snapshot and Await, or as Change values from Subscribe.
//
// Profile syncs are tagged with the session Generation. A sync that
// finishes after a newer sign-in or sign-out is discarded. When the backend
// cannot be reached the session still resolves, with the provider fields
// and the user role.
//
// Tokens live only in the Store (MemoryStore or RedisStore).
package session
