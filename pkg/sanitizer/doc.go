// Package sanitizer cleans user supplied profile and account input before it
// reaches the identity provider or the backend.
//
// Markup is stripped with a bluemonday strict policy, so display names
// arrive as plain text. The helpers are small pure functions and compose
// into pipelines:
//
//	clean := sanitizer.Compose(sanitizer.StripHTML, sanitizer.NormalizeWhitespace)
//	name := clean("  <b>Ada</b>\n Lovelace ") // "Ada Lovelace"
//
// None of the helpers returns an error. Input that cannot be made safe
// becomes the empty string.
package sanitizer
