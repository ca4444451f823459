package sanitizer

import (
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Length bounds, in runes.
const (
	MaxDisplayNameLength = 60
	MaxLessonTitleLength = 120
)

var (
	strict     = bluemonday.StrictPolicy()
	whitespace = regexp.MustCompile(`\s+`)
)

// StripHTML removes every tag and returns the text content, unescaped.
func StripHTML(s string) string {
	return html.UnescapeString(strict.Sanitize(s))
}

// NormalizeWhitespace collapses runs of whitespace to one space and trims.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// StripControl drops control and format characters such as zero width
// joiners and bidi overrides.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		if unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, s)
}

// Truncate cuts s to at most n runes.
func Truncate(n int) func(string) string {
	return func(s string) string {
		if utf8.RuneCountInString(s) <= n {
			return s
		}
		return string([]rune(s)[:n])
	}
}

// DisplayName is the cleaning pipeline for names shown in the navbar and
// profile card.
var DisplayName = Compose(
	StripHTML,
	StripControl,
	NormalizeWhitespace,
	Truncate(MaxDisplayNameLength),
)

// LessonTitle cleans a lesson title.
var LessonTitle = Compose(
	StripHTML,
	StripControl,
	NormalizeWhitespace,
	Truncate(MaxLessonTitleLength),
)

// LessonText cleans a lesson body. Line breaks are kept.
var LessonText = Compose(
	StripHTML,
	StripControl,
	strings.TrimSpace,
)
