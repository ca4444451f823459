package sanitizer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/sanitizer"
)

func TestApply(t *testing.T) {
	t.Parallel()

	upper := func(s string) string { return strings.ToUpper(s) }
	assert.Equal(t, "HELLO", sanitizer.Apply("  hello ", sanitizer.NormalizeWhitespace, upper))
	assert.Equal(t, "as is", sanitizer.Apply("as is"))

	double := sanitizer.Compose(func(n int) int { return n * 2 }, func(n int) int { return n + 1 })
	assert.Equal(t, 7, double(3))
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "Ada Lovelace", want: "Ada Lovelace"},
		{name: "markup stripped", input: "<b>Ada</b> <script>alert(1)</script>Lovelace", want: "Ada Lovelace"},
		{name: "entities kept as text", input: "Tom &amp; Jerry", want: "Tom & Jerry"},
		{name: "whitespace collapsed", input: "  Ada \n\t Lovelace  ", want: "Ada Lovelace"},
		{name: "bidi override dropped", input: "Ada\u202eecalevol", want: "Adaecalevol"},
		{name: "only markup", input: "<img src=x onerror=alert(1)>", want: ""},
		{name: "truncated", input: strings.Repeat("é", 80), want: strings.Repeat("é", sanitizer.MaxDisplayNameLength)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sanitizer.DisplayName(tt.input))
		})
	}
}

func TestLessonText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Ship it", sanitizer.LessonTitle("  <h1>Ship</h1>   it\n"))
	assert.Len(t, []rune(sanitizer.LessonTitle(strings.Repeat("a", 200))), sanitizer.MaxLessonTitleLength)
	assert.Equal(t, "Line one\nLine two", sanitizer.LessonText("<p>Line one</p>\nLine <b>two</b>\u200b "))
}

func TestEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ada@example.com", sanitizer.Email("  Ada@Example.COM "))
	assert.Equal(t, "not-an-email", sanitizer.Email(" not-an-email "))
	assert.Equal(t, "a@b@c", sanitizer.Email("a@b@c"))
	assert.Equal(t, "", sanitizer.Email("   "))
}

func TestImageURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{input: "https://i.ibb.co/2FsfXqM/user.png", want: "https://i.ibb.co/2FsfXqM/user.png"},
		{input: " HTTPS://IMG.Example.com/a.png ", want: "https://img.example.com/a.png"},
		{input: "javascript:alert(1)", want: ""},
		{input: "data:image/png;base64,AAAA", want: ""},
		{input: "/relative.png", want: ""},
		{input: "https://user:pw@img.example.com/a.png", want: ""},
		{input: "", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizer.ImageURL(tt.input), tt.input)
	}
}
