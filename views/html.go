package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// html writes markup and remembers the first write error.
type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *html) text(s string) { h.raw(templ.EscapeString(s)) }

func (h *html) attr(name, value string) {
	h.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// href writes a sanitized URL attribute; unsafe schemes are neutralized.
func (h *html) href(name, value string) {
	h.attr(name, string(templ.URL(value)))
}

// el writes <tag attrs...>text</tag>; attrs alternate name and value.
func (h *html) el(tag, text string, attrs ...string) {
	h.open(tag, attrs...)
	h.text(text)
	h.raw("</" + tag + ">")
}

func (h *html) open(tag string, attrs ...string) {
	h.raw("<" + tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		h.attr(attrs[i], attrs[i+1])
	}
	h.raw(">")
}

func (h *html) close(tag string) { h.raw("</" + tag + ">") }

func (h *html) link(url, text string, attrs ...string) {
	h.raw("<a")
	h.href("href", url)
	for i := 0; i+1 < len(attrs); i += 2 {
		h.attr(attrs[i], attrs[i+1])
	}
	h.raw(">")
	h.text(text)
	h.raw("</a>")
}

func (h *html) child(ctx context.Context, c templ.Component) {
	if h.err == nil && c != nil {
		h.err = c.Render(ctx, h.w)
	}
}

func component(fn func(ctx context.Context, h *html)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		fn(ctx, h)
		return h.err
	})
}
