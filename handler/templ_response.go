package handler

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"
)

// TemplOption configures how a component is patched into the page.
type TemplOption = datastar.PatchElementOption

// WithTarget sets the CSS selector the component is patched into.
func WithTarget(selector string) TemplOption {
	return datastar.WithSelector(selector)
}

// WithPatchMode sets how the component is merged into the DOM.
func WithPatchMode(mode datastar.ElementPatchMode) TemplOption {
	return datastar.WithMode(mode)
}

// TemplPatch is a component with its own patch options.
type TemplPatch struct {
	Component templ.Component
	Options   []TemplOption
}

// Patch builds a TemplPatch for TemplMulti.
func Patch(component templ.Component, opts ...TemplOption) TemplPatch {
	return TemplPatch{Component: component, Options: opts}
}

type templResponse struct {
	status  int
	partial templ.Component
	full    templ.Component
	options []TemplOption
}

// Render patches the partial over SSE for datastar requests and writes the
// full component as HTML otherwise.
func (t templResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if IsDataStar(r) {
		return NewSSE(w, r).PatchElementTempl(t.partial, t.options...)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if t.status != 0 {
		w.WriteHeader(t.status)
	}
	return t.full.Render(r.Context(), w)
}

// Templ renders component as HTML, or as a datastar element patch.
func Templ(component templ.Component, opts ...TemplOption) Response {
	return templResponse{partial: component, full: component, options: opts}
}

// TemplStatus renders component as HTML with the given status code.
func TemplStatus(status int, component templ.Component) Response {
	return templResponse{status: status, partial: component, full: component}
}

// TemplPartial renders partial for datastar requests and full otherwise.
func TemplPartial(partial, full templ.Component, opts ...TemplOption) Response {
	return templResponse{partial: partial, full: full, options: opts}
}

type templMultiResponse struct {
	patches []TemplPatch
}

func (t templMultiResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if IsDataStar(r) {
		sse := NewSSE(w, r)
		for _, p := range t.patches {
			if err := sse.PatchElementTempl(p.Component, p.Options...); err != nil {
				return err
			}
		}
		return nil
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	for _, p := range t.patches {
		if err := p.Component.Render(r.Context(), w); err != nil {
			return err
		}
	}
	return nil
}

// TemplMulti patches several components, each into its own target.
// Regular requests get them concatenated in order.
func TemplMulti(patches ...TemplPatch) Response {
	return templMultiResponse{patches: patches}
}
