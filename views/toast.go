package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/ferdaws-ahmed/wisdomvault/handler"
)

// Toast kinds.
const (
	ToastSuccess = "success"
	ToastInfo    = "info"
	ToastWarning = "warning"
	ToastError   = "error"
)

// Toast is a dismissable notification prepended to #toast-container.
func Toast(kind, message string) templ.Component {
	return component(func(_ context.Context, h *html) {
		role := "status"
		if kind == ToastError || kind == ToastWarning {
			role = "alert"
		}
		h.raw(`<div class="toast toast-`)
		h.text(kind)
		h.raw(`" role="` + role + `" data-on-click="el.remove()">`)
		h.text(message)
		h.raw("</div>")
	})
}

// ErrorToast adapts Toast to the error handler.
func ErrorToast(p handler.ErrorToastParams) templ.Component {
	return Toast(p.Type, p.Message)
}

// ErrorPage is the full page shown when a non-datastar request fails.
func ErrorPage(p handler.ErrorPageParams) templ.Component {
	return component(func(_ context.Context, h *html) {
		h.raw("<!doctype html><html lang=\"en\"><head><meta charset=\"utf-8\">")
		h.el("title", strconv.Itoa(p.StatusCode)+" | WisdomVault")
		h.raw(`</head><body><section id="error">`)
		h.el("h1", strconv.Itoa(p.StatusCode))
		h.el("p", p.Error)
		if p.RequestID != "" {
			h.el("p", "Reference: "+p.RequestID, "class", "muted")
		}
		if p.RetryURL != "" {
			h.link(p.RetryURL, "Try again", "class", "button")
		}
		h.link("/", "Go Back Home")
		h.raw("</section></body></html>")
	})
}
