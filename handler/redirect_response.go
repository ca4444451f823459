package handler

import (
	"net/http"
	"net/url"
	"strings"
)

type redirectResponse struct {
	url string
}

func (r redirectResponse) Render(w http.ResponseWriter, req *http.Request) error {
	return DataStarRedirect(w, req, r.url)
}

// Redirect sends a 303, or a datastar redirect for datastar requests.
func Redirect(url string) Response {
	return redirectResponse{url: url}
}

type redirectBackResponse struct {
	fallback string
}

func (r redirectBackResponse) Render(w http.ResponseWriter, req *http.Request) error {
	target := r.fallback
	if ref := req.Header.Get("Referer"); ref != "" && sameHost(ref, req) {
		target = ref
	}
	return DataStarRedirect(w, req, target)
}

// RedirectBack redirects to the same-host Referer, or fallback.
func RedirectBack(fallback string) Response {
	return redirectBackResponse{fallback: fallback}
}

// LocalPath returns target when it is a path on this site and fallback
// otherwise. Scheme-relative ("//evil.com") and absolute URLs are rejected.
func LocalPath(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return target
}

func sameHost(raw string, r *http.Request) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Host == "" || u.Host == r.Host
}
