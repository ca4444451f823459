package handler

import (
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"
)

const (
	// DataStarAcceptHeader marks a request made by the datastar client.
	DataStarAcceptHeader = "text/event-stream"
	// DataStarQueryParam carries signals on GET requests.
	DataStarQueryParam = "datastar"
)

const (
	PatchOuter   = datastar.ElementPatchModeOuter
	PatchInner   = datastar.ElementPatchModeInner
	PatchReplace = datastar.ElementPatchModeReplace
	PatchRemove  = datastar.ElementPatchModeRemove
	PatchAppend  = datastar.ElementPatchModeAppend
	PatchPrepend = datastar.ElementPatchModePrepend
)

// IsDataStar reports whether r expects a datastar event stream.
func IsDataStar(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), DataStarAcceptHeader) {
		return true
	}
	if r.URL.Query().Has(DataStarQueryParam) {
		return true
	}
	return strings.Contains(r.Header.Get("Content-Type"), "application/x-datastar")
}

// NewSSE starts a datastar event stream on w.
func NewSSE(w http.ResponseWriter, r *http.Request) *datastar.ServerSentEventGenerator {
	return datastar.NewSSE(w, r)
}

// DataStarRedirect sends the browser to url: through the event stream for
// datastar requests, a 303 otherwise.
func DataStarRedirect(w http.ResponseWriter, r *http.Request, url string) error {
	if IsDataStar(r) {
		return NewSSE(w, r).Redirect(url)
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
	return nil
}
