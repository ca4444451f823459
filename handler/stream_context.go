package handler

import (
	"encoding/json"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"
)

// StreamContext is a Context with an open datastar event stream.
type StreamContext interface {
	Context

	// SendComponent patches one component into the page.
	SendComponent(component templ.Component, opts ...TemplOption) error
	// SendMultiple patches several components in order.
	SendMultiple(patches ...TemplPatch) error
	// SendSignals merges signals into the client store.
	SendSignals(signals map[string]any) error
	// Redirect navigates the browser.
	Redirect(url string) error
	// ExecuteScript runs script in the page.
	ExecuteScript(script string) error
}

type streamContext struct {
	Context
	sse *datastar.ServerSentEventGenerator
}

func (c *streamContext) SendComponent(component templ.Component, opts ...TemplOption) error {
	return c.sse.PatchElementTempl(component, opts...)
}

func (c *streamContext) SendMultiple(patches ...TemplPatch) error {
	for _, p := range patches {
		if err := c.sse.PatchElementTempl(p.Component, p.Options...); err != nil {
			return err
		}
	}
	return nil
}

func (c *streamContext) SendSignals(signals map[string]any) error {
	data, err := json.Marshal(signals)
	if err != nil {
		return err
	}
	return c.sse.PatchSignals(data)
}

func (c *streamContext) Redirect(url string) error {
	return c.sse.Redirect(url)
}

func (c *streamContext) ExecuteScript(script string) error {
	return c.sse.ExecuteScript(script)
}
