package handler

import "net/http"

// SSEHandler runs for the lifetime of a datastar event stream. The stream
// ends when it returns or the client goes away.
type SSEHandler func(ctx StreamContext) error

type sseResponse struct {
	handler SSEHandler
}

func (s sseResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if !IsDataStar(r) {
		return NewHTTPError(http.StatusBadRequest, "sse_requires_datastar")
	}
	base := NewContext(w, r)
	sse := base.SSE()
	if sse == nil {
		return ErrSSENotInitialized
	}
	return s.handler(&streamContext{Context: base, sse: sse})
}

// SSE returns a response that streams updates through handler.
//
//	return handler.SSE(func(stream handler.StreamContext) error {
//		for {
//			select {
//			case <-stream.Done():
//				return nil
//			case c := <-changes:
//				if err := stream.SendComponent(views.UserMenu(c.Session)); err != nil {
//					return err
//				}
//			}
//		}
//	})
func SSE(handler SSEHandler) Response {
	return sseResponse{handler: handler}
}
