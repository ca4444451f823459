package pages

import (
	"errors"

	"github.com/ferdaws-ahmed/wisdomvault/handler"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/logger"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/routes"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
	"github.com/ferdaws-ahmed/wisdomvault/views"
)

const syncFailedMessage = "Couldn't save your profile, we'll keep trying"

type eventsQuery struct {
	// From is the path of the page holding the stream.
	From string `form:"from"`
	// Settle asks for a reload once the session leaves the loading state.
	Settle bool `form:"settle"`
}

// sessionEvents streams the session of the requesting browser to its page:
// the user menu and sync indicator follow every change, the profile card
// follows on the profile page, and background failures show as toasts.
func (s *Service) sessionEvents(ctx handler.Context, q eventsQuery) handler.Response {
	cur, ok := session.FromContext(ctx)
	if !ok || cur.ID == "" {
		return handler.Error(handler.ErrUnauthorized)
	}
	from := handler.LocalPath(q.From, routes.HomePath)

	return handler.SSE(func(stream handler.StreamContext) error {
		sub := s.sessions.SubscribeSession(stream, cur.ID)
		defer func() { _ = sub.Close() }()

		// The snapshot is taken after subscribing so no change between the
		// page render and the stream start is lost.
		snap, err := s.sessions.Snapshot(stream, cur.ID)
		if err != nil && !errors.Is(err, session.ErrSessionNotFound) {
			return err
		}
		if err == nil {
			if done, err := s.push(stream, q.Settle, from, session.Change{Session: snap}); done || err != nil {
				return err
			}
		}

		for {
			select {
			case <-stream.Done():
				return nil
			case c, ok := <-sub.Receive():
				if !ok {
					// Dropped or shut down. A settling page reloads rather
					// than wait on a stream that will never speak again.
					if q.Settle {
						return stream.Redirect(from)
					}
					return nil
				}
				if done, err := s.push(stream, q.Settle, from, c); done || err != nil {
					return err
				}
			}
		}
	})
}

// push sends c to the page. done is true once a settling stream has
// redirected.
func (s *Service) push(stream handler.StreamContext, settle bool, from string, c session.Change) (bool, error) {
	if settle {
		if c.Session.IsLoading() {
			return false, nil
		}
		return true, stream.Redirect(from)
	}

	patches := []handler.TemplPatch{handler.Patch(views.UserMenu(c.Session))}
	if from == routes.ProfilePath && c.Session.IsAuthenticated() {
		patches = append(patches, handler.Patch(views.ProfileCard(c.Session)))
	}
	if err := stream.SendMultiple(patches...); err != nil {
		return false, err
	}

	if c.Err != nil {
		s.log.WarnContext(stream, "background session error", logger.Error(c.Err))
		toast := views.Toast(views.ToastError, changeMessage(c.Err))
		if err := stream.SendComponent(toast, handler.WithTarget(views.ToastTarget), handler.WithPatchMode(handler.PatchPrepend)); err != nil {
			return false, err
		}
	}
	return false, nil
}

func changeMessage(err error) string {
	var ue handler.UserError
	if errors.As(err, &ue) {
		return ue.UserMessage()
	}
	var se *session.ProfileSyncError
	if errors.As(err, &se) {
		return syncFailedMessage
	}
	return "Something went wrong, please try again"
}
