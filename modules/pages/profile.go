package pages

import (
	"errors"

	"github.com/ferdaws-ahmed/wisdomvault/handler"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/routes"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/sanitizer"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/validator"
	"github.com/ferdaws-ahmed/wisdomvault/views"
)

const profileUpdated = "Profile updated successfully!"

var errEmptyProfile = validator.ValidationErrors{{
	Field:   "name",
	Tag:     "required_without",
	Message: "Nothing to update",
}}

var errInvalidPhoto = validator.ValidationErrors{{
	Field:   "photo_url",
	Tag:     "url",
	Message: "Please enter a valid image URL",
}}

type profileForm struct {
	Name     string `form:"name"`
	PhotoURL string `form:"photo_url"`
}

// patch turns the form into a ProfilePatch; empty fields are kept as they
// are.
func (f profileForm) patch() (session.ProfilePatch, error) {
	var p session.ProfilePatch
	if name := sanitizer.DisplayName(f.Name); name != "" {
		p.DisplayName = &name
	}
	if f.PhotoURL != "" {
		photo := sanitizer.ImageURL(f.PhotoURL)
		if photo == "" {
			return p, errInvalidPhoto
		}
		p.AvatarURL = &photo
	}
	if p.DisplayName == nil && p.AvatarURL == nil {
		return p, errEmptyProfile
	}
	return p, nil
}

// updateProfile applies the edit locally right away; the session stream
// reports when the provider and backend have caught up.
func (s *Service) updateProfile(ctx handler.Context, f profileForm) handler.Response {
	sess, ok := session.FromContext(ctx)
	if !ok || !sess.IsAuthenticated() {
		return handler.Error(handler.ErrUnauthorized)
	}
	p, err := f.patch()
	if err != nil {
		return handler.Error(err)
	}
	updated, err := s.sessions.UpdateProfile(ctx, sess.ID, p)
	if errors.Is(err, session.ErrNotAuthenticated) {
		return handler.Error(handler.ErrUnauthorized)
	}
	if err != nil {
		return handler.Error(err)
	}
	s.log.InfoContext(ctx, "profile updated")

	if !handler.IsDataStar(ctx.Request()) {
		return handler.Redirect(routes.ProfilePath)
	}
	return handler.TemplMulti(
		handler.Patch(views.ProfileCard(updated)),
		handler.Patch(views.UserMenu(updated)),
		handler.Patch(views.ProfileForm()),
		handler.Patch(views.Toast(views.ToastSuccess, profileUpdated),
			handler.WithTarget(views.ToastTarget),
			handler.WithPatchMode(handler.PatchPrepend),
		),
	)
}
