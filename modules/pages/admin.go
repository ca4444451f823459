package pages

import (
	"github.com/ferdaws-ahmed/wisdomvault/handler"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/logger"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/routes"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/validator"
	"github.com/ferdaws-ahmed/wisdomvault/views"
)

var errOwnAccount = validator.ValidationErrors{{
	Field:   "email",
	Tag:     "self",
	Message: "You can't change your own account here",
}}

// admin returns the session of a signed in administrator. The form
// endpoints sit outside the route guard, so they check the role themselves.
func admin(ctx handler.Context) (session.Session, error) {
	sess, err := member(ctx)
	if err != nil {
		return sess, err
	}
	if !sess.IsAdmin() {
		return sess, handler.ErrForbidden
	}
	return sess, nil
}

func (s *Service) manageUsers(ctx handler.Context, _ struct{}) handler.Response {
	sess, err := admin(ctx)
	if err != nil {
		return handler.Error(err)
	}
	accounts, err := s.content.Accounts(ctx, sess.AuthToken)
	if err != nil {
		return handler.Error(contentError(err))
	}
	return s.page(ctx, routes.ManageUsers, "Manage Users", views.ManageUsers(accounts, sess.Email))
}

type roleForm struct {
	Email string `form:"email" validate:"required,email"`
	Role  string `form:"role" validate:"required,oneof=user premium"`
}

// setRole switches an account between user and premium. Admin grants are
// not made from here.
func (s *Service) setRole(ctx handler.Context, f roleForm) handler.Response {
	sess, err := admin(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if err := validator.Struct(f); err != nil {
		return handler.Error(err)
	}
	if f.Email == sess.Email {
		return handler.Error(errOwnAccount)
	}
	if err := s.content.SetRole(ctx, sess.AuthToken, f.Email, f.Role); err != nil {
		return handler.Error(contentError(err))
	}
	s.log.InfoContext(ctx, "account role changed", logger.Role(f.Role))
	return handler.Redirect(routes.ManageUsersPath)
}

type accountForm struct {
	Email string `form:"email" validate:"required,email"`
}

func (s *Service) deleteAccount(ctx handler.Context, f accountForm) handler.Response {
	sess, err := admin(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if err := validator.Struct(f); err != nil {
		return handler.Error(err)
	}
	if f.Email == sess.Email {
		return handler.Error(errOwnAccount)
	}
	if err := s.content.DeleteAccount(ctx, sess.AuthToken, f.Email); err != nil {
		return handler.Error(contentError(err))
	}
	s.log.InfoContext(ctx, "account deleted")
	return handler.Redirect(routes.ManageUsersPath)
}

func (s *Service) manageLessons(ctx handler.Context, _ struct{}) handler.Response {
	sess, err := admin(ctx)
	if err != nil {
		return handler.Error(err)
	}
	all, err := s.content.AllLessons(ctx, sess.AuthToken)
	if err != nil {
		return handler.Error(contentError(err))
	}
	return s.page(ctx, routes.ManageLessons, "Manage Lessons", views.ManageLessons(all))
}

type accessForm struct {
	ID          string `form:"id" validate:"required"`
	AccessLevel string `form:"access_level" validate:"required,oneof=free premium"`
}

func (s *Service) setLessonAccess(ctx handler.Context, f accessForm) handler.Response {
	sess, err := admin(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if err := validator.Struct(f); err != nil {
		return handler.Error(err)
	}
	if err := s.content.SetLessonAccess(ctx, sess.AuthToken, f.ID, f.AccessLevel); err != nil {
		return handler.Error(contentError(err))
	}
	s.log.InfoContext(ctx, "lesson access changed", logger.LessonID(f.ID))
	return handler.Redirect(routes.ManageLessonsPath)
}

func (s *Service) deleteLesson(ctx handler.Context, f lessonIDForm) handler.Response {
	sess, err := admin(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if err := validator.Struct(f); err != nil {
		return handler.Error(err)
	}
	if err := s.content.DeleteLesson(ctx, sess.AuthToken, f.ID); err != nil {
		return handler.Error(contentError(err))
	}
	s.log.InfoContext(ctx, "lesson removed", logger.LessonID(f.ID))
	return handler.Redirect(routes.ManageLessonsPath)
}
