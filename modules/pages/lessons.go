package pages

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ferdaws-ahmed/wisdomvault/handler"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/backend"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/logger"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/routes"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/sanitizer"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/validator"
	"github.com/ferdaws-ahmed/wisdomvault/views"
)

const lessonAdded = "Lesson created successfully!"

var errUnknownChoice = validator.ValidationErrors{{
	Field:   "category",
	Tag:     "oneof",
	Message: "Please pick a category and tone from the list",
}}

var errPremiumOnly = validator.ValidationErrors{{
	Field:   "access_level",
	Tag:     "premium",
	Message: "Upgrade to Premium to publish premium lessons",
}}

// Content is the part of the backend client the content pages call.
type Content interface {
	Lessons(ctx context.Context) ([]backend.Lesson, error)
	Lesson(ctx context.Context, id string) (backend.Lesson, error)
	TopContributors(ctx context.Context) ([]backend.Contributor, error)
	CommunityStats(ctx context.Context) (backend.CommunityStats, error)
	AddLesson(ctx context.Context, token string, l backend.NewLesson) error
	MyLessons(ctx context.Context, token string) ([]backend.Lesson, error)
	DeleteMyLesson(ctx context.Context, token, id string) error

	Accounts(ctx context.Context, token string) ([]backend.Account, error)
	SetRole(ctx context.Context, token, email, role string) error
	DeleteAccount(ctx context.Context, token, email string) error
	AllLessons(ctx context.Context, token string) ([]backend.Lesson, error)
	SetLessonAccess(ctx context.Context, token, id, access string) error
	DeleteLesson(ctx context.Context, token, id string) error
}

// contentError maps backend failures to transport errors. Anything else is
// left for the error handler to hide.
func contentError(err error) error {
	switch {
	case backend.IsNotFound(err):
		return handler.ErrNotFound
	case backend.IsUnauthorized(err):
		return handler.ErrForbidden
	case errors.Is(err, backend.ErrCircuitOpen):
		return handler.ErrServiceUnavailable
	}
	return err
}

// member returns the authenticated session of the request.
func member(ctx handler.Context) (session.Session, error) {
	sess, ok := session.FromContext(ctx)
	if !ok || !sess.IsAuthenticated() {
		return sess, handler.ErrUnauthorized
	}
	return sess, nil
}

// home renders the landing page. The contributor and stats feeds are
// optional: a failed feed is logged and left out.
func (s *Service) home(ctx handler.Context, _ struct{}) handler.Response {
	var (
		p views.HomeParams
		g errgroup.Group
	)
	g.Go(func() error {
		top, err := s.content.TopContributors(ctx)
		if err != nil {
			s.log.WarnContext(ctx, "top contributors unavailable", logger.Error(err))
			return nil
		}
		p.Contributors = top
		return nil
	})
	g.Go(func() error {
		stats, err := s.content.CommunityStats(ctx)
		if err != nil {
			s.log.WarnContext(ctx, "community stats unavailable", logger.Error(err))
			return nil
		}
		p.Stats = &stats
		return nil
	})
	_ = g.Wait()
	return s.page(ctx, routes.Home, "Home", views.Home(p))
}

type lessonsQuery struct {
	Query    string `form:"q"`
	Category string `form:"category"`
}

// matches filters by a case-insensitive title search and an exact category.
func (q lessonsQuery) matches(l backend.Lesson) bool {
	if q.Category != "" && q.Category != "All" && l.Category != q.Category {
		return false
	}
	return strings.Contains(strings.ToLower(l.Title), strings.ToLower(strings.TrimSpace(q.Query)))
}

func (s *Service) publicLessons(ctx handler.Context, q lessonsQuery) handler.Response {
	all, err := s.content.Lessons(ctx)
	if err != nil {
		return handler.Error(contentError(err))
	}
	sess, _ := session.FromContext(ctx)
	p := views.PublicLessonsParams{Session: sess, Query: q.Query, Category: q.Category}
	for _, l := range all {
		if l.Category != "" && !slices.Contains(p.Categories, l.Category) {
			p.Categories = append(p.Categories, l.Category)
		}
		if q.matches(l) {
			p.Lessons = append(p.Lessons, l)
		}
	}
	return s.page(ctx, routes.Lessons, "Public Lessons", views.PublicLessons(p))
}

type lessonRequest struct {
	ID string `path:"lessonId"`
}

func (s *Service) lessonDetails(ctx handler.Context, req lessonRequest) handler.Response {
	l, err := s.content.Lesson(ctx, req.ID)
	if err != nil {
		return handler.Error(contentError(err))
	}
	sess, _ := session.FromContext(ctx)
	return s.page(ctx, routes.LessonDetails, l.Title, views.LessonDetails(views.LessonParams{
		Lesson: l,
		Locked: views.LessonLocked(l, sess),
	}))
}

func (s *Service) addLessonPage(ctx handler.Context, _ struct{}) handler.Response {
	sess, _ := session.FromContext(ctx)
	return s.page(ctx, routes.AddLesson, "Add Lesson", views.AddLesson(views.AddLessonParams{Premium: sess.IsPremium}))
}

type lessonForm struct {
	Title         string `form:"title" validate:"required" msg:"Title and description are required"`
	Description   string `form:"description" validate:"required" msg:"Title and description are required"`
	Category      string `form:"category"`
	EmotionalTone string `form:"emotional_tone"`
	Image         string `form:"image"`
	Visibility    string `form:"visibility" validate:"omitempty,oneof=public private" msg:"Please pick a visibility and access level from the list"`
	AccessLevel   string `form:"access_level" validate:"omitempty,oneof=free premium" msg:"Please pick a visibility and access level from the list"`
}

func (f *lessonForm) clean() {
	f.Title = sanitizer.LessonTitle(f.Title)
	f.Description = sanitizer.LessonText(f.Description)
	f.Image = sanitizer.ImageURL(f.Image)
	if f.Visibility == "" {
		f.Visibility = "public"
	}
	if f.AccessLevel == "" {
		f.AccessLevel = backend.AccessFree
	}
}

func (f lessonForm) validate(sess session.Session) error {
	if err := validator.Struct(f); err != nil {
		return err
	}
	if (f.Category != "" && !slices.Contains(views.LessonCategories, f.Category)) ||
		(f.EmotionalTone != "" && !slices.Contains(views.EmotionalTones, f.EmotionalTone)) {
		return errUnknownChoice
	}
	if f.AccessLevel == backend.AccessPremium && !sess.IsPremium {
		return errPremiumOnly
	}
	return nil
}

// addLesson publishes a lesson in the name of the signed in member.
func (s *Service) addLesson(ctx handler.Context, f lessonForm) handler.Response {
	sess, err := member(ctx)
	if err != nil {
		return handler.Error(err)
	}
	f.clean()
	if err := f.validate(sess); err != nil {
		return handler.Error(err)
	}

	err = s.content.AddLesson(ctx, sess.AuthToken, backend.NewLesson{
		Title:         f.Title,
		Description:   f.Description,
		Category:      f.Category,
		EmotionalTone: f.EmotionalTone,
		Image:         f.Image,
		Visibility:    f.Visibility,
		AccessLevel:   f.AccessLevel,
		Creator: backend.Creator{
			Name:  views.DisplayName(sess),
			Email: sess.Email,
			Photo: sess.AvatarURL,
		},
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return handler.Error(contentError(err))
	}
	s.log.InfoContext(ctx, "lesson added", slog.String("category", f.Category))

	if !handler.IsDataStar(ctx.Request()) {
		return handler.Redirect(routes.MyLessonsPath)
	}
	return handler.TemplMulti(
		handler.Patch(views.AddLessonForm(views.AddLessonParams{Premium: sess.IsPremium})),
		handler.Patch(views.Toast(views.ToastSuccess, lessonAdded),
			handler.WithTarget(views.ToastTarget),
			handler.WithPatchMode(handler.PatchPrepend),
		),
	)
}

func (s *Service) myLessons(ctx handler.Context, _ struct{}) handler.Response {
	sess, err := member(ctx)
	if err != nil {
		return handler.Error(err)
	}
	mine, err := s.content.MyLessons(ctx, sess.AuthToken)
	if err != nil {
		return handler.Error(contentError(err))
	}
	return s.page(ctx, routes.MyLessons, "My Lessons", views.MyLessons(mine))
}

type lessonIDForm struct {
	ID string `form:"id" validate:"required"`
}

func (s *Service) deleteMyLesson(ctx handler.Context, f lessonIDForm) handler.Response {
	sess, err := member(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if err := validator.Struct(f); err != nil {
		return handler.Error(err)
	}
	if err := s.content.DeleteMyLesson(ctx, sess.AuthToken, f.ID); err != nil {
		return handler.Error(contentError(err))
	}
	s.log.InfoContext(ctx, "lesson deleted", logger.LessonID(f.ID))
	return handler.Redirect(routes.MyLessonsPath)
}
