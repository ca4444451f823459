package pages_test

import (
	"context"
	"net/http"
	"sync"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/backend"
)

var (
	gratitude = backend.Lesson{
		ID:               "42",
		Title:            "Say thank you early",
		Description:      "Gratitude compounds.\nSay it before the moment passes.",
		ShortDescription: "Gratitude compounds.",
		Category:         "Mindset",
		EmotionalTone:    "Gratitude",
		AccessLevel:      backend.AccessPremium,
		Creator:          backend.Creator{Name: "Grace", Email: "grace@example.com"},
	}
	shipIt = backend.Lesson{
		ID:               "43",
		Title:            "Ship it",
		Description:      "Done beats perfect.",
		ShortDescription: "Done beats perfect.",
		Category:         "Career",
		EmotionalTone:    "Motivational",
		AccessLevel:      backend.AccessFree,
		Creator:          backend.Creator{Name: "Ada", Email: "ada@example.com"},
	}
)

type fakeContent struct {
	mu      sync.Mutex
	lessons []backend.Lesson
	top     []backend.Contributor
	stats   backend.CommunityStats
	users   []backend.Account
	// feedErr fails the home page feeds, err every other call.
	feedErr error
	err     error

	tokens  []string
	added   []backend.NewLesson
	deleted []string
	roles   map[string]string
	access  map[string]string
}

func newFakeContent() *fakeContent {
	return &fakeContent{
		lessons: []backend.Lesson{gratitude, shipIt},
		top:     []backend.Contributor{{ID: "Grace", TotalLessons: 7, TotalLikes: 40, Score: 61}},
		stats:   backend.CommunityStats{TotalLessons: 1200, TotalUsers: 45, TotalFavorites: 300, TotalCategories: 5},
		users: []backend.Account{
			{Email: "ada@example.com", Name: "Ada", Role: "user"},
			{Email: "root@example.com", Name: "Root", Role: "admin"},
		},
		roles:  make(map[string]string),
		access: make(map[string]string),
	}
}

func (f *fakeContent) set(fn func(*fakeContent)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

// authed records token and fails like the backend does without one.
func (f *fakeContent) authed(token string) error {
	f.tokens = append(f.tokens, token)
	if f.err != nil {
		return f.err
	}
	if token == "" {
		return &backend.RequestError{Op: "fake", Status: http.StatusUnauthorized}
	}
	return nil
}

func (f *fakeContent) Lessons(context.Context) ([]backend.Lesson, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lessons, f.err
}

func (f *fakeContent) Lesson(_ context.Context, id string) (backend.Lesson, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.lessons {
		if l.ID == id {
			return l, nil
		}
	}
	return backend.Lesson{}, &backend.RequestError{Op: "get_lesson", Status: http.StatusNotFound}
}

func (f *fakeContent) TopContributors(context.Context) ([]backend.Contributor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.feedErr != nil {
		return nil, f.feedErr
	}
	return f.top, nil
}

func (f *fakeContent) CommunityStats(context.Context) (backend.CommunityStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.feedErr != nil {
		return backend.CommunityStats{}, f.feedErr
	}
	return f.stats, nil
}

func (f *fakeContent) AddLesson(_ context.Context, token string, l backend.NewLesson) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authed(token); err != nil {
		return err
	}
	f.added = append(f.added, l)
	return nil
}

func (f *fakeContent) MyLessons(_ context.Context, token string) ([]backend.Lesson, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authed(token); err != nil {
		return nil, err
	}
	return []backend.Lesson{shipIt}, nil
}

func (f *fakeContent) DeleteMyLesson(_ context.Context, token, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authed(token); err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeContent) Accounts(_ context.Context, token string) ([]backend.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authed(token); err != nil {
		return nil, err
	}
	return f.users, nil
}

func (f *fakeContent) SetRole(_ context.Context, token, email, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authed(token); err != nil {
		return err
	}
	f.roles[email] = role
	return nil
}

func (f *fakeContent) DeleteAccount(_ context.Context, token, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authed(token); err != nil {
		return err
	}
	f.deleted = append(f.deleted, email)
	return nil
}

func (f *fakeContent) AllLessons(_ context.Context, token string) ([]backend.Lesson, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authed(token); err != nil {
		return nil, err
	}
	return f.lessons, nil
}

func (f *fakeContent) SetLessonAccess(_ context.Context, token, id, access string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authed(token); err != nil {
		return err
	}
	f.access[id] = access
	return nil
}

func (f *fakeContent) DeleteLesson(_ context.Context, token, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authed(token); err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}
