package pages_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferdaws-ahmed/wisdomvault/modules/pages"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/broadcast"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/cookie"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/logger"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/routes"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/theme"
)

type fakeSessions struct {
	stream     *broadcast.Memory[session.Change]
	subscribed chan struct{}

	mu      sync.Mutex
	current session.Session
	patches []session.ProfilePatch
}

func newFakeSessions(s session.Session) *fakeSessions {
	return &fakeSessions{
		stream:     broadcast.NewMemory[session.Change](8),
		subscribed: make(chan struct{}, 1),
		current:    s,
	}
}

func (f *fakeSessions) Snapshot(_ context.Context, id string) (session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current.ID != id {
		return session.Session{}, session.ErrSessionNotFound
	}
	return f.current, nil
}

func (f *fakeSessions) SubscribeSession(ctx context.Context, id string) broadcast.Subscriber[session.Change] {
	sub := f.stream.Subscribe(ctx, broadcast.Reliable(), broadcast.Filter(func(c session.Change) bool { return c.Session.ID == id }))
	f.subscribed <- struct{}{}
	return sub
}

func (f *fakeSessions) UpdateProfile(_ context.Context, id string, p session.ProfilePatch) (session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.current.IsAuthenticated() {
		return session.Session{}, session.ErrNotAuthenticated
	}
	f.patches = append(f.patches, p)
	if p.DisplayName != nil {
		f.current.DisplayName = *p.DisplayName
	}
	if p.AvatarURL != nil {
		f.current.AvatarURL = *p.AvatarURL
	}
	f.current.SyncPending = true
	return f.current, nil
}

var ada = session.Session{
	ID:          "sess-1",
	Identity:    "uid-ada",
	DisplayName: "Ada",
	Email:       "ada@example.com",
	Role:        session.RoleUser,
	AuthToken:   "tok",
	Status:      session.StatusAuthenticated,
}

type fixture struct {
	router   http.Handler
	sessions *fakeSessions
	content  *fakeContent
}

func newFixture(t *testing.T, s session.Session) *fixture {
	t.Helper()
	cookies, err := cookie.New([]string{"0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)

	f := &fixture{sessions: newFakeSessions(s), content: newFakeContent()}
	t.Cleanup(func() { _ = f.sessions.stream.Close() })
	themes := theme.NewStore(cookies, theme.WithLogger(logger.Discard()))
	svc := pages.NewService(f.sessions, f.content, themes, pages.WithLogger(logger.Discard()))

	all := svc.Pages()
	stub := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	for _, name := range []string{routes.Login, routes.Register, routes.ForgetPassword, routes.Upgrade} {
		all[name] = stub
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
		})
	})
	r.Use(themes.Middleware)
	svc.Routes(r)
	require.NoError(t, routes.Mount(r, all, nil))
	f.router = r
	return f
}

func (f *fixture) post(path string, form url.Values, datastar bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if datastar {
		req.Header.Set("Accept", "text/event-stream")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestPages(t *testing.T) {
	f := newFixture(t, ada)

	tests := []struct {
		path     string
		wantCode int
		want     string
	}{
		{path: "/", wantCode: http.StatusOK, want: `id="navbar"`},
		{path: "/lessons", wantCode: http.StatusOK, want: "Public Lessons"},
		{path: "/lesson-details/42", wantCode: http.StatusOK, want: "42"},
		{path: "/dashboard", wantCode: http.StatusOK, want: "Welcome back, Ada."},
		{path: "/dashboard/profile", wantCode: http.StatusOK, want: `id="profile-card"`},
		{path: "/no/such/page", wantCode: http.StatusNotFound, want: "Go Back Home"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := f.get(tt.path)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestPending(t *testing.T) {
	cookies, err := cookie.New([]string{"0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)
	svc := pages.NewService(newFakeSessions(ada), newFakeContent(), theme.NewStore(cookies), pages.WithLogger(logger.Discard()))

	loading := session.Session{ID: "sess-2", Status: session.StatusLoading}
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req = req.WithContext(session.WithSession(req.Context(), loading))
	rec := httptest.NewRecorder()
	svc.Pending().ServeHTTP(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, "Loading...")
	assert.Contains(t, body, "settle=1")
	assert.Contains(t, body, "from=%2Fdashboard")
}

func TestToggleTheme(t *testing.T) {
	f := newFixture(t, ada)

	req := httptest.NewRequest(http.MethodPost, pages.ThemeTogglePath, nil)
	req.Header.Set("Referer", "http://example.com/lessons")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "http://example.com/lessons", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, theme.CookieName, cookies[0].Name)
	assert.Equal(t, "dark", cookies[0].Value)

	req = httptest.NewRequest(http.MethodPost, pages.ThemeTogglePath, nil)
	req.Header.Set("Accept", "text/event-stream")
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, "classList.toggle('dark', false)")
	assert.Contains(t, body, `id="theme-toggle"`)
	assert.Contains(t, body, "Switch to dark theme")
}

func postProfile(form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, routes.ProfilePath, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/event-stream")
	return req
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t, ada)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, postProfile(url.Values{"name": {" <i>Ada</i> King "}}))

	body := rec.Body.String()
	assert.Contains(t, body, "Profile updated successfully!")
	assert.Contains(t, body, "Ada King")
	assert.Contains(t, body, "Saving…")
	require.Len(t, f.sessions.patches, 1)
	require.NotNil(t, f.sessions.patches[0].DisplayName)
	assert.Equal(t, "Ada King", *f.sessions.patches[0].DisplayName)
	assert.Nil(t, f.sessions.patches[0].AvatarURL)
}

func TestUpdateProfile_Rejected(t *testing.T) {
	tests := []struct {
		name string
		sess session.Session
		form url.Values
		want string
	}{
		{name: "empty form", sess: ada, form: url.Values{}, want: "Nothing to update"},
		{name: "unsafe photo", sess: ada, form: url.Values{"photo_url": {"javascript:alert(1)"}}, want: "Please enter a valid image URL"},
		{name: "signed out", sess: session.Session{ID: "sess-1", Status: session.StatusAnonymous}, form: url.Values{"name": {"Ada"}}, want: "unauthorized"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.sess)
			rec := httptest.NewRecorder()
			f.router.ServeHTTP(rec, postProfile(tt.form))

			assert.Contains(t, rec.Body.String(), tt.want)
			assert.Empty(t, f.sessions.patches)
		})
	}
}

// streamRecorder is a ResponseWriter safe to read while a stream writes.
type streamRecorder struct {
	header http.Header
	mu     sync.Mutex
	body   bytes.Buffer
}

func newStreamRecorder() *streamRecorder { return &streamRecorder{header: make(http.Header)} }

func (r *streamRecorder) Header() http.Header { return r.header }
func (r *streamRecorder) WriteHeader(int)     {}
func (r *streamRecorder) Flush()              {}

func (r *streamRecorder) Write(b []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.Write(b)
}

func (r *streamRecorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.String()
}

func openStream(t *testing.T, f *fixture, query string) (*streamRecorder, context.CancelFunc, <-chan struct{}) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/session/events?"+query, nil).WithContext(ctx)
	req.Header.Set("Accept", "text/event-stream")

	rec := newStreamRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.router.ServeHTTP(rec, req)
	}()
	select {
	case <-f.sessions.subscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not subscribe")
	}
	return rec, cancel, done
}

func TestSessionEvents(t *testing.T) {
	f := newFixture(t, ada)
	rec, cancel, done := openStream(t, f, "from=%2Fdashboard%2Fprofile")

	require.Eventually(t, func() bool { return strings.Contains(rec.String(), `id="user-menu"`) }, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, rec.String(), `id="profile-card"`)

	other := ada
	other.ID = "sess-other"
	other.DisplayName = "Mallory"
	require.NoError(t, f.sessions.stream.Broadcast(context.Background(), session.Change{Session: other}))

	renamed := ada
	renamed.DisplayName = "Ada King"
	require.NoError(t, f.sessions.stream.Broadcast(context.Background(), session.Change{
		Session: renamed,
		Err:     &session.ProfileSyncError{Op: "update_profile", Err: errors.New("backend down")},
	}))

	require.Eventually(t, func() bool { return strings.Contains(rec.String(), "we&#39;ll keep trying") }, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, rec.String(), "Ada King")
	assert.NotContains(t, rec.String(), "Mallory")

	cancel()
	<-done
}

func TestSessionEvents_Settle(t *testing.T) {
	loading := session.Session{ID: "sess-1", Status: session.StatusLoading}
	f := newFixture(t, loading)
	rec, cancel, done := openStream(t, f, "settle=1&from=%2Fdashboard")
	defer cancel()

	require.NoError(t, f.sessions.stream.Broadcast(context.Background(), session.Change{Session: ada}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("settling stream did not finish")
	}
	assert.Contains(t, rec.String(), "/dashboard")
	assert.NotContains(t, rec.String(), `id="user-menu"`)
}

func TestSessionEvents_SettleReloadsWhenStreamEnds(t *testing.T) {
	loading := session.Session{ID: "sess-1", Status: session.StatusLoading}
	f := newFixture(t, loading)
	rec, cancel, done := openStream(t, f, "settle=1&from=%2Fdashboard")
	defer cancel()

	require.NoError(t, f.sessions.stream.Close())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("settling stream did not finish")
	}
	assert.Contains(t, rec.String(), "/dashboard")
}

func TestSessionEvents_RequiresDatastar(t *testing.T) {
	f := newFixture(t, ada)
	rec := f.get("/session/events")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
