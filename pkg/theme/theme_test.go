package theme_test

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/cookie"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/logger"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/theme"
)

func newStore(t *testing.T, opts ...theme.Option) *theme.Store {
	t.Helper()
	cm, err := cookie.New([]string{"0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)
	return theme.NewStore(cm, opts...)
}

func TestToggle_Involution(t *testing.T) {
	t.Parallel()
	for _, p := range []theme.Preference{theme.Light, theme.Dark} {
		assert.NotEqual(t, p, theme.Toggle(p))
		assert.Equal(t, p, theme.Toggle(theme.Toggle(p)))
	}
}

func TestParse(t *testing.T) {
	t.Parallel()
	assert.Equal(t, theme.Dark, theme.Parse("dark"))
	assert.Equal(t, theme.Light, theme.Parse("light"))
	assert.Equal(t, theme.Light, theme.Parse(""))
	assert.Equal(t, theme.Light, theme.Parse("solarized"))
	assert.Equal(t, "dark", theme.Dark.Class())
	assert.Empty(t, theme.Light.Class())
}

func TestStore_GetAndToggle(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	req := httptest.NewRequest(http.MethodPost, "/theme/toggle", nil)
	assert.Equal(t, theme.Light, s.Get(req), "no cookie reads as light")

	rec := httptest.NewRecorder()
	assert.Equal(t, theme.Dark, s.Toggle(rec, req))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "theme", cookies[0].Name)
	assert.Equal(t, "dark", cookies[0].Value)
	assert.Equal(t, theme.MaxAge, cookies[0].MaxAge)

	req = httptest.NewRequest(http.MethodPost, "/theme/toggle", nil)
	req.AddCookie(cookies[0])
	assert.Equal(t, theme.Dark, s.Get(req))
	assert.Equal(t, theme.Light, s.Toggle(httptest.NewRecorder(), req))
}

type failingPersister struct{}

func (failingPersister) Save(http.ResponseWriter, theme.Preference) error {
	return errors.New("storage unavailable")
}

func TestStore_ToggleWriteFailure(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	s := newStore(t,
		theme.WithPersister(failingPersister{}),
		theme.WithLogger(logger.New(logger.WithFormat(logger.FormatJSON), logger.WithOutput(&logs))),
	)

	req := httptest.NewRequest(http.MethodPost, "/theme/toggle", nil)
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})

	assert.Equal(t, theme.Light, s.Toggle(httptest.NewRecorder(), req), "flipped value is still returned")
	assert.Contains(t, logs.String(), "failed to persist theme")
}

func TestMiddleware(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	var got theme.Preference
	h := s.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = theme.FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, theme.Dark, got)

	assert.Equal(t, theme.Light, theme.FromContext(req.Context()), "missing value is the default")
}
