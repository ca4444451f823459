package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/routes"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
)

func TestTable(t *testing.T) {
	t.Parallel()

	tbl := routes.Table()
	seen := map[string]bool{}
	for _, r := range tbl {
		assert.False(t, seen[r.Name], "duplicate route %s", r.Name)
		seen[r.Name] = true
		if r.RequiredRole != "" {
			assert.True(t, r.RequiresAuth, "%s has a role but no auth", r.Name)
		}
		if r.Layout == routes.LayoutDashboard {
			assert.True(t, r.RequiresAuth, "dashboard route %s is public", r.Name)
		}
	}

	tbl[0].Pattern = "/mutated"
	assert.Equal(t, "/", routes.Table()[0].Pattern, "Table returns a copy")

	admin := routes.MustLookup(routes.ManageUsers)
	assert.Equal(t, session.RoleAdmin, admin.RequiredRole)
	assert.Equal(t, "/dashboard/admin/manage-users", admin.Pattern)

	_, ok := routes.Lookup("nope")
	assert.False(t, ok)
	assert.Panics(t, func() { routes.MustLookup("nope") })
}

func TestLanding(t *testing.T) {
	t.Parallel()
	admin := session.Session{Status: session.StatusAuthenticated, Identity: "u", AuthToken: "t", Role: session.RoleAdmin}
	user := session.Session{Status: session.StatusAuthenticated, Identity: "u", AuthToken: "t", Role: session.RolePremium}
	assert.Equal(t, routes.AdminPath, routes.Landing(admin))
	assert.Equal(t, routes.DashboardPath, routes.Landing(user))
}

func allPages() routes.Pages {
	pages := routes.Pages{}
	for _, r := range append(routes.Table(), routes.CatchAll) {
		name := r.Name
		pages[name] = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if name == routes.NotFound {
				w.WriteHeader(http.StatusNotFound)
			}
			_, _ = w.Write([]byte(name))
		})
	}
	return pages
}

func TestMount(t *testing.T) {
	t.Parallel()

	var wrapped []string
	r := chi.NewRouter()
	require.NoError(t, routes.Mount(r, allPages(), func(rt routes.Route, h http.Handler) http.Handler {
		wrapped = append(wrapped, rt.Name)
		return h
	}))
	assert.Contains(t, wrapped, routes.NotFound)

	tests := []struct {
		path       string
		wantBody   string
		wantStatus int
	}{
		{"/", routes.Home, http.StatusOK},
		{"/lesson-details/abc123", routes.LessonDetails, http.StatusOK},
		{"/dashboard/admin/reported-lessons", routes.ReportedLessons, http.StatusOK},
		{"/no/such/page", routes.NotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		assert.Equal(t, tt.wantStatus, rec.Code, tt.path)
		assert.Equal(t, tt.wantBody, rec.Body.String(), tt.path)
	}
}

func TestMount_MissingHandler(t *testing.T) {
	t.Parallel()

	pages := allPages()
	delete(pages, routes.Privacy)
	err := routes.Mount(chi.NewRouter(), pages, nil)
	assert.ErrorIs(t, err, routes.ErrMissingHandler)
	assert.Contains(t, err.Error(), routes.Privacy)
}
