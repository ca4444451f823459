package pages_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/backend"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/routes"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
	"github.com/ferdaws-ahmed/wisdomvault/views"
)

var root = session.Session{
	ID:          "sess-9",
	Identity:    "uid-root",
	DisplayName: "Root",
	Email:       "root@example.com",
	Role:        session.RoleAdmin,
	AuthToken:   "admin-tok",
	Status:      session.StatusAuthenticated,
}

func TestManageUsers(t *testing.T) {
	f := newFixture(t, root)

	body := f.get(routes.ManageUsersPath).Body.String()
	assert.Contains(t, body, "ada@example.com")
	assert.Contains(t, body, "Make Premium")
	assert.NotContains(t, body, `id="role-root@example.com"`, "no actions on the admin's own row")

	rec := f.post(views.AccountRolePath, url.Values{"email": {"ada@example.com"}, "role": {"premium"}}, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, routes.ManageUsersPath, rec.Header().Get("Location"))
	assert.Equal(t, map[string]string{"ada@example.com": "premium"}, f.content.roles)
	assert.Contains(t, f.content.tokens, "admin-tok")

	rec = f.post(views.AccountDeletePath, url.Values{"email": {"ada@example.com"}}, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, []string{"ada@example.com"}, f.content.deleted)
}

func TestManageUsers_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		sess     session.Session
		path     string
		form     url.Values
		wantCode int
	}{
		{name: "member sets role", sess: ada, path: views.AccountRolePath, form: url.Values{"email": {"ada@example.com"}, "role": {"premium"}}, wantCode: http.StatusForbidden},
		{name: "member deletes account", sess: ada, path: views.AccountDeletePath, form: url.Values{"email": {"root@example.com"}}, wantCode: http.StatusForbidden},
		{name: "signed out", sess: session.Session{ID: "sess-1", Status: session.StatusAnonymous}, path: views.AccountRolePath, form: url.Values{"email": {"ada@example.com"}, "role": {"premium"}}, wantCode: http.StatusUnauthorized},
		{name: "admin grant", sess: root, path: views.AccountRolePath, form: url.Values{"email": {"ada@example.com"}, "role": {"admin"}}, wantCode: http.StatusBadRequest},
		{name: "own role", sess: root, path: views.AccountRolePath, form: url.Values{"email": {"root@example.com"}, "role": {"user"}}, wantCode: http.StatusBadRequest},
		{name: "own account", sess: root, path: views.AccountDeletePath, form: url.Values{"email": {"root@example.com"}}, wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.sess)
			rec := f.post(tt.path, tt.form, false)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Empty(t, f.content.roles)
			assert.Empty(t, f.content.deleted)
		})
	}
}

func TestManageLessons(t *testing.T) {
	f := newFixture(t, root)

	body := f.get(routes.ManageLessonsPath).Body.String()
	assert.Contains(t, body, "Make Free", "premium lesson offers the free switch")
	assert.Contains(t, body, "Make Premium")

	rec := f.post(views.LessonAccessPath, url.Values{"id": {"42"}, "access_level": {backend.AccessFree}}, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, map[string]string{"42": backend.AccessFree}, f.content.access)

	rec = f.post(views.LessonDeletePath, url.Values{"id": {"43"}}, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, []string{"43"}, f.content.deleted)

	member := newFixture(t, ada)
	assert.Equal(t, http.StatusForbidden, member.get(routes.ManageLessonsPath).Code)
	assert.Equal(t, http.StatusForbidden, member.post(views.LessonDeletePath, url.Values{"id": {"43"}}, false).Code)
	assert.Empty(t, member.content.deleted)
}
