// Package routes is the static route table of the web front.
//
// The table maps URL patterns to views and their layout shell, and carries
// the access requirements the guard checks. It is built once and never
// changes at runtime.
package routes

import (
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
)

// Layout is the shell a view renders in.
type Layout string

const (
	LayoutMain      Layout = "main"
	LayoutDashboard Layout = "dashboard"
	LayoutBare      Layout = "bare"
)

// Well known paths.
const (
	HomePath           = "/"
	LoginPath          = "/login"
	RegisterPath       = "/register"
	ForgetPasswordPath = "/forget-password"
	UpgradePath        = "/upgrade"
	DashboardPath      = "/dashboard"
	AdminPath          = "/dashboard/admin"
	ProfilePath        = "/dashboard/profile"
	LessonsPath        = "/lessons"
	AddLessonPath      = "/dashboard/add-lesson"
	MyLessonsPath      = "/dashboard/my-lessons"
	ManageUsersPath    = "/dashboard/admin/manage-users"
	ManageLessonsPath  = "/dashboard/admin/manage-lesson"
)

// Route names.
const (
	Home            = "home"
	Login           = "login"
	Register        = "register"
	ForgetPassword  = "forget_password"
	Lessons         = "lessons"
	LessonDetails   = "lesson_details"
	Terms           = "terms"
	Privacy         = "privacy"
	Upgrade         = "upgrade"
	Dashboard       = "dashboard"
	AddLesson       = "add_lesson"
	MyLessons       = "my_lessons"
	Profile         = "profile"
	AdminHome       = "admin_home"
	ManageUsers     = "manage_users"
	ManageLessons   = "manage_lessons"
	ReportedLessons = "reported_lessons"
	NotFound        = "not_found"
)

// Route describes one entry of the table.
type Route struct {
	Pattern      string
	Name         string
	View         string
	RequiresAuth bool
	// RequiredRole is empty when any role may view the route.
	RequiredRole session.Role
	Layout       Layout
}

var table = []Route{
	{Pattern: HomePath, Name: Home, View: "Home", Layout: LayoutMain},
	{Pattern: LoginPath, Name: Login, View: "Login", Layout: LayoutMain},
	{Pattern: RegisterPath, Name: Register, View: "Register", Layout: LayoutMain},
	{Pattern: ForgetPasswordPath, Name: ForgetPassword, View: "ForgetPassword", Layout: LayoutMain},
	{Pattern: LessonsPath, Name: Lessons, View: "PublicLessons", Layout: LayoutMain},
	{Pattern: "/lesson-details/{lessonId}", Name: LessonDetails, View: "LessonDetails", Layout: LayoutMain},
	{Pattern: "/terms", Name: Terms, View: "Terms", Layout: LayoutMain},
	{Pattern: "/privacy", Name: Privacy, View: "Privacy", Layout: LayoutMain},
	{Pattern: UpgradePath, Name: Upgrade, View: "Upgrade", RequiresAuth: true, Layout: LayoutMain},

	{Pattern: DashboardPath, Name: Dashboard, View: "UserOverview", RequiresAuth: true, Layout: LayoutDashboard},
	{Pattern: AddLessonPath, Name: AddLesson, View: "AddLesson", RequiresAuth: true, Layout: LayoutDashboard},
	{Pattern: MyLessonsPath, Name: MyLessons, View: "MyLessons", RequiresAuth: true, Layout: LayoutDashboard},
	{Pattern: ProfilePath, Name: Profile, View: "Profile", RequiresAuth: true, Layout: LayoutDashboard},

	{Pattern: AdminPath, Name: AdminHome, View: "AdminOverview", RequiresAuth: true, RequiredRole: session.RoleAdmin, Layout: LayoutDashboard},
	{Pattern: ManageUsersPath, Name: ManageUsers, View: "ManageUsers", RequiresAuth: true, RequiredRole: session.RoleAdmin, Layout: LayoutDashboard},
	{Pattern: ManageLessonsPath, Name: ManageLessons, View: "ManageLessons", RequiresAuth: true, RequiredRole: session.RoleAdmin, Layout: LayoutDashboard},
	{Pattern: "/dashboard/admin/reported-lessons", Name: ReportedLessons, View: "ReportedLessons", RequiresAuth: true, RequiredRole: session.RoleAdmin, Layout: LayoutDashboard},
}

// CatchAll is the route for any path not in the table.
var CatchAll = Route{Pattern: "/*", Name: NotFound, View: "ErrorPage", Layout: LayoutBare}

var byName = func() map[string]Route {
	m := make(map[string]Route, len(table)+1)
	for _, r := range table {
		m[r.Name] = r
	}
	m[CatchAll.Name] = CatchAll
	return m
}()

// Table returns a copy of the route table in declaration order.
func Table() []Route {
	out := make([]Route, len(table))
	copy(out, table)
	return out
}

// Lookup returns the route named name.
func Lookup(name string) (Route, bool) {
	r, ok := byName[name]
	return r, ok
}

// MustLookup is Lookup for names known at compile time.
func MustLookup(name string) Route {
	r, ok := Lookup(name)
	if !ok {
		panic("routes: unknown route " + name)
	}
	return r
}

// Landing is the default dashboard for s: the admin overview for admins and
// the general dashboard for everyone else.
func Landing(s session.Session) string {
	if s.IsAdmin() {
		return AdminPath
	}
	return DashboardPath
}
