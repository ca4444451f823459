package views

import (
	"context"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/backend"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/routes"
	"github.com/ferdaws-ahmed/wisdomvault/pkg/session"
)

// Form actions of the lesson and admin pages.
const (
	MyLessonDeletePath = routes.MyLessonsPath + "/delete"
	AccountRolePath    = routes.ManageUsersPath + "/role"
	AccountDeletePath  = routes.ManageUsersPath + "/delete"
	LessonAccessPath   = routes.ManageLessonsPath + "/access"
	LessonDeletePath   = routes.ManageLessonsPath + "/delete"
)

// Lesson form choices.
var (
	LessonCategories = []string{"Personal Growth", "Career", "Relationships", "Mindset", "Mistakes Learned"}
	EmotionalTones   = []string{"Motivational", "Sad", "Realization", "Gratitude"}
)

// HomeParams is the data of the home page. Missing feeds are left out.
type HomeParams struct {
	Contributors []backend.Contributor
	Stats        *backend.CommunityStats
}

// PublicLessonsParams is the data of the public lessons page.
type PublicLessonsParams struct {
	Session    session.Session
	Lessons    []backend.Lesson
	Query      string
	Category   string
	Categories []string
}

// LessonParams is the data of the lesson details page.
type LessonParams struct {
	Lesson backend.Lesson
	Locked bool
}

// AddLessonParams holds the values of the add lesson form.
type AddLessonParams struct {
	Title         string
	Description   string
	Category      string
	EmotionalTone string
	Image         string
	Visibility    string
	AccessLevel   string
	// Premium enables the premium access level.
	Premium bool
}

func textarea(h *html, label, name, value string) {
	h.raw("<label>")
	h.text(label)
	h.open("textarea", "name", name, "rows", "6")
	h.text(value)
	h.raw("</textarea></label>")
}

func choice(h *html, label, name, value string, options []string, disabled ...string) {
	h.raw("<label>")
	h.text(label)
	h.open("select", "name", name)
	for _, o := range options {
		attrs := []string{"value", o}
		if o == value {
			attrs = append(attrs, "selected", "")
		}
		for _, d := range disabled {
			if o == d {
				attrs = append(attrs, "disabled", "")
			}
		}
		h.el("option", o, attrs...)
	}
	h.raw("</select></label>")
}

func hidden(h *html, name, value string) {
	h.open("input", "type", "hidden", "name", name, "value", value)
}

// rowForm is a one-button form acting on a single table row.
func rowForm(h *html, id, action, label string, fields ...string) {
	form(h, id, action)
	for i := 0; i+1 < len(fields); i += 2 {
		hidden(h, fields[i], fields[i+1])
	}
	h.el("button", label, "type", "submit")
	h.close("form")
}

func Home(p HomeParams) templ.Component {
	return section("home", "Wisdom worth keeping", "Short life lessons shared by people who learned them the hard way.", func(h *html) {
		h.raw(`<div class="actions">`)
		h.link(routes.LessonsPath, "Browse Public Lessons", "class", "button")
		h.link(routes.AddLessonPath, "Share a Lesson", "class", "button secondary")
		h.raw("</div>")
		h.el("h2", "Why learning from life matters")
		h.raw("<ul>")
		for _, s := range []string{
			"Lessons are written by real people, not algorithms.",
			"Save what resonates and come back to it.",
			"Premium members publish without limits.",
		} {
			h.el("li", s)
		}
		h.raw("</ul>")

		if len(p.Contributors) > 0 {
			h.raw(`<div id="top-contributors">`)
			h.el("h2", "Top Contributors")
			h.raw("<ol>")
			for _, c := range p.Contributors {
				h.raw("<li>")
				if c.Photo != "" {
					h.raw(`<img width="48" height="48"`)
					h.href("src", c.Photo)
					h.attr("alt", c.ID)
					h.raw(">")
				}
				h.el("strong", c.ID)
				h.el("span", printer.Sprintf("%d lessons, %d likes, %d favorites", c.TotalLessons, c.TotalLikes, c.TotalFavorites))
				h.el("span", "Score "+strconv.Itoa(c.Score), "class", "badge")
				h.raw("</li>")
			}
			h.raw("</ol></div>")
		}

		if p.Stats != nil {
			h.raw(`<div id="community-impact">`)
			h.el("h2", "Community Impact")
			h.raw(`<dl class="stats">`)
			for _, st := range []struct {
				label string
				value int
			}{
				{"Lessons", p.Stats.TotalLessons},
				{"Contributors", p.Stats.TotalUsers},
				{"Favorites", p.Stats.TotalFavorites},
				{"Categories", p.Stats.TotalCategories},
			} {
				h.el("dt", st.label)
				h.el("dd", printer.Sprintf("%d", st.value))
			}
			h.raw("</dl></div>")
		}
	})
}

// LessonLocked reports whether s may not read l.
func LessonLocked(l backend.Lesson, s session.Session) bool {
	return l.IsPremium() && !s.IsPremium && !s.IsAdmin()
}

func lessonCard(h *html, l backend.Lesson, s session.Session) {
	h.open("article", "class", "lesson-card", "data-lesson-id", l.ID)
	if l.Image != "" {
		h.raw(`<img loading="lazy"`)
		h.href("src", l.Image)
		h.attr("alt", l.Title)
		h.raw(">")
	}
	h.el("h3", l.Title)
	if l.ShortDescription != "" {
		h.el("p", l.ShortDescription)
	}
	h.raw(`<div class="tags">`)
	for _, tag := range []string{l.Category, l.EmotionalTone} {
		if tag != "" {
			h.el("span", tag, "class", "badge")
		}
	}
	if l.IsPremium() {
		h.el("span", "Premium", "class", "badge premium")
	}
	h.raw("</div>")
	if l.Creator.Name != "" {
		h.el("p", "By "+l.Creator.Name, "class", "creator")
	}
	if LessonLocked(l, s) {
		h.link(routes.UpgradePath, "Upgrade to View", "class", "button")
	} else {
		h.link("/lesson-details/"+l.ID, "See Details", "class", "button")
	}
	h.close("article")
}

func PublicLessons(p PublicLessonsParams) templ.Component {
	return section("lessons", "Public Lessons", "Lessons shared openly by the community.", func(h *html) {
		h.raw(`<form method="get" class="filters"`)
		h.href("action", routes.LessonsPath)
		h.raw(">")
		input(h, "Search", "search", "q", p.Query, "placeholder", "Search by title...")
		choice(h, "Category", "category", p.Category, append([]string{"All"}, p.Categories...))
		h.raw(`<button type="submit">Filter</button></form>`)

		if len(p.Lessons) == 0 {
			h.el("p", "No lessons match your search.", "class", "empty")
			return
		}
		h.raw(`<div class="lesson-grid">`)
		for _, l := range p.Lessons {
			lessonCard(h, l, p.Session)
		}
		h.raw("</div>")
	})
}

func LessonDetails(p LessonParams) templ.Component {
	l := p.Lesson
	return section("lesson-details", l.Title, "", func(h *html) {
		h.open("article", "data-lesson-id", l.ID)
		if p.Locked {
			h.el("p", "This lesson is for premium members.")
			h.link(routes.UpgradePath, "Upgrade to View", "class", "button")
		} else {
			if l.Image != "" {
				h.raw("<img")
				h.href("src", l.Image)
				h.attr("alt", l.Title)
				h.raw(">")
			}
			for _, para := range strings.Split(l.Description, "\n") {
				if para = strings.TrimSpace(para); para != "" {
					h.el("p", para)
				}
			}
		}
		h.raw(`<dl class="meta">`)
		for _, kv := range [][2]string{
			{"Category", l.Category},
			{"Tone", l.EmotionalTone},
			{"Author", l.Creator.Name},
			{"Likes", strconv.Itoa(l.LikesCount)},
			{"Favorites", strconv.Itoa(l.FavoritesCount)},
		} {
			if kv[1] == "" {
				continue
			}
			h.el("dt", kv[0])
			h.el("dd", kv[1])
		}
		h.raw("</dl>")
		h.close("article")
		h.link(routes.LessonsPath, "Back to lessons")
	})
}

// AddLessonForm is the lesson editor. It is patched back empty after a
// successful post.
func AddLessonForm(p AddLessonParams) templ.Component {
	return component(func(_ context.Context, h *html) {
		form(h, "add-lesson-form", routes.AddLessonPath)
		input(h, "Lesson Title", "text", "title", p.Title, "placeholder", "Enter lesson title")
		textarea(h, "Full Description / Story / Insight", "description", p.Description)
		choice(h, "Category", "category", p.Category, LessonCategories)
		choice(h, "Emotional Tone", "emotional_tone", p.EmotionalTone, EmotionalTones)
		input(h, "Image URL", "url", "image", p.Image)
		choice(h, "Visibility", "visibility", orDefault(p.Visibility, "public"), []string{"public", "private"})
		var locked []string
		if !p.Premium {
			locked = []string{backend.AccessPremium}
		}
		choice(h, "Access Level", "access_level", orDefault(p.AccessLevel, backend.AccessFree), []string{backend.AccessFree, backend.AccessPremium}, locked...)
		if !p.Premium {
			h.el("p", "Upgrade to Premium to publish premium lessons.", "class", "hint")
		}
		h.raw(`<button type="submit">Add Lesson</button></form>`)
	})
}

func AddLesson(p AddLessonParams) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<section id="add-lesson">`)
		h.el("h1", "Add New Life Lesson")
		h.el("p", "Write down something life taught you.", "class", "lead")
		h.child(ctx, AddLessonForm(p))
		h.raw("</section>")
	})
}

func MyLessons(lessons []backend.Lesson) templ.Component {
	return section("my-lessons", "My Lessons", "Lessons you have published.", func(h *html) {
		if len(lessons) == 0 {
			h.el("p", "You haven't published a lesson yet.", "class", "empty")
			h.link(routes.AddLessonPath, "Share a Lesson", "class", "button")
			return
		}
		h.raw("<table><thead><tr><th>Title</th><th>Visibility</th><th>Access</th><th>Likes</th><th>Favorites</th><th></th></tr></thead><tbody>")
		for _, l := range lessons {
			h.open("tr", "id", "lesson-"+l.ID)
			h.raw("<td>")
			h.link("/lesson-details/"+l.ID, l.Title)
			h.raw("</td>")
			h.el("td", l.Visibility)
			h.el("td", l.AccessLevel)
			h.el("td", strconv.Itoa(l.LikesCount))
			h.el("td", strconv.Itoa(l.FavoritesCount))
			h.raw("<td>")
			rowForm(h, "delete-lesson-"+l.ID, MyLessonDeletePath, "Delete", "id", l.ID)
			h.raw("</td></tr>")
		}
		h.raw("</tbody></table>")
	})
}

func AdminOverview(s session.Session) templ.Component {
	return section("admin-overview", "Admin Overview", "Signed in as "+DisplayName(s)+".", func(h *html) {
		h.raw("<ul>")
		h.raw("<li>")
		h.link(routes.ManageUsersPath, "Manage Users")
		h.raw("</li><li>")
		h.link(routes.ManageLessonsPath, "Manage Lessons")
		h.raw("</li></ul>")
	})
}

// ManageUsers lists accounts with a premium toggle. self is the signed in
// admin, whose row has no actions.
func ManageUsers(accounts []backend.Account, self string) templ.Component {
	return section("manage-users", "Manage Users", "Review accounts and roles.", func(h *html) {
		if len(accounts) == 0 {
			h.el("p", "No users yet.", "class", "empty")
			return
		}
		h.raw("<table><thead><tr><th>Name</th><th>Email</th><th>Role</th><th></th></tr></thead><tbody>")
		for _, a := range accounts {
			h.raw("<tr>")
			h.el("td", orDefault(a.Name, "Anonymous"))
			h.el("td", a.Email)
			h.el("td", RoleLabel(session.Role(a.Role)), "class", "role")
			h.raw("<td>")
			if a.Email != self && session.Role(a.Role) != session.RoleAdmin {
				next, label := session.RolePremium, "Make Premium"
				if session.Role(a.Role) == session.RolePremium {
					next, label = session.RoleUser, "Make User"
				}
				rowForm(h, "role-"+a.Email, AccountRolePath, label, "email", a.Email, "role", string(next))
				rowForm(h, "delete-user-"+a.Email, AccountDeletePath, "Delete", "email", a.Email)
			}
			h.raw("</td></tr>")
		}
		h.raw("</tbody></table>")
	})
}

func ManageLessons(lessons []backend.Lesson) templ.Component {
	return section("manage-lessons", "Manage Lessons", "Edit or remove any lesson.", func(h *html) {
		if len(lessons) == 0 {
			h.el("p", "No lessons yet.", "class", "empty")
			return
		}
		h.raw("<table><thead><tr><th>Title</th><th>Author</th><th>Access</th><th></th></tr></thead><tbody>")
		for _, l := range lessons {
			h.raw("<tr>")
			h.el("td", l.Title)
			h.el("td", l.Creator.Email)
			h.el("td", l.AccessLevel, "class", "access")
			h.raw("<td>")
			next, label := backend.AccessPremium, "Make Premium"
			if l.IsPremium() {
				next, label = backend.AccessFree, "Make Free"
			}
			rowForm(h, "access-"+l.ID, LessonAccessPath, label, "id", l.ID, "access_level", next)
			rowForm(h, "delete-"+l.ID, LessonDeletePath, "Delete", "id", l.ID)
			h.raw("</td></tr>")
		}
		h.raw("</tbody></table>")
	})
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
