package backend

import (
	"context"
	"net/http"
	"net/url"
)

// Access levels of a lesson.
const (
	AccessFree    = "free"
	AccessPremium = "premium"
)

// Creator is the author block embedded in a lesson.
type Creator struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo"`
}

// Lesson is a published life lesson.
type Lesson struct {
	ID               string  `json:"_id"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	ShortDescription string  `json:"shortDescription"`
	Category         string  `json:"category"`
	EmotionalTone    string  `json:"emotionalTone"`
	Image            string  `json:"image"`
	Visibility       string  `json:"visibility"`
	AccessLevel      string  `json:"accessLevel"`
	Creator          Creator `json:"creator"`
	CreatedAt        string  `json:"createdAt"`
	LikesCount       int     `json:"likesCount"`
	FavoritesCount   int     `json:"favoritesCount"`
}

// IsPremium reports whether only premium members may read the lesson.
func (l Lesson) IsPremium() bool { return l.AccessLevel == AccessPremium }

// NewLesson is the body of POST /dashboard/add-lesson.
type NewLesson struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Category       string  `json:"category"`
	EmotionalTone  string  `json:"emotionalTone"`
	Image          string  `json:"image"`
	Visibility     string  `json:"visibility"`
	AccessLevel    string  `json:"accessLevel"`
	Creator        Creator `json:"creator"`
	CreatedAt      string  `json:"createdAt"`
	LikesCount     int     `json:"likesCount"`
	FavoritesCount int     `json:"favoritesCount"`
}

// Contributor is one entry of the top contributors ranking. ID is the
// contributor's display name as grouped by the backend.
type Contributor struct {
	ID             string `json:"_id"`
	Photo          string `json:"photo"`
	TotalLessons   int    `json:"totalLessons"`
	TotalLikes     int    `json:"totalLikes"`
	TotalFavorites int    `json:"totalFavorites"`
	Score          int    `json:"score"`
}

// CommunityStats are the site wide totals shown on the home page.
type CommunityStats struct {
	TotalLessons    int `json:"totalLessons"`
	TotalUsers      int `json:"totalUsers"`
	TotalFavorites  int `json:"totalFavorites"`
	TotalCategories int `json:"totalCategories"`
}

// Lessons lists the public lessons (GET /lessons).
func (c *Client) Lessons(ctx context.Context) ([]Lesson, error) {
	var out []Lesson
	err := c.do(ctx, call{
		op:         "list_lessons",
		method:     http.MethodGet,
		path:       "/lessons",
		idempotent: true,
	}, &out)
	return out, err
}

// Lesson finds one public lesson by ID. A lesson missing from the list is
// reported as a 404 RequestError.
func (c *Client) Lesson(ctx context.Context, id string) (Lesson, error) {
	all, err := c.Lessons(ctx)
	if err != nil {
		return Lesson{}, err
	}
	for _, l := range all {
		if l.ID == id {
			return l, nil
		}
	}
	return Lesson{}, &RequestError{Op: "get_lesson", Status: http.StatusNotFound, Message: "lesson not found"}
}

// TopContributors fetches GET /top-contributors.
func (c *Client) TopContributors(ctx context.Context) ([]Contributor, error) {
	var out []Contributor
	err := c.do(ctx, call{
		op:         "top_contributors",
		method:     http.MethodGet,
		path:       "/top-contributors",
		idempotent: true,
	}, &out)
	return out, err
}

// CommunityStats fetches GET /community-stats.
func (c *Client) CommunityStats(ctx context.Context) (CommunityStats, error) {
	var out CommunityStats
	err := c.do(ctx, call{
		op:         "community_stats",
		method:     http.MethodGet,
		path:       "/community-stats",
		idempotent: true,
	}, &out)
	return out, err
}

// AddLesson publishes a lesson. Not retried: a repeat would publish twice.
func (c *Client) AddLesson(ctx context.Context, token string, l NewLesson) error {
	return c.do(ctx, call{
		op:     "add_lesson",
		method: http.MethodPost,
		path:   "/dashboard/add-lesson",
		token:  token,
		body:   l,
	}, nil)
}

// MyLessons lists the lessons of the token's owner.
func (c *Client) MyLessons(ctx context.Context, token string) ([]Lesson, error) {
	var out []Lesson
	err := c.do(ctx, call{
		op:         "my_lessons",
		method:     http.MethodGet,
		path:       "/dashboard/my-lessons",
		token:      token,
		idempotent: true,
	}, &out)
	return out, err
}

// DeleteMyLesson removes one of the token owner's lessons.
func (c *Client) DeleteMyLesson(ctx context.Context, token, id string) error {
	return c.do(ctx, call{
		op:         "delete_my_lesson",
		method:     http.MethodDelete,
		path:       "/dashboard/my-lessons/" + url.PathEscape(id),
		token:      token,
		idempotent: true,
	}, nil)
}
