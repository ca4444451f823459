package backend

import (
	"context"
	"net/http"
	"net/url"
)

// Account is a user as listed to administrators.
type Account struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type successResult struct {
	Success bool `json:"success"`
}

// Accounts lists every user (GET /admin/manage-users).
func (c *Client) Accounts(ctx context.Context, token string) ([]Account, error) {
	var out []Account
	err := c.do(ctx, call{
		op:         "list_accounts",
		method:     http.MethodGet,
		path:       "/admin/manage-users",
		token:      token,
		idempotent: true,
	}, &out)
	return out, err
}

// SetRole changes the role of the account with email.
func (c *Client) SetRole(ctx context.Context, token, email, role string) error {
	var res successResult
	if err := c.do(ctx, call{
		op:         "set_role",
		method:     http.MethodPatch,
		path:       "/admin/users/role/" + url.PathEscape(email),
		token:      token,
		body:       map[string]string{"role": role},
		idempotent: true,
	}, &res); err != nil {
		return err
	}
	if !res.Success {
		return &RequestError{Op: "set_role", Status: http.StatusOK, Err: ErrNotUpdated}
	}
	return nil
}

// DeleteAccount removes the account with email.
func (c *Client) DeleteAccount(ctx context.Context, token, email string) error {
	return c.do(ctx, call{
		op:         "delete_account",
		method:     http.MethodDelete,
		path:       "/admin/users/" + url.PathEscape(email),
		token:      token,
		idempotent: true,
	}, nil)
}

// AllLessons lists every lesson regardless of visibility
// (GET /admin/manage-lessons).
func (c *Client) AllLessons(ctx context.Context, token string) ([]Lesson, error) {
	var out []Lesson
	err := c.do(ctx, call{
		op:         "list_all_lessons",
		method:     http.MethodGet,
		path:       "/admin/manage-lessons",
		token:      token,
		idempotent: true,
	}, &out)
	return out, err
}

// SetLessonAccess switches a lesson between free and premium.
func (c *Client) SetLessonAccess(ctx context.Context, token, id, access string) error {
	var res successResult
	if err := c.do(ctx, call{
		op:         "set_lesson_access",
		method:     http.MethodPatch,
		path:       "/admin/lessons/access/" + url.PathEscape(id),
		token:      token,
		body:       map[string]string{"accessLevel": access},
		idempotent: true,
	}, &res); err != nil {
		return err
	}
	if !res.Success {
		return &RequestError{Op: "set_lesson_access", Status: http.StatusOK, Err: ErrNotUpdated}
	}
	return nil
}

// DeleteLesson removes any lesson.
func (c *Client) DeleteLesson(ctx context.Context, token, id string) error {
	return c.do(ctx, call{
		op:         "delete_lesson",
		method:     http.MethodDelete,
		path:       "/admin/lessons/" + url.PathEscape(id),
		token:      token,
		idempotent: true,
	}, nil)
}
