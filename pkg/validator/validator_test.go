package validator_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/validator"
)

type registerForm struct {
	Name     string `form:"name" validate:"required" msg:"All fields are required!"`
	Email    string `form:"email" validate:"required" msg:"All fields are required!"`
	PhotoURL string `form:"photo_url" validate:"required" msg:"All fields are required!"`
	Password string `form:"password" validate:"required,password" msg:"Password doesn't meet all requirements!"`
}

type plainForm struct {
	Email string `form:"email" validate:"required,email"`
	Bio   string `validate:"max=5"`
}

func TestStruct(t *testing.T) {
	t.Parallel()

	valid := registerForm{Name: "Ada", Email: "ada@example.com", PhotoURL: "https://img/ada.png", Password: "Secret1"}
	assert.NoError(t, validator.Struct(valid))
	assert.NoError(t, validator.Struct(&valid))

	tests := []struct {
		name      string
		form      registerForm
		wantField string
		wantMsg   string
	}{
		{name: "missing name", form: registerForm{Email: "a@b.c", PhotoURL: "p", Password: "Secret1"}, wantField: "name", wantMsg: "All fields are required!"},
		{name: "weak password", form: registerForm{Name: "A", Email: "a@b.c", PhotoURL: "p", Password: "secret"}, wantField: "password", wantMsg: "Password doesn't meet all requirements!"},
		{name: "empty form reports first field", form: registerForm{}, wantField: "name", wantMsg: "All fields are required!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := validator.Struct(tt.form)
			ve := validator.Extract(err)
			require.NotNil(t, ve)
			assert.Equal(t, tt.wantField, ve[0].Field)
			assert.Equal(t, tt.wantMsg, ve.UserMessage())
		})
	}
}

func TestStruct_DefaultMessages(t *testing.T) {
	t.Parallel()

	err := validator.Struct(plainForm{Email: "nope", Bio: "too long"})
	ve := validator.Extract(err)
	require.Len(t, ve, 2)
	assert.Equal(t, []string{"email", "bio"}, ve.Fields())
	assert.Equal(t, []string{"must be a valid email address"}, ve.Get("email"))
	assert.Equal(t, "max", ve[1].Tag)
	assert.True(t, ve.Has("bio"))
	assert.False(t, ve.Has("name"))
	assert.Contains(t, err.Error(), "email: must be a valid email address")
}

func TestExtract(t *testing.T) {
	t.Parallel()

	assert.Nil(t, validator.Extract(nil))
	assert.Nil(t, validator.Extract(errors.New("other")))

	wrapped := fmt.Errorf("register: %w", validator.ValidationErrors{{Field: "email", Message: "Please enter your email"}})
	assert.Equal(t, "Please enter your email", validator.Extract(wrapped).UserMessage())
	assert.Equal(t, "Validation failed", validator.ValidationErrors{}.UserMessage())
}

func TestStrongPassword(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"Secret1": true,
		"Abcdef":  true,
		"abcdef":  false,
		"ABCDEF":  false,
		"Abcde":   false,
		"":        false,
		"Ñandúes": true,
	}
	for pw, want := range cases {
		assert.Equal(t, want, validator.StrongPassword(pw), pw)
	}
}
