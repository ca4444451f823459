// Package validator checks bound form structs with go-playground/validator.
//
// Fields are named by their form tag. A msg tag overrides the message shown
// for any failure on that field:
//
//	type loginForm struct {
//		Email    string `form:"email" validate:"required" msg:"Email & Password required!"`
//		Password string `form:"password" validate:"required" msg:"Email & Password required!"`
//	}
//
// The password tag accepts strings with an upper case letter, a lower case
// letter and at least six characters.
package validator
