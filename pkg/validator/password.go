package validator

import "unicode"

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// StrongPassword reports whether s has an upper case letter, a lower case
// letter and at least MinPasswordLength characters.
func StrongPassword(s string) bool {
	var upper, lower bool
	n := 0
	for _, r := range s {
		n++
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		}
	}
	return upper && lower && n >= MinPasswordLength
}
