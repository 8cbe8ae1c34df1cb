package auth

import (
	"strings"
)

// Normalize trims the request fields and defaults the display name to the
// username.
func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	if r.DisplayName == "" {
		r.DisplayName = r.Username
	}
}

func (r *LoginRequest) Normalize() {
	r.Login = strings.TrimSpace(r.Login)
}
