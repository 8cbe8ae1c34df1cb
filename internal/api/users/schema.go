package users

import (
	"strings"

	"github.com/Conversly/tripshare/internal/types"
	"github.com/Conversly/tripshare/internal/utils"
)

const maxSearchLength = 100

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// Patch converts the request into a store patch. An empty request is an
// error; sending "" for avatarUrl or bio clears it.
func (r UpdateProfileRequest) Patch() (types.UserPatch, error) {
	patch := types.UserPatch{
		DisplayName: trimmed(r.DisplayName),
		Bio:         trimmed(r.Bio),
		AvatarURL:   trimmed(r.AvatarURL),
	}
	if patch.DisplayName == nil && patch.Bio == nil && patch.AvatarURL == nil {
		return patch, utils.BadRequest("nothing to update")
	}
	if patch.DisplayName != nil && *patch.DisplayName == "" {
		return patch, utils.BadRequest("displayName cannot be blank")
	}
	return patch, nil
}

// ValidateSearch returns the trimmed search term.
func ValidateSearch(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", utils.BadRequest("q is required")
	}
	if len(q) > maxSearchLength {
		return "", utils.BadRequest("q must be at most %d characters", maxSearchLength)
	}
	return q, nil
}
