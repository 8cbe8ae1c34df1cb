package photos

import (
	"strings"
	"unicode/utf8"

	"github.com/Conversly/tripshare/internal/storage"
	"github.com/Conversly/tripshare/internal/utils"
)

// Validate normalizes the upload and returns the file extension to store it
// under. The declared content type wins; when it is missing or generic the
// file name decides.
func (u *Upload) Validate() (string, error) {
	u.Caption = strings.TrimSpace(u.Caption)
	if utf8.RuneCountInString(u.Caption) > maxCaptionLength {
		return "", utils.BadRequest("caption must be at most %d characters", maxCaptionLength)
	}

	ct := strings.ToLower(strings.TrimSpace(u.ContentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "" || ct == "application/octet-stream" {
		ct = storage.ContentTypeFor(u.Filename)
	}
	ext, ok := storage.ExtensionFor(ct)
	if !ok {
		return "", utils.BadRequest("unsupported content type %q, expected jpeg, png, webp or heic", ct)
	}
	u.ContentType = ct
	return ext, nil
}
