package reviews

import (
	"strings"

	"github.com/Conversly/tripshare/internal/types"
	"github.com/Conversly/tripshare/internal/utils"
)

// Apply copies the sent fields onto r.
func (req UpdateReviewRequest) Apply(r *types.Review) error {
	if req.Rating == nil && req.Body == nil {
		return utils.BadRequest("nothing to update")
	}
	if req.Rating != nil {
		r.Rating = *req.Rating
	}
	if req.Body != nil {
		r.Body = strings.TrimSpace(*req.Body)
	}
	return nil
}
