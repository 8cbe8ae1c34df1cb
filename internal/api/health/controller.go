package health

import (
	"context"
	"net/http"
	"time"

	"github.com/Conversly/tripshare/internal/types"
	"github.com/Conversly/tripshare/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// SchemaChecker reports the database schema version and the versions the
// service ships that are not applied yet.
type SchemaChecker interface {
	Version(ctx context.Context) (int, error)
	Pending(ctx context.Context) ([]int, error)
}

const readyTimeout = 2 * time.Second

type Controller struct {
	db     Pinger
	schema SchemaChecker
}

func NewController(db Pinger, schema SchemaChecker) *Controller {
	return &Controller{db: db, schema: schema}
}

// Live reports that the process is serving requests.
func (ctrl *Controller) Live(c *gin.Context) {
	c.JSON(http.StatusOK, types.HealthResponse{Status: "ok", Timestamp: time.Now().UTC()})
}

// Ready reports whether the database is reachable and its schema is current.
func (ctrl *Controller) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	if err := ctrl.db.Ping(ctx); err != nil {
		utils.Zlog.Warn("Readiness check failed: database unreachable", zap.Error(err))
		utils.RespondError(c, utils.Unavailable("database is unreachable"))
		return
	}

	resp := types.HealthResponse{Status: "ready", Timestamp: time.Now().UTC()}
	if ctrl.schema != nil {
		pending, err := ctrl.schema.Pending(ctx)
		if err != nil {
			utils.Zlog.Warn("Readiness check failed: schema version unknown", zap.Error(err))
			utils.RespondError(c, utils.Unavailable("schema version is unknown"))
			return
		}
		if len(pending) > 0 {
			utils.RespondError(c, utils.Unavailable("schema is outdated, %d version(s) pending", len(pending)))
			return
		}
		if resp.SchemaVersion, err = ctrl.schema.Version(ctx); err != nil {
			utils.RespondError(c, utils.Unavailable("schema version is unknown"))
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}
