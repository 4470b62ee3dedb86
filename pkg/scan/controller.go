package scan

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/diedornot/lifecheck/pkg/apiresponses"
)

// Controller is the trigger surface for an external scheduler. One POST per
// cadence tick; the run's report comes back as JSON. 200 covers completed
// runs including per-user failures, 500 only a run that could not start.
type Controller struct {
	log           *zap.SugaredLogger
	service       *Service
	thresholdDays float64
	now           func() time.Time
}

func NewController(log *zap.SugaredLogger, service *Service, thresholdDays float64,
	now func() time.Time,
) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{log: log, service: service, thresholdDays: thresholdDays, now: now}
}

func (Controller) BasePath() string {
	return "scan/"
}

func (ct *Controller) Register(rg *gin.RouterGroup) error {
	rg.POST("/run", ct.handleRun)
	return nil
}

func (ct *Controller) Handlers() []gin.HandlerFunc {
	return nil
}

func (ct *Controller) handleRun(c *gin.Context) {
	type runRequest struct {
		ThresholdDays float64 `json:"thresholdDays"`
	}

	threshold := ct.thresholdDays
	request := runRequest{}
	if err := json.NewDecoder(c.Request.Body).Decode(&request); err != nil && err != io.EOF {
		apiresponses.RespondBadRequest(c, "invalid request body")
		return
	}
	if request.ThresholdDays > 0 {
		threshold = request.ThresholdDays
	}

	report, err := ct.service.Run(c.Request.Context(), ct.now(), threshold)
	if err != nil {
		apiresponses.RespondInternalError(c, "run escalation scan", err, ct.log)
		return
	}

	c.JSON(http.StatusOK, report)
}
