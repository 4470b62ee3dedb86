package checkin

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/diedornot/lifecheck/pkg/apiresponses"
	"github.com/diedornot/lifecheck/pkg/store"
)

// Controller exposes the check-in write path and its read-only UI support
// endpoints.
type Controller struct {
	log    *zap.SugaredLogger
	ledger *Ledger
}

func NewController(log *zap.SugaredLogger, ledger *Ledger) *Controller {
	return &Controller{log: log, ledger: ledger}
}

func (Controller) BasePath() string {
	return "checkin/"
}

func (ct *Controller) Register(rg *gin.RouterGroup) error {
	rg.POST("", ct.handleRecordCheckIn)
	rg.GET("/today", ct.handleHasCheckedInToday)
	rg.GET("/history", ct.handleHistory)
	return nil
}

func (ct *Controller) Handlers() []gin.HandlerFunc {
	return nil
}

func (ct *Controller) handleRecordCheckIn(c *gin.Context) {
	type checkInRequest struct {
		UserID string     `json:"userId"`
		Date   store.Date `json:"date"`
	}

	request := checkInRequest{}
	if err := json.NewDecoder(c.Request.Body).Decode(&request); err != nil {
		ct.log.Debugw("Error while decoding check-in body", "error", err)
		apiresponses.RespondBadRequest(c, "invalid request body")
		return
	}
	if request.UserID == "" {
		apiresponses.RespondBadRequest(c, "userId is required")
		return
	}
	// Clients report their own "today" in the canonical time zone; the
	// server never substitutes its clock here.
	if request.Date.IsZero() {
		apiresponses.RespondBadRequest(c, "date is required")
		return
	}

	ci, err := ct.ledger.RecordCheckIn(c.Request.Context(), request.UserID, request.Date)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateCheckIn) {
			apiresponses.RespondConflict(c, "already checked in today")
			return
		}
		apiresponses.RespondInternalError(c, "record check-in", err, ct.log)
		return
	}

	c.JSON(http.StatusCreated, ci)
}

func (ct *Controller) handleHasCheckedInToday(c *gin.Context) {
	userID := c.Query("userId")
	rawDate := c.Query("date")
	if userID == "" || rawDate == "" {
		apiresponses.RespondBadRequest(c, "userId and date are required")
		return
	}
	date, err := store.ParseDate(rawDate)
	if err != nil {
		apiresponses.RespondBadRequest(c, "date must be in YYYY-MM-DD form")
		return
	}

	checked, err := ct.ledger.HasCheckedInToday(c.Request.Context(), userID, date)
	if err != nil {
		apiresponses.RespondInternalError(c, "query today's check-in", err, ct.log)
		return
	}

	c.JSON(http.StatusOK, gin.H{"checkedIn": checked})
}

func (ct *Controller) handleHistory(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		apiresponses.RespondBadRequest(c, "userId is required")
		return
	}

	checkIns, err := ct.ledger.History(c.Request.Context(), userID)
	if err != nil {
		apiresponses.RespondInternalError(c, "list check-ins", err, ct.log)
		return
	}
	if checkIns == nil {
		checkIns = []store.CheckIn{}
	}

	c.JSON(http.StatusOK, checkIns)
}
