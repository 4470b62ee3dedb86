// Package users exposes read-only user profile lookups. Profiles are
// created by the external identity bootstrap; this core only reads them.
package users

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/diedornot/lifecheck/pkg/apiresponses"
	"github.com/diedornot/lifecheck/pkg/store"
)

type Controller struct {
	log   *zap.SugaredLogger
	store store.Store
}

func NewController(log *zap.SugaredLogger, st store.Store) *Controller {
	return &Controller{log: log, store: st}
}

func (Controller) BasePath() string {
	return "users/"
}

func (ct *Controller) Register(rg *gin.RouterGroup) error {
	rg.GET("/:id", ct.handleGetUser)
	return nil
}

func (ct *Controller) Handlers() []gin.HandlerFunc {
	return nil
}

func (ct *Controller) handleGetUser(c *gin.Context) {
	id := c.Param("id")

	user, err := ct.store.GetUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			apiresponses.RespondNotFound(c, "user", id)
			return
		}
		apiresponses.RespondInternalError(c, "fetch user", err, ct.log)
		return
	}

	c.JSON(http.StatusOK, user)
}
