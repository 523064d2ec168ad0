package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/policy-tracker-backend/internal/services"
	"github.com/tbourn/policy-tracker-backend/internal/utils"
)

// maxWindowDays bounds ?days= on the dashboard.
const maxWindowDays = 365

// Dashboard godoc
// @ID          dashboard
// @Summary     Expiring policies
// @Description Policies whose end date falls within the next N days (default: the configured window), soonest first. state is "empty" when there are none; a store failure is a 503, never an empty list.
// @Tags        Views
// @Produce     json
// @Security    BearerAuth
// @Param       days   query  int     false  "Window in days"  minimum(0) maximum(365)
// @Param       as_of  query  string  false  "Reference date (YYYY-MM-DD), default today"
// @Success     200  {object}  views.Dashboard
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     503  {object}  handlers.ErrorResponse
// @Router      /dashboard [get]
func (h *Handlers) Dashboard(c *gin.Context) {
	asOf, err := h.asOf(c)
	if err != nil {
		failErr(c, err)
		return
	}
	days := -1
	if raw := c.Query("days"); raw != "" {
		days = utils.AtoiDefault(raw, -1)
		if days < 0 || days > maxWindowDays {
			failErr(c, &services.ValidationError{Field: "days", Reason: "must be an integer between 0 and 365"})
			return
		}
	}

	v, err := h.views.Dashboard(c.Request.Context(), owner(c), days, asOf)
	if gone(c) {
		return
	}
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, v)
}

// Calendar godoc
// @ID          calendar
// @Summary     Policies by end date
// @Description Every policy of the agent grouped by end date, earliest first, with a dd.MM.yyyy label per day.
// @Tags        Views
// @Produce     json
// @Security    BearerAuth
// @Param       as_of  query  string  false  "Reference date (YYYY-MM-DD), default today"
// @Success     200  {object}  views.Calendar
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     503  {object}  handlers.ErrorResponse
// @Router      /calendar [get]
func (h *Handlers) Calendar(c *gin.Context) {
	asOf, err := h.asOf(c)
	if err != nil {
		failErr(c, err)
		return
	}
	v, err := h.views.Calendar(c.Request.Context(), owner(c), asOf)
	if gone(c) {
		return
	}
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, v)
}

// Reminders godoc
// @ID          reminders
// @Summary     Renewal reminders
// @Description One line per policy ending within the configured window, e.g. "Ahmet Yılmaz – Kasko bitiyor (3 gün kaldı)". Nothing is sent.
// @Tags        Views
// @Produce     json
// @Security    BearerAuth
// @Param       as_of  query  string  false  "Reference date (YYYY-MM-DD), default today"
// @Success     200  {object}  views.Reminders
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     503  {object}  handlers.ErrorResponse
// @Router      /reminders [get]
func (h *Handlers) Reminders(c *gin.Context) {
	asOf, err := h.asOf(c)
	if err != nil {
		failErr(c, err)
		return
	}
	v, err := h.views.Reminders(c.Request.Context(), owner(c), asOf)
	if gone(c) {
		return
	}
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, v)
}
