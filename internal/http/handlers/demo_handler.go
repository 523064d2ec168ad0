package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/policy-tracker-backend/internal/services"
)

// DemoRequestBody is the landing page's "Demo talep et" form.
type DemoRequestBody struct {
	FullName   string `json:"full_name" example:"Mehmet Kaya"`
	AgencyName string `json:"agency_name" example:"Kaya Sigorta"`
	Email      string `json:"email" example:"mehmet@kayasigorta.com"`
	Phone      string `json:"phone" example:"0532 111 22 33"`
}

// DemoAccepted acknowledges a stored demo request.
type DemoAccepted struct {
	ID      string `json:"id"`
	Message string `json:"message" example:"Talebiniz alındı"`
}

// CreateDemoRequest godoc
// @ID          createDemoRequest
// @Summary     Request a demo
// @Tags        Demo
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.DemoRequestBody  true  "Contact details"
// @Success     201  {object}  handlers.DemoAccepted
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     503  {object}  handlers.ErrorResponse
// @Router      /demo-requests [post]
func (h *Handlers) CreateDemoRequest(c *gin.Context) {
	var req DemoRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	r, err := h.demo.Submit(c.Request.Context(), services.DemoInput{
		FullName:   req.FullName,
		AgencyName: req.AgencyName,
		Email:      req.Email,
		Phone:      req.Phone,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, DemoAccepted{ID: r.ID, Message: "Talebiniz alındı"})
}
