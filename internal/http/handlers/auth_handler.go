package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SignUpRequest opens an agency account.
type SignUpRequest struct {
	Email      string `json:"email" example:"ajans@example.com"`
	Password   string `json:"password" example:"gizli-parola"`
	AgencyName string `json:"agency_name" example:"Yılmaz Sigorta Aracılık"`
}

// LoginRequest signs an agent in.
type LoginRequest struct {
	Email    string `json:"email" example:"ajans@example.com"`
	Password string `json:"password" example:"gizli-parola"`
}

// SignUp godoc
// @ID          signUp
// @Summary     Create an agency account
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.SignUpRequest  true  "Account"
// @Success     201  {object}  domain.User
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse  "Email already registered"
// @Failure     503  {object}  handlers.ErrorResponse
// @Router      /auth/signup [post]
func (h *Handlers) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	u, err := h.auth.SignUp(c.Request.Context(), req.Email, req.Password, req.AgencyName)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, u)
}

// Login godoc
// @ID          login
// @Summary     Sign in
// @Description Returns a bearer token for the Authorization header.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
// @Success     200  {object}  services.Session
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     503  {object}  handlers.ErrorResponse
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	s, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failErr(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	ok(c, http.StatusOK, s)
}

// Me godoc
// @ID          me
// @Summary     Current account
// @Tags        Auth
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  domain.User
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     503  {object}  handlers.ErrorResponse
// @Router      /auth/me [get]
func (h *Handlers) Me(c *gin.Context) {
	u, err := h.auth.CurrentUser(c.Request.Context(), owner(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}
