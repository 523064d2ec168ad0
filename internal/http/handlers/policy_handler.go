package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/policy-tracker-backend/internal/http/middleware"
	"github.com/tbourn/policy-tracker-backend/internal/services"
	"github.com/tbourn/policy-tracker-backend/internal/utils"
	"github.com/tbourn/policy-tracker-backend/internal/views"
)

// CreatePolicyRequest is the "Yeni Poliçe" form.
type CreatePolicyRequest struct {
	CustomerName string `json:"customer_name" example:"Ahmet Yılmaz"`
	Phone        string `json:"phone" example:"0532 111 22 33"`
	Company      string `json:"company" example:"Anadolu Sigorta"`
	PolicyType   string `json:"policy_type" example:"Kasko"`
	StartDate    string `json:"start_date" example:"2025-02-10"`
	EndDate      string `json:"end_date" example:"2026-02-10"`
}

// SearchResponse lists matches, best first.
type SearchResponse struct {
	Query string             `json:"query"`
	Items []views.PolicyCard `json:"items"`
}

// PolicyTypesResponse lists the accepted policy types.
type PolicyTypesResponse struct {
	Items []string `json:"items" example:"Kasko,Trafik,DASK,Sağlık"`
}

// ListPolicies godoc
// @ID          listPolicies
// @Summary     Policy table
// @Description One page of the agent's policies, newest first. Supports a weak ETag through If-None-Match.
// @Tags        Policies
// @Produce     json
// @Security    BearerAuth
// @Param       If-None-Match  header  string  false  "Return 304 if the ETag matches"
// @Param       page           query   int     false  "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false  "Items per page"  minimum(1) maximum(100) default(20)
// @Param       as_of          query   string  false  "Evaluate statuses as of this date (YYYY-MM-DD)"
// @Success     200  {object}  views.PolicyTable
// @Header      200  {string}  ETag  "Weak ETag of this page"
// @Success     304  {string}  string  "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     503  {object}  handlers.ErrorResponse
// @Router      /policies [get]
func (h *Handlers) ListPolicies(c *gin.Context) {
	ctx := c.Request.Context()
	uid := owner(c)
	page, pageSize := clampPagination(c)
	asOf, err := h.asOf(c)
	if err != nil {
		failErr(c, err)
		return
	}

	// Statuses move with the calendar, so the day is part of the tag.
	if count, latest, err := h.policies.Stats(ctx, uid); err == nil {
		var ts int64
		if latest != nil {
			ts = latest.UnixNano()
		}
		etag := fmt.Sprintf(`W/"policies:%s:%d:%d:%d:%d:%s"`,
			uid, count, ts, page, pageSize, utils.FormatDate(h.calc.Today(asOf)))
		c.Header("ETag", etag)
		c.Header("Cache-Control", "private, no-cache")
		if c.GetHeader("If-None-Match") == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	v, err := h.views.Table(ctx, uid, page, pageSize, asOf)
	if gone(c) {
		return
	}
	if err != nil {
		c.Header("ETag", "")
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, v)
}

// GetPolicy godoc
// @ID          getPolicy
// @Summary     One policy
// @Tags        Policies
// @Produce     json
// @Security    BearerAuth
// @Param       id     path   string  true   "Policy ID"  format(uuid)
// @Param       as_of  query  string  false  "Evaluate status as of this date (YYYY-MM-DD)"
// @Success     200  {object}  views.PolicyCard
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     503  {object}  handlers.ErrorResponse
// @Router      /policies/{id} [get]
func (h *Handlers) GetPolicy(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		failField(c, http.StatusBadRequest, ErrCodeBadRequest, "id", "policy id must be a UUID")
		return
	}
	asOf, err := h.asOf(c)
	if err != nil {
		failErr(c, err)
		return
	}
	p, err := h.policies.Get(c.Request.Context(), owner(c), id, asOf)
	if gone(c) {
		return
	}
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, views.Card(*p))
}

// SearchPolicies godoc
// @ID          searchPolicies
// @Summary     Search policies
// @Description Ranks the agent's policies by customer name, phone, company and type. Turkish letters match case-insensitively.
// @Tags        Policies
// @Produce     json
// @Security    BearerAuth
// @Param       q      query  string  true   "Search text"  maxLength(100)
// @Param       limit  query  int     false  "Max results"  minimum(1) maximum(50) default(10)
// @Param       as_of  query  string  false  "Evaluate statuses as of this date (YYYY-MM-DD)"
// @Success     200  {object}  handlers.SearchResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     503  {object}  handlers.ErrorResponse
// @Router      /policies/search [get]
func (h *Handlers) SearchPolicies(c *gin.Context) {
	asOf, err := h.asOf(c)
	if err != nil {
		failErr(c, err)
		return
	}
	q := c.Query("q")
	limit := utils.Clamp(utils.AtoiDefault(c.Query("limit"), 10), 1, 50)

	rows, err := h.policies.Search(c.Request.Context(), owner(c), q, limit, asOf)
	if gone(c) {
		return
	}
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, SearchResponse{Query: strings.TrimSpace(q), Items: views.Cards(rows)})
}

// CreatePolicy godoc
// @ID          createPolicy
// @Summary     Record a new policy
// @Description Stores a policy for the agent. With an Idempotency-Key header a retried submit returns the first result and sets Idempotency-Replayed: true.
// @Tags        Policies
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key  header  string                              false  "Client key that makes retries safe"
// @Param       body             body    handlers.CreatePolicyRequest  true   "Policy"
// @Success     201  {object}  views.PolicyCard
// @Header      201  {string}  Location              "URL of the created policy"
// @Header      201  {string}  Idempotency-Replayed  "true when served from a stored result"
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     503  {object}  handlers.ErrorResponse
// @Router      /policies [post]
func (h *Handlers) CreatePolicy(c *gin.Context) {
	var req CreatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	in := services.NewPolicy{
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Company:      req.Company,
		PolicyType:   req.PolicyType,
	}
	for _, f := range []struct {
		name string
		raw  string
		dst  *time.Time
	}{
		{"start_date", req.StartDate, &in.StartDate},
		{"end_date", req.EndDate, &in.EndDate},
	} {
		if strings.TrimSpace(f.raw) == "" {
			continue
		}
		d, err := utils.ParseDate(f.raw)
		if err != nil {
			failField(c, http.StatusBadRequest, ErrCodeValidation, f.name, f.name+": must be a date in YYYY-MM-DD form")
			return
		}
		*f.dst = d
	}

	key, _ := middleware.GetIdempotencyKey(c)
	p, replayed, err := h.policies.CreateIdempotent(c.Request.Context(), owner(c), key, in)
	if err != nil {
		if gone(c) {
			return
		}
		failErr(c, err)
		return
	}
	middleware.PolicyCreated(replayed)
	if replayed {
		c.Header(middleware.HeaderIdempotencyReplayed, "true")
	}
	c.Header("Location", strings.TrimSuffix(c.FullPath(), "/")+"/"+p.ID)
	ok(c, http.StatusCreated, views.Card(h.policies.Annotate(*p, h.now())))
}

// PolicyTypes godoc
// @ID          listPolicyTypes
// @Summary     Policy types
// @Description The values accepted in policy_type.
// @Tags        Policies
// @Produce     json
// @Success     200  {object}  handlers.PolicyTypesResponse
// @Router      /policy-types [get]
func (h *Handlers) PolicyTypes(c *gin.Context) {
	ok(c, http.StatusOK, PolicyTypesResponse{Items: h.catalog.Names()})
}
