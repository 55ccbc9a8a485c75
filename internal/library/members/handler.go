package members

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"libris-backend/internal/platform/apierr"
	"libris-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterRoutes wires the member directory. Listing and mutation are
// staff operations; a member may read their own profile.
func RegisterRoutes(authed, staff, admin gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	authed.GET("/members/:member_id", h.Get)

	staff.POST("/members", h.Create)
	staff.GET("/members", h.List)
	staff.PUT("/members/:member_id", h.Update)

	admin.DELETE("/members/:member_id", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.Header("Location", "/members/"+res.MemberID)
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) Get(c *gin.Context) {
	id := c.Param("member_id")
	if !auth.CanActFor(c, id) {
		c.JSON(http.StatusForbidden, apierr.Body(apierr.CodePermissionDenied, "members may only view their own profile"))
		return
	}
	res, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) List(c *gin.Context) {
	if email := c.Query("email"); email != "" {
		res, err := h.svc.GetByEmail(c.Request.Context(), email)
		if err != nil {
			c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
			return
		}
		c.JSON(http.StatusOK, []MemberResponse{*res})
		return
	}

	res, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.Update(c.Request.Context(), c.Param("member_id"), req)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("member_id")); err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.Status(http.StatusNoContent)
}
