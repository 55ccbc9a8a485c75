package borrows

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"libris-backend/internal/platform/apierr"
	"libris-backend/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

// RegisterRoutes wires the borrowing engine endpoints. Record-scoped
// reads enforce ownership in the service; member-scoped routes gate on
// CanActFor up front.
func RegisterRoutes(authed, staff gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	authed.POST("/borrows", h.Borrow)
	authed.GET("/borrows/:record_id", h.Get)
	authed.GET("/borrows/:record_id/fine", h.Fine)
	authed.POST("/borrows/:record_id/renew", h.Renew)
	authed.GET("/members/:member_id/borrows", h.MemberHistory)
	authed.GET("/members/:member_id/borrowed-books", h.BorrowedBooks)

	staff.POST("/returns", h.Return)
	staff.GET("/borrows", h.List)
	staff.GET("/members/:member_id/can-borrow", h.CanBorrow)
	staff.GET("/stats/borrows", h.Stats)
}

func actorFrom(c *gin.Context) Actor {
	return Actor{
		MemberID: c.GetString(auth.CtxMemberIDKey),
		Role:     c.GetString(auth.CtxRoleKey),
	}
}

// Borrow godoc
// @Summary      Borrow a book
// @Description  Opens a borrow record and decrements availability atomically.
// @Tags         borrows
// @Accept       json
// @Produce      json
// @Param        request body BorrowRequest true "borrow request"
// @Success      201 {object} BorrowRecordResponse
// @Failure      400 {object} apierr.Response
// @Failure      404 {object} apierr.Response
// @Failure      409 {object} apierr.Response
// @Security     BearerAuth
// @Router       /borrows [post]
func (h *Handler) Borrow(c *gin.Context) {
	var req BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid json"))
		return
	}
	if !auth.CanActFor(c, req.MemberID) {
		c.JSON(http.StatusForbidden, apierr.Body(apierr.CodePermissionDenied, "cannot borrow for another member"))
		return
	}
	res, err := h.svc.Borrow(c.Request.Context(), req)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.Header("Location", "/borrows/"+strconv.FormatInt(res.RecordID, 10))
	c.JSON(http.StatusCreated, res)
}

// Return godoc
// @Summary      Return a book
// @Tags         borrows
// @Accept       json
// @Produce      json
// @Param        request body ReturnRequest true "return request"
// @Success      200 {object} BorrowRecordResponse
// @Failure      404 {object} apierr.Response
// @Security     BearerAuth
// @Router       /returns [post]
func (h *Handler) Return(c *gin.Context) {
	var req ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.Return(c.Request.Context(), req)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("record_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid record_id"))
		return
	}
	res, err := h.svc.GetRecord(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Fine(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("record_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid record_id"))
		return
	}
	res, err := h.svc.CalculateFine(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Renew(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("record_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid record_id"))
		return
	}
	var req RenewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.Renew(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// List serves the staff ledger views. Exactly one of overdue,
// member_id or book_id selects the dimension; an unfiltered dump of
// the whole ledger is not offered.
func (h *Handler) List(c *gin.Context) {
	activeOnly := c.Query("active") == "1" || c.Query("active") == "true"

	switch {
	case c.Query("overdue") == "1" || c.Query("overdue") == "true":
		res, err := h.svc.Overdue(c.Request.Context())
		if err != nil {
			c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
			return
		}
		c.JSON(http.StatusOK, res)

	case c.Query("member_id") != "":
		res, err := h.svc.History(c.Request.Context(), actorFrom(c), c.Query("member_id"), activeOnly)
		if err != nil {
			c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
			return
		}
		c.JSON(http.StatusOK, res)

	case c.Query("book_id") != "":
		id, err := strconv.ParseInt(c.Query("book_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid book_id"))
			return
		}
		res, err := h.svc.BookHistory(c.Request.Context(), id, activeOnly)
		if err != nil {
			c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
			return
		}
		c.JSON(http.StatusOK, res)

	default:
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "one of overdue, member_id or book_id is required"))
	}
}

func (h *Handler) MemberHistory(c *gin.Context) {
	memberID := c.Param("member_id")
	activeOnly := c.Query("active") == "1" || c.Query("active") == "true"
	res, err := h.svc.History(c.Request.Context(), actorFrom(c), memberID, activeOnly)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) BorrowedBooks(c *gin.Context) {
	res, err := h.svc.BorrowedBooks(c.Request.Context(), actorFrom(c), c.Param("member_id"))
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) CanBorrow(c *gin.Context) {
	res, err := h.svc.CanBorrow(c.Request.Context(), c.Param("member_id"))
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Stats(c *gin.Context) {
	res, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.JSON(http.StatusOK, res)
}
