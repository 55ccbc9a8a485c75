package books

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"libris-backend/internal/platform/apierr"
)

type Handler struct{ svc *Service }

// RegisterRoutes wires the catalog endpoints. Reads are open to any
// authenticated caller, mutations to librarians and up, delete to admins.
func RegisterRoutes(authed, staff, admin gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	authed.GET("/books", h.List)
	authed.GET("/books/:book_id", h.Get)

	staff.POST("/books", h.Create)
	staff.PUT("/books/:book_id", h.Update)

	admin.DELETE("/books/:book_id", h.Delete)
}

// Create godoc
// @Summary  Add a book to the catalog
// @Tags     books
// @Accept   json
// @Produce  json
// @Param    request body CreateBookRequest true "book"
// @Success  201 {object} BookResponse
// @Router   /books [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.Header("Location", "/books/"+strconv.FormatInt(res.BookID, 10))
	c.JSON(http.StatusCreated, res)
}

// List godoc
// @Summary  List books, optionally filtered
// @Tags     books
// @Produce  json
// @Param    available query bool false "only books with available copies"
// @Param    library_id query int false "filter by library"
// @Param    isbn query string false "exact ISBN lookup"
// @Success  200 {array} BookResponse
// @Router   /books [get]
func (h *Handler) List(c *gin.Context) {
	// ?isbn= is a point lookup, not a filter scan
	if isbn := c.Query("isbn"); isbn != "" {
		res, err := h.svc.GetByISBN(c.Request.Context(), isbn)
		if err != nil {
			c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
			return
		}
		c.JSON(http.StatusOK, []BookResponse{*res})
		return
	}

	f := ListFilter{}
	if v := c.Query("available"); v == "true" || v == "1" {
		f.AvailableOnly = true
	}
	if v := c.Query("library_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.LibraryID = &id
		}
	}
	res, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("book_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid book_id"))
		return
	}
	res, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("book_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid book_id"))
		return
	}
	var req UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("book_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid book_id"))
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.From(err))
		return
	}
	c.Status(http.StatusNoContent)
}
