package borrows

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libris-backend/internal/platform/auth"
)

// identity stubs the auth middleware: routes behave exactly as after
// RequireAuth, without minting tokens in every test.
func identity(role, memberID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(auth.CtxRoleKey, role)
		c.Set(auth.CtxMemberIDKey, memberID)
		c.Next()
	}
}

func newHandlerRouter(svc *Service, role, memberID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	authed := r.Group("/api/v1", identity(role, memberID))
	staff := r.Group("/api/v1", identity(role, memberID))
	RegisterRoutes(authed, staff, svc)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlerBorrow(t *testing.T) {
	svc, _ := newTestService(seedStore())
	r := newHandlerRouter(svc, auth.RoleLibrarian, "")

	t.Run("created with location header", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/v1/borrows", `{"member_id":"MEM1","book_id":1}`)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "/borrows/1", w.Header().Get("Location"))
		assert.Contains(t, w.Body.String(), `"record_id":1`)
		assert.Contains(t, w.Body.String(), `"book_title":"The Go Programming Language"`)
		assert.Contains(t, w.Body.String(), `"returned":false`)
	})

	t.Run("invalid json", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/v1/borrows", `{"member_id":`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":{"code":"INVALID_ARGUMENT","message":"invalid json"}}`, w.Body.String())
	})

	t.Run("no copies left maps to conflict status", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/v1/borrows", `{"member_id":"MEM2","book_id":2}`)
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(r, http.MethodPost, "/api/v1/borrows", `{"member_id":"MEM1","book_id":2}`)
		require.Equal(t, http.StatusConflict, w.Code)
		assert.JSONEq(t, `{"error":{"code":"INVALID_STATE","message":"no copies available for 'SICP'"}}`, w.Body.String())
	})

	t.Run("member cannot borrow for someone else", func(t *testing.T) {
		memberRouter := newHandlerRouter(svc, auth.RoleMember, "MEM2")
		w := doJSON(memberRouter, http.MethodPost, "/api/v1/borrows", `{"member_id":"MEM1","book_id":3}`)
		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"PERMISSION_DENIED"`)
	})
}

func TestHandlerReturn(t *testing.T) {
	svc, clock := newTestService(seedStore())
	r := newHandlerRouter(svc, auth.RoleLibrarian, "")

	w := doJSON(r, http.MethodPost, "/api/v1/borrows", `{"member_id":"MEM1","book_id":1}`)
	require.Equal(t, http.StatusCreated, w.Code)

	clock.Advance(20 * 24 * time.Hour)
	w = doJSON(r, http.MethodPost, "/api/v1/returns", `{"member_id":"MEM1","book_id":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"returned":true`)
	assert.Contains(t, w.Body.String(), `"fine_amount":"3.00"`)

	w = doJSON(r, http.MethodPost, "/api/v1/returns", `{"member_id":"MEM1","book_id":1}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"NOT_FOUND"`)
}

func TestHandlerRenew(t *testing.T) {
	svc, _ := newTestService(seedStore())
	r := newHandlerRouter(svc, auth.RoleMember, "MEM1")

	w := doJSON(r, http.MethodPost, "/api/v1/borrows", `{"member_id":"MEM1","book_id":1}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/borrows/1/renew", `{"additional_days":7}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"renewal_count":1`)

	w = doJSON(r, http.MethodPost, "/api/v1/borrows/1/renew", `{"additional_days":31}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"INVALID_ARGUMENT"`)

	w = doJSON(r, http.MethodPost, "/api/v1/borrows/abc/renew", `{"additional_days":7}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerListRequiresDimension(t *testing.T) {
	svc, _ := newTestService(seedStore())
	r := newHandlerRouter(svc, auth.RoleLibrarian, "")

	w := doJSON(r, http.MethodGet, "/api/v1/borrows", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"INVALID_ARGUMENT"`)

	doJSON(r, http.MethodPost, "/api/v1/borrows", `{"member_id":"MEM1","book_id":1}`)
	w = doJSON(r, http.MethodGet, "/api/v1/borrows?member_id=MEM1&active=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"member_name":"Ada Lovelace"`)
}

func TestHandlerFineAndCanBorrow(t *testing.T) {
	svc, _ := newTestService(seedStore())
	r := newHandlerRouter(svc, auth.RoleLibrarian, "")

	doJSON(r, http.MethodPost, "/api/v1/borrows", `{"member_id":"MEM1","book_id":1}`)

	w := doJSON(r, http.MethodGet, "/api/v1/borrows/1/fine", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"record_id":1,"fine_amount":"0.00"}`, w.Body.String())

	w = doJSON(r, http.MethodGet, "/api/v1/members/MEM1/can-borrow", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"member_id":"MEM1","can_borrow":true}`, w.Body.String())
}
