package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bellapacxx/academy-backend/services"
	"github.com/bellapacxx/academy-backend/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()

	db := testutil.NewDB(t)
	alice := testutil.CreateUser(t, db, "alice")
	key := testutil.CreateToken(t, db, alice)

	whoami := func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, user.Username)
	}

	r := gin.New()
	r.Use(Metrics(), TokenAuth(services.NewAuthService(db)))
	r.Any("/open", whoami)
	r.Any("/create", CreateOrAuthenticated(), whoami)
	r.Any("/read", IsAuthenticatedOrReadOnly(), whoami)
	r.Any("/private", RequireAuthenticated(), whoami)
	return r, key
}

func do(r http.Handler, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTokenAuth(t *testing.T) {
	r, key := newRouter(t)

	w := do(r, http.MethodGet, "/open", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())

	w = do(r, http.MethodGet, "/open", "Token "+key)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())

	w = do(r, http.MethodGet, "/open", "token "+key)
	assert.Equal(t, "alice", w.Body.String())

	w = do(r, http.MethodGet, "/open", "Bearer "+key)
	assert.Equal(t, "anonymous", w.Body.String())

	w = do(r, http.MethodGet, "/open", "Token nope")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"detail":"Invalid token."}`, w.Body.String())
	assert.Equal(t, "Token", w.Header().Get("WWW-Authenticate"))

	w = do(r, http.MethodGet, "/open", "Token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPermissions(t *testing.T) {
	r, key := newRouter(t)
	auth := "Token " + key

	cases := []struct {
		method, path, auth string
		want               int
	}{
		{http.MethodGet, "/create", "", http.StatusOK},
		{http.MethodPost, "/create", "", http.StatusOK},
		{http.MethodPut, "/create", "", http.StatusUnauthorized},
		{http.MethodPut, "/create", auth, http.StatusOK},
		{http.MethodGet, "/read", "", http.StatusOK},
		{http.MethodHead, "/read", "", http.StatusOK},
		{http.MethodPost, "/read", "", http.StatusUnauthorized},
		{http.MethodDelete, "/read", auth, http.StatusOK},
		{http.MethodGet, "/private", "", http.StatusUnauthorized},
		{http.MethodPost, "/private", auth, http.StatusOK},
	}
	for _, tc := range cases {
		w := do(r, tc.method, tc.path, tc.auth)
		assert.Equal(t, tc.want, w.Code, "%s %s auth=%q", tc.method, tc.path, tc.auth)
	}

	w := do(r, http.MethodGet, "/private", "")
	assert.JSONEq(t, `{"detail":"Authentication credentials were not provided."}`, w.Body.String())
}
