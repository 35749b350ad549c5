// file: middleware/admin_required_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-vote/services"
)

// fakeVerifier accepts a fixed set of token ids
type fakeVerifier map[string]bool

func (f fakeVerifier) Verify(id string) (services.AdminToken, bool) {
	if !f[id] {
		return services.AdminToken{}, false
	}
	return services.AdminToken{ID: id, IssuedAt: time.Unix(0, 0)}, true
}

// Unique function name to avoid conflicts with other test files
func setupAdminTestRouter(gate TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	store := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions("testsession", store))

	router.GET("/set-token/:id", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(SessionAdminToken, c.Param("id"))
		_ = session.Save()
		c.String(http.StatusOK, "token set")
	})

	router.GET("/results", AdminRequired(gate), func(c *gin.Context) {
		tok, ok := AdminTokenFrom(c)
		if !ok {
			c.String(http.StatusInternalServerError, "no token")
			return
		}
		c.String(http.StatusOK, "Welcome, admin! "+tok.ID)
	})
	return router
}

func tokenCookie(t *testing.T, router *gin.Engine, id string) string {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/set-token/"+id, nil))
	c := w.Header().Get("Set-Cookie")
	require.NotEmpty(t, c)
	return c
}

// TestAdminRequired_Success ensures a valid token reaches the results handler
func TestAdminRequired_Success(t *testing.T) {
	router := setupAdminTestRouter(fakeVerifier{"tok-1": true})
	cookieHeader := tokenCookie(t, router, "tok-1")

	req, _ := http.NewRequest("GET", "/results", nil)
	req.Header.Set("Cookie", cookieHeader)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "Admin should be allowed")
	assert.Contains(t, w.Body.String(), "Welcome, admin! tok-1")
}

// TestAdminRequired_UnknownToken ensures forged or revoked tokens are redirected
func TestAdminRequired_UnknownToken(t *testing.T) {
	router := setupAdminTestRouter(fakeVerifier{"tok-1": true})
	cookieHeader := tokenCookie(t, router, "forged")

	req, _ := http.NewRequest("GET", "/results", nil)
	req.Header.Set("Cookie", cookieHeader)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/results/auth", w.Header().Get("Location"))
	assert.NotEmpty(t, w.Header().Get("Set-Cookie"), "stale token is cleared from the session")
}

// TestAdminRequired_MissingSession ensures a missing session is redirected
func TestAdminRequired_MissingSession(t *testing.T) {
	router := setupAdminTestRouter(fakeVerifier{})

	req, _ := http.NewRequest("GET", "/results", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code, "Missing session should block access")
	assert.Equal(t, "/results/auth", w.Header().Get("Location"))
}
