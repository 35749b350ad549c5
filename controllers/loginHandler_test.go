// file: controllers/loginHandler_test.go
package controllers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-vote/middleware"
	"school-vote/services"
	"school-vote/store/memory"
)

func TestShowLoginPage(t *testing.T) {
	app := newTestApp(t, memory.New())

	w := app.do("GET", "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "login|@escola.pr.gov.br|")
}

func TestPerformLogin_InvalidDomain(t *testing.T) {
	app := newTestApp(t, memory.New())

	for _, email := range []string{"ana@gmail.com", "", "@escola.pr.gov.br"} {
		w := app.do("POST", "/login", url.Values{"email": {email}})
		assert.Equal(t, http.StatusBadRequest, w.Code, email)
		assert.Contains(t, w.Body.String(), "Use seu email institucional", email)
	}

	// no identity was stored
	w := app.do("GET", "/vote", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestPerformLogin_BlankNameDoesNotLoop(t *testing.T) {
	app := newTestApp(t, memory.New())

	for _, email := range []string{"@@escola.pr.gov.br", ".@escola.pr.gov.br"} {
		w := app.do("POST", "/login", url.Values{"email": {email}})
		assert.Equal(t, http.StatusBadRequest, w.Code, email)
	}

	w := app.do("GET", "/", nil)
	assert.Equal(t, http.StatusOK, w.Code, "login page is shown, not a redirect")
}

func TestShowLoginPage_IncompleteSession(t *testing.T) {
	router := setupTestRouter(t)
	lc := NewLoginController(services.NewIdentityResolver(testDomain))
	router.GET("/", lc.ShowLoginPage)

	// email without a name does not pass VoterRequired, so no redirect to /vote
	sessionCookie := SetSession(router, "/set-email", map[string]interface{}{
		middleware.SessionVoterEmail: "ana.silva@escola.pr.gov.br",
	})
	require.NotNil(t, sessionCookie)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(sessionCookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "login|")
}

func TestPerformLogin_Success(t *testing.T) {
	app := newTestApp(t, memory.New())

	w := app.do("POST", "/login", url.Values{"email": {"  Ana.Silva@Escola.PR.gov.br "}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/vote", w.Header().Get("Location"))

	w = app.do("GET", "/vote", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "vote|Ana Silva|")

	// the login page now skips to the ballot
	w = app.do("GET", "/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/vote", w.Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	app := newTestApp(t, memory.New())
	app.login(t, "ana.silva@escola.pr.gov.br")

	w := app.do("GET", "/logout", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = app.do("GET", "/vote", nil)
	assert.Equal(t, http.StatusFound, w.Code, "voter must log in again")
}
