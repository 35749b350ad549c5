// file: controllers/test_helpers_test.go
package controllers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"school-vote/services"
	"school-vote/store"
)

const (
	testDomain   = "@escola.pr.gov.br"
	testPassword = "segredo"
)

// setupTestRouter creates a new Gin engine with session middleware and fake HTML templates.
func setupTestRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Set up sessions with cookie store.
	sessionStore := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions("testsession", sessionStore))

	// Create minimal templates to avoid panics during testing.
	tmpDir := t.TempDir()
	if err := createDummyTemplates(tmpDir); err != nil {
		t.Fatalf("Failed to create dummy templates: %v", err)
	}

	// Use filepath.Join for cross-platform compatibility.
	router.LoadHTMLGlob(filepath.Join(tmpDir, "*.html"))
	return router
}

// createDummyTemplates writes a set of minimal HTML templates to the provided directory.
// Each one prints the fields the tests assert on.
func createDummyTemplates(dir string) error {
	templates := map[string]string{
		"login.html":        `login|{{.Domain}}|{{.Error}}`,
		"vote.html":         `vote|{{.Voter.Name}}|{{if .AlreadyVoted}}already-voted{{end}}|{{.Error}}|{{range .Options}}{{.ID}};{{end}}`,
		"thank_you.html":    `thanks|{{.Name}}|{{.Option}}`,
		"results_auth.html": `auth|{{.Error}}|{{range .Notices}}{{.}};{{end}}`,
		"results.html":      `results|{{.LoadError}}|total={{.Total}}|invalid={{.Invalid}}|{{range .Entries}}{{.Name}}={{.Votes}} {{.Percent}};{{end}}|{{range .Records}}{{.Name}};{{end}}|{{range .Notices}}{{.}};{{end}}`,
	}

	for name, content := range templates {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}

// SetSession sets the given key/value pairs in the session using a helper route
// and returns the session cookie that can be attached to subsequent test requests.
func SetSession(router *gin.Engine, route string, data map[string]interface{}) *http.Cookie {
	// Create a helper route for setting session values.
	router.GET(route, func(c *gin.Context) {
		session := sessions.Default(c)
		for key, value := range data {
			session.Set(key, value)
		}
		if err := session.Save(); err != nil {
			c.String(http.StatusInternalServerError, "session save failed")
			return
		}
		c.String(http.StatusOK, "session set")
	})

	// Call the helper route.
	req, _ := http.NewRequest("GET", route, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Extract and return the session cookie.
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "testsession" {
			return cookie
		}
	}
	return nil
}

// testApp is the full router wired to st, plus a cookie-carrying client.
type testApp struct {
	router  *gin.Engine
	gate    *services.AdminGate
	cookies map[string]*http.Cookie
}

func newTestApp(t *testing.T, st store.VoteStore) *testApp {
	t.Helper()
	router := setupTestRouter(t)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	gate := services.NewAdminGate(hash, time.Hour)

	RegisterRoutes(router,
		NewLoginController(services.NewIdentityResolver(testDomain)),
		NewVoteController(services.NewVoteService(st, nil)),
		NewAdminController(gate, services.NewResultsService(st, gate, nil)),
	)
	return &testApp{router: router, gate: gate, cookies: map[string]*http.Cookie{}}
}

// do sends a request with the cookies collected so far and keeps any the
// response sets. A non-nil form is sent url-encoded.
func (a *testApp) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range a.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		a.cookies[c.Name] = c
	}
	return w
}

func (a *testApp) login(t *testing.T, email string) {
	t.Helper()
	w := a.do("POST", "/login", url.Values{"email": {email}})
	if w.Code != http.StatusFound {
		t.Fatalf("login as %s: got %d", email, w.Code)
	}
}

func (a *testApp) authenticate(t *testing.T) {
	t.Helper()
	w := a.do("POST", "/results/auth", url.Values{"password": {testPassword}})
	if w.Code != http.StatusFound {
		t.Fatalf("results auth: got %d", w.Code)
	}
}
