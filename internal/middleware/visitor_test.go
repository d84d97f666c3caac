package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret"

func newVisitorRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Visitor(testSecret, 24*time.Hour, false))
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, GetVisitorID(c))
	})
	return r
}

func TestVisitorIssuesTokenForNewVisitor(t *testing.T) {
	t.Parallel()

	r := newVisitorRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if _, err := uuid.Parse(w.Body.String()); err != nil {
		t.Fatalf("visitor id %q is not a uuid", w.Body.String())
	}

	var cookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == VisitorCookie {
			cookie = ck
		}
	}
	if cookie == nil {
		t.Fatal("expected visitor cookie to be set")
	}
	if !cookie.HttpOnly {
		t.Error("visitor cookie should be HttpOnly")
	}
	if w.Header().Get("X-Visitor-Token") != cookie.Value {
		t.Error("X-Visitor-Token header should mirror the cookie")
	}
}

func TestVisitorReusesValidToken(t *testing.T) {
	t.Parallel()

	id := uuid.NewString()
	token, err := GenerateVisitorToken(id, testSecret, 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		setup func(*http.Request)
	}{
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: VisitorCookie, Value: token}) }},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newVisitorRouter()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Body.String() != id {
				t.Errorf("visitor id = %q, want %q", w.Body.String(), id)
			}
			if len(w.Result().Cookies()) != 0 {
				t.Error("fresh token should not be reissued")
			}
		})
	}
}

func TestVisitorRejectsForeignToken(t *testing.T) {
	t.Parallel()

	id := uuid.NewString()
	forged, _ := GenerateVisitorToken(id, "other-secret", time.Hour)

	r := newVisitorRouter()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: forged})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Body.String() == id {
		t.Error("token signed with another secret must not be trusted")
	}
}

func TestShouldRefresh(t *testing.T) {
	t.Parallel()

	now := time.Now()
	fresh := &VisitorClaims{RegisteredClaims: jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
		ExpiresAt: jwt.NewNumericDate(now.Add(9 * time.Hour)),
	}}
	stale := &VisitorClaims{RegisteredClaims: jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now.Add(-8 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(now.Add(2 * time.Hour)),
	}}

	if shouldRefresh(fresh) {
		t.Error("token at 10% of its lifetime should not refresh")
	}
	if !shouldRefresh(stale) {
		t.Error("token at 80% of its lifetime should refresh")
	}
	if shouldRefresh(&VisitorClaims{}) {
		t.Error("claims without timestamps should not refresh")
	}
}
