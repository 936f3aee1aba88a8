package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/flashmind/flashmind-backend/internal/config"
	"github.com/flashmind/flashmind-backend/internal/model"
	"github.com/flashmind/flashmind-backend/internal/service"
)

func testRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	auth := service.NewAuthService(&config.Config{
		JWTSecret:     "middleware-test-secret",
		JWTExpiry:     time.Hour,
		RefreshExpiry: time.Hour,
		BcryptCost:    bcrypt.MinCost,
	})

	r := gin.New()
	r.GET("/student", RequireStudentJWT(auth), func(c *gin.Context) {
		claims := GetClaims(c)
		c.String(http.StatusOK, claims.Subject)
	})
	r.GET("/professor", RequireProfessorJWT(auth), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r, auth
}

func doRequest(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTMiddlewareAcceptsValidStudentToken(t *testing.T) {
	r, auth := testRouter(t)

	token, err := auth.GenerateAccessToken("alice@example.com", model.RoleStudent)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	w := doRequest(r, "/student", "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if w.Body.String() != "alice@example.com" {
		t.Errorf("subject = %q", w.Body.String())
	}
}

func TestJWTMiddlewareRejectsMissingAndMalformedHeaders(t *testing.T) {
	r, _ := testRouter(t)

	for _, header := range []string{"", "Bearer ", "Basic abc", "garbage"} {
		if w := doRequest(r, "/student", header); w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, w.Code)
		}
	}
}

func TestJWTMiddlewareRejectsRefreshTokens(t *testing.T) {
	r, auth := testRouter(t)

	refresh, err := auth.GenerateRefreshToken("alice@example.com", model.RoleStudent)
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	if w := doRequest(r, "/student", "Bearer "+refresh); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestJWTMiddlewareEnforcesRole(t *testing.T) {
	r, auth := testRouter(t)

	studentToken, err := auth.GenerateAccessToken("alice@example.com", model.RoleStudent)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if w := doRequest(r, "/professor", "Bearer "+studentToken); w.Code != http.StatusForbidden {
		t.Errorf("student on professor route: status = %d, want 403", w.Code)
	}
}

func TestRateLimiterBlocksAfterBudget(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := NewRateLimiter(3, time.Minute)
	r := gin.New()
	r.GET("/", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		if w := doRequest(r, "/", ""); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, w.Code)
		}
	}
	if w := doRequest(r, "/", ""); w.Code != http.StatusTooManyRequests {
		t.Errorf("over budget: status = %d, want 429", w.Code)
	}
}
