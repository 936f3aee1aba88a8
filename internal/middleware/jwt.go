package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/flashmind/flashmind-backend/internal/model"
	"github.com/flashmind/flashmind-backend/internal/response"
	"github.com/flashmind/flashmind-backend/internal/service"
)

const contextKeyClaims = "jwt_claims"

// RequireJWT validates the Bearer access token and stores its claims in
// the request context.
func RequireJWT(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := extractAndValidateClaims(c, auth); !ok {
			return
		}
		c.Next()
	}
}

// RequireStudentJWT additionally requires the student role.
func RequireStudentJWT(auth *service.AuthService) gin.HandlerFunc {
	return requireRole(auth, model.RoleStudent, response.ErrStudentAccessOnly)
}

// RequireProfessorJWT additionally requires the professor role.
func RequireProfessorJWT(auth *service.AuthService) gin.HandlerFunc {
	return requireRole(auth, model.RoleProfessor, response.ErrProfessorAccessOnly)
}

func requireRole(auth *service.AuthService, role model.Role, code response.ErrCode) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := extractAndValidateClaims(c, auth)
		if !ok {
			return
		}
		if claims.Role != role {
			response.AbortFail(c, http.StatusForbidden, code)
			return
		}
		c.Next()
	}
}

func extractAndValidateClaims(c *gin.Context, auth *service.AuthService) (*service.Claims, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, false
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, false
	}

	claims, err := auth.ValidateAccessToken(token)
	if err != nil {
		response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return nil, false
	}

	c.Set(contextKeyClaims, claims)
	return claims, true
}

// GetClaims returns the validated claims stored by the JWT middleware.
func GetClaims(c *gin.Context) *service.Claims {
	v, ok := c.Get(contextKeyClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*service.Claims)
	return claims
}
