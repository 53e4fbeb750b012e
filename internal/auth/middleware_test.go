package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/guarded", UserAuth(testKey, testIssuer, roles...), func(c *gin.Context) {
		claims, ok := CallerClaims(c)
		if !ok {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sub": claims.Subject, "role": claims.Role})
	})
	return r
}

func doGet(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUserAuthMissingToken(t *testing.T) {
	w := doGet(authRouter(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserAuthBadToken(t *testing.T) {
	w := doGet(authRouter(), "Bearer bogus")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserAuthAllowsValidToken(t *testing.T) {
	token, _, err := Issue("u1", "student", testIssuer, testKey, time.Hour)
	require.NoError(t, err)

	w := doGet(authRouter(), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sub":"u1"`)
}

func TestUserAuthEnforcesRole(t *testing.T) {
	token, _, err := Issue("u1", "student", testIssuer, testKey, time.Hour)
	require.NoError(t, err)

	w := doGet(authRouter("admin"), "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doGet(authRouter("admin", "student"), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}
