package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   uint(7),
		"email": "op@example.com",
		"name":  "Operator",
		"exp":   exp.Unix(),
		"iat":   time.Now().Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func runProtected(t *testing.T, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	handler := RequireAuth(testSecret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(ctx); err != nil {
		e.HTTPErrorHandler(err, ctx)
	}
	return rec, ctx
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	tok := signToken(t, testSecret, time.Now().Add(time.Hour))
	rec, ctx := runProtected(t, "Bearer "+tok)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "op@example.com", ctx.Get("email"))
	assert.Equal(t, "Operator", ctx.Get("name"))
}

func TestRequireAuthMissingHeader(t *testing.T) {
	rec, _ := runProtected(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthMalformedHeader(t *testing.T) {
	rec, _ := runProtected(t, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthWrongSecret(t *testing.T) {
	tok := signToken(t, "other-secret", time.Now().Add(time.Hour))
	rec, _ := runProtected(t, "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthExpiredToken(t *testing.T) {
	tok := signToken(t, testSecret, time.Now().Add(-time.Hour))
	rec, _ := runProtected(t, "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
