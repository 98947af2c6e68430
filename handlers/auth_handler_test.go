package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayesh156/card-marking-system/models"
)

func TestLogin(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	h := &AuthHandler{JWTSecret: "test-secret"}

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	createUser(t, db, "login@example.com", func(u *models.User) {
		u.Password = string(hash)
	})

	ctx, rec := newRequest(e, http.MethodPost, "/login", map[string]any{
		"email":    "Login@Example.com",
		"password": "s3cret",
	})
	require.NoError(t, h.Login(ctx))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "login@example.com", user["email"])
	assert.NotContains(t, user, "password")
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	h := &AuthHandler{JWTSecret: "test-secret"}

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	createUser(t, db, "login2@example.com", func(u *models.User) {
		u.Password = string(hash)
	})

	ctx, rec := newRequest(e, http.MethodPost, "/login", map[string]any{
		"email":    "login2@example.com",
		"password": "wrong",
	})
	require.NoError(t, h.Login(ctx))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginDisabledAccount(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	h := &AuthHandler{JWTSecret: "test-secret"}

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	createUser(t, db, "off@example.com", func(u *models.User) {
		u.Password = string(hash)
		u.Status = false
	})

	ctx, rec := newRequest(e, http.MethodPost, "/login", map[string]any{
		"email":    "off@example.com",
		"password": "s3cret",
	})
	require.NoError(t, h.Login(ctx))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginValidation(t *testing.T) {
	setupDB(t)
	e := newEcho()
	h := &AuthHandler{JWTSecret: "test-secret"}

	ctx, rec := newRequest(e, http.MethodPost, "/login", map[string]any{
		"email": "not-an-email",
	})
	require.NoError(t, h.Login(ctx))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
