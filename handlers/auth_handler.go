package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayesh156/card-marking-system/config"
	"github.com/ayesh156/card-marking-system/database"
	"github.com/ayesh156/card-marking-system/models"
)

type AuthHandler struct {
	JWTSecret string
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{JWTSecret: cfg.JWTSecret}
}

func (h *AuthHandler) signJWT(sub uint, email, name string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"name":  name,
		"exp":   time.Now().Add(ttl).Unix(),
		"iat":   time.Now().Unix(),
	}
	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tk.SignedString([]byte(h.JWTSecret))
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /login for operator accounts.
func (h *AuthHandler) Login(c echo.Context) error {
	var p loginPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid payload."})
	}
	if err := c.Validate(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": validationFields(err)})
	}

	email := strings.ToLower(strings.TrimSpace(p.Email))
	var user models.User
	if err := database.DB.Where("email = ? AND status = ?", email, true).First(&user).Error; err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(p.Password)) != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
	}

	token, err := h.signJWT(user.ID, user.Email, user.Name, 7*24*time.Hour)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Token generation failed"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}
