package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayesh156/card-marking-system/config"
	"github.com/ayesh156/card-marking-system/database"
	"github.com/ayesh156/card-marking-system/models"
)

type UserHandler struct {
	UploadDir string
}

func NewUserHandler(cfg *config.Config) *UserHandler {
	return &UserHandler{UploadDir: cfg.UploadDir}
}

var (
	reDataImage    = regexp.MustCompile(`^data:image/(\w+);base64,`)
	reFileNameSafe = regexp.MustCompile(`[^a-z0-9_\-]`)

	errInvalidImageData = errors.New("Invalid base64 image data")
	errUnsupportedImage = errors.New("Unsupported image format")
)

// Show handles GET /users/:email.
func (h *UserHandler) Show(c echo.Context) error {
	var user models.User
	if err := database.DB.Where("email = ?", c.Param("email")).First(&user).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "User not found"})
	}
	return c.JSON(http.StatusOK, user)
}

type userPayload struct {
	Name                 string  `json:"name" validate:"required,max=50"`
	Email                string  `json:"email" validate:"required,email,max=100"`
	Password             *string `json:"password" validate:"omitempty,max=20"`
	BeforePaymentWeek3   *string `json:"beforePaymentWeek3" validate:"omitempty,max=100"`
	BeforePaymentWeek4   *string `json:"beforePaymentWeek4" validate:"omitempty,max=100"`
	AfterPaymentTemplate *string `json:"afterPaymentTemplate" validate:"omitempty,max=100"`
	Image                *string `json:"image"`
}

// Update handles PUT /users/:email: profile fields, optional password
// re-hash, and an optional base64 avatar upload replacing the old file.
func (h *UserHandler) Update(c echo.Context) error {
	var user models.User
	if err := database.DB.Where("email = ?", c.Param("email")).First(&user).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "User not found"})
	}

	var p userPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid payload."})
	}
	if err := c.Validate(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": validationFields(err)})
	}

	var n int64
	database.DB.Model(&models.User{}).
		Where("email = ? AND id <> ?", p.Email, user.ID).
		Count(&n)
	if n > 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":  "VALIDATION_ERROR",
			"fields": map[string]string{"email": "The email has already been taken."},
		})
	}

	if p.Image != nil && *p.Image != "" {
		path, err := h.saveAvatar(p.Name, *p.Image, user.ImagePath)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
		}
		user.ImagePath = &path
	}

	user.Name = p.Name
	user.Email = p.Email
	user.BeforePaymentWeek3 = p.BeforePaymentWeek3
	user.BeforePaymentWeek4 = p.BeforePaymentWeek4
	user.AfterPaymentTemplate = p.AfterPaymentTemplate
	user.Status = true
	user.Mode = "D"

	if p.Password != nil && *p.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*p.Password), bcrypt.DefaultCost)
		if err != nil {
			c.Logger().Errorf("error updating user: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update user: " + err.Error()})
		}
		user.Password = string(hash)
	}

	if err := database.DB.Save(&user).Error; err != nil {
		c.Logger().Errorf("error updating user: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update user: " + err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "User updated successfully",
		"user":    user,
	})
}

// saveAvatar decodes a data-URL image, writes it under the upload dir with a
// unique name and removes the previous file.
func (h *UserHandler) saveAvatar(name, dataURL string, oldPath *string) (string, error) {
	m := reDataImage.FindStringSubmatch(dataURL)
	if m == nil {
		return "", errInvalidImageData
	}
	ext := strings.ToLower(m[1])
	if ext != "jpeg" && ext != "jpg" && ext != "png" {
		return "", errUnsupportedImage
	}

	raw, err := base64.StdEncoding.DecodeString(dataURL[strings.Index(dataURL, ",")+1:])
	if err != nil {
		return "", errInvalidImageData
	}

	sanitized := reFileNameSafe.ReplaceAllString(strings.ToLower(name), "")
	fileName := sanitized + "_" + uuid.NewString()[:8] + "." + ext
	rel := filepath.Join("users", fileName)
	full := filepath.Join(h.UploadDir, rel)

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, raw, 0o644); err != nil {
		return "", err
	}

	if oldPath != nil && *oldPath != "" {
		_ = os.Remove(filepath.Join(h.UploadDir, *oldPath))
	}
	return rel, nil
}

type modePayload struct {
	Mode string `json:"mode" validate:"required,oneof=L D"`
}

// GetMode handles GET /users/:email/mode.
func (h *UserHandler) GetMode(c echo.Context) error {
	var user models.User
	if err := database.DB.Where("email = ?", c.Param("email")).First(&user).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "User not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{"mode": user.Mode})
}

// UpdateMode handles PUT /users/:email/mode (light/dark display toggle).
func (h *UserHandler) UpdateMode(c echo.Context) error {
	var p modePayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid payload."})
	}
	if err := c.Validate(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": validationFields(err)})
	}

	var user models.User
	if err := database.DB.Where("email = ?", c.Param("email")).First(&user).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "User not found"})
	}
	if err := database.DB.Model(&user).Update("mode", p.Mode).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Mode updated successfully", "mode": p.Mode})
}
