package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ayesh156/card-marking-system/database"
	"github.com/ayesh156/card-marking-system/models"
)

// ChildHandler serves the legacy roster kept for the old marking UI.
type ChildHandler struct{}

func NewChildHandler() *ChildHandler { return &ChildHandler{} }

type childPayload struct {
	Sno       string  `json:"sno" validate:"required,max=20"`
	Name      string  `json:"name" validate:"required,max=100"`
	Address1  *string `json:"address1"`
	Address2  *string `json:"address2"`
	School    *string `json:"school"`
	GName     *string `json:"gName" validate:"omitempty,max=100"`
	GMobile   *string `json:"gMobile" validate:"omitempty,max=10"`
	GWhatsapp *string `json:"gWhatsapp" validate:"required,max=10"`
	Gender    *string `json:"gender" validate:"omitempty,max=10"`
	Dob       *string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
}

func (p *childPayload) apply(ch *models.Child) {
	ch.Sno = strings.TrimSpace(p.Sno)
	ch.Name = strings.Join(strings.Fields(p.Name), " ")
	ch.Address1 = p.Address1
	ch.Address2 = p.Address2
	ch.School = p.School
	ch.GName = p.GName
	ch.GMobile = p.GMobile
	ch.GWhatsapp = p.GWhatsapp
	ch.Gender = p.Gender
	if p.Dob != nil {
		if d, err := time.Parse("2006-01-02", *p.Dob); err == nil {
			ch.Dob = &d
		}
	}
}

// List handles GET /children.
func (h *ChildHandler) List(c echo.Context) error {
	var children []models.Child
	if err := database.DB.Order("id ASC").Find(&children).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	return c.JSON(http.StatusOK, children)
}

// Create handles POST /children.
func (h *ChildHandler) Create(c echo.Context) error {
	var p childPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid payload."})
	}
	if err := c.Validate(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": validationFields(err)})
	}

	var n int64
	database.DB.Model(&models.Child{}).Where("sno = ?", strings.TrimSpace(p.Sno)).Count(&n)
	if n > 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":  "VALIDATION_ERROR",
			"fields": map[string]string{"sno": "The sno has already been taken."},
		})
	}

	var ch models.Child
	p.apply(&ch)
	if err := database.DB.Create(&ch).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message":  "Student created successfully!",
		"children": ch,
	})
}

// Update handles PUT /children/:id.
func (h *ChildHandler) Update(c echo.Context) error {
	var ch models.Child
	if err := database.DB.First(&ch, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Student not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}

	var p childPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid payload."})
	}
	if err := c.Validate(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": validationFields(err)})
	}

	var n int64
	database.DB.Model(&models.Child{}).
		Where("sno = ? AND id <> ?", strings.TrimSpace(p.Sno), ch.ID).
		Count(&n)
	if n > 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":  "VALIDATION_ERROR",
			"fields": map[string]string{"sno": "The sno has already been taken."},
		})
	}

	p.apply(&ch)
	if err := database.DB.Save(&ch).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":  "Student updated successfully!",
		"children": ch,
	})
}
