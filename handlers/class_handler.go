package handlers

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ayesh156/card-marking-system/database"
	"github.com/ayesh156/card-marking-system/models"
)

type ClassHandler struct{}

func NewClassHandler() *ClassHandler { return &ClassHandler{} }

type classDayPayload struct {
	Grade string `json:"grade" validate:"required,max=1"`
	Class string `json:"class" validate:"required,max=20"`
	DayID uint   `json:"day_id" validate:"required,min=1,max=7"`
}

// UpsertDay handles POST /days: set the weekday for a (grade, class) pair,
// creating the class row on first use.
func (h *ClassHandler) UpsertDay(c echo.Context) error {
	var p classDayPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid payload."})
	}
	if err := c.Validate(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": validationFields(err)})
	}

	var existing models.Class
	err := database.DB.
		Where("grade = ? AND class_name = ?", p.Grade, p.Class).
		First(&existing).Error

	switch {
	case err == nil:
		if err := database.DB.Model(&existing).Update("day_id", p.DayID).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "Record updated successfully"})

	case errors.Is(err, gorm.ErrRecordNotFound):
		rec := models.Class{Grade: p.Grade, ClassName: p.Class, DayID: p.DayID}
		if err := database.DB.Create(&rec).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "Record created successfully"})

	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
}

// GetDay handles GET /day?grade&class; the day comes back empty when the pair
// has no weekday yet.
func (h *ClassHandler) GetDay(c echo.Context) error {
	grade := c.QueryParam("grade")
	class := c.QueryParam("class")

	var rec models.Class
	if err := database.DB.
		Where("grade = ? AND class_name = ?", grade, class).
		First(&rec).Error; err != nil {
		return c.JSON(http.StatusOK, map[string]any{"day": ""})
	}
	return c.JSON(http.StatusOK, map[string]any{"day": rec.DayID})
}

// Years handles GET /years.
func (h *ClassHandler) Years(c echo.Context) error {
	var years []models.Year
	if err := database.DB.Order("year ASC").Find(&years).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	return c.JSON(http.StatusOK, years)
}

// Months handles GET /months, in calendar order.
func (h *ClassHandler) Months(c echo.Context) error {
	var months []models.Month
	if err := database.DB.Find(&months).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	order := map[string]int{}
	for m := time.January; m <= time.December; m++ {
		order[m.String()] = int(m)
	}
	sort.Slice(months, func(i, j int) bool {
		return order[months[i].Month] < order[months[j].Month]
	})
	return c.JSON(http.StatusOK, months)
}
