package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ayesh156/card-marking-system/database"
	"github.com/ayesh156/card-marking-system/models"
)

// ChildReportHandler serves the legacy child_reports flow, keyed by
// (child, year, month) with no tuition dimension.
type ChildReportHandler struct{}

func NewChildReportHandler() *ChildReportHandler { return &ChildReportHandler{} }

type saveReportPayload struct {
	ChildID uint       `json:"child_id" validate:"required"`
	Weeks   *weekFlags `json:"weeks" validate:"required"`
}

// Save handles POST /save_report: the legacy week-flag upsert.
func (h *ChildReportHandler) Save(c echo.Context) error {
	var p saveReportPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid payload."})
	}
	if err := c.Validate(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": validationFields(err)})
	}
	if err := database.DB.First(&models.Child{}, p.ChildID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Student not found."})
	}

	per, err := currentPeriod(database.DB, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}

	var rep models.ChildReport
	err = database.DB.
		Where("child_id = ? AND year_id = ? AND month_id = ?", p.ChildID, per.YearID, per.MonthID).
		First(&rep).Error

	switch {
	case err == nil:
		updates := map[string]any{}
		for col, v := range map[string]*bool{
			"week1": p.Weeks.Week1, "week2": p.Weeks.Week2, "week3": p.Weeks.Week3,
			"week4": p.Weeks.Week4, "week5": p.Weeks.Week5,
		} {
			if v != nil {
				updates[col] = *v
			}
		}
		if len(updates) > 0 {
			if err := database.DB.Model(&rep).Updates(updates).Error; err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
			}
		}
		return c.JSON(http.StatusOK, map[string]any{
			"message": "Student report updated successfully!",
			"data":    rep,
		})

	case errors.Is(err, gorm.ErrRecordNotFound):
		rep = models.ChildReport{
			ChildID: p.ChildID,
			YearID:  per.YearID,
			MonthID: per.MonthID,
			Week1:   boolPtrOr(p.Weeks.Week1, false),
			Week2:   boolPtrOr(p.Weeks.Week2, false),
			Week3:   boolPtrOr(p.Weeks.Week3, false),
			Week4:   boolPtrOr(p.Weeks.Week4, false),
			Week5:   boolPtrOr(p.Weeks.Week5, false),
		}
		if err := database.DB.Create(&rep).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
		}
		return c.JSON(http.StatusCreated, map[string]any{
			"message": "Student report created successfully!",
			"data":    rep,
		})

	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
}

type updatePaidPayload struct {
	ChildID uint  `json:"child_id" validate:"required"`
	Paid    *bool `json:"paid" validate:"required"`
}

// UpdatePaid handles POST /update_paid_status.
func (h *ChildReportHandler) UpdatePaid(c echo.Context) error {
	var p updatePaidPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid payload."})
	}
	if err := c.Validate(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": validationFields(err)})
	}

	per, err := currentPeriod(database.DB, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}

	var rep models.ChildReport
	err = database.DB.
		Where("child_id = ? AND year_id = ? AND month_id = ?", p.ChildID, per.YearID, per.MonthID).
		First(&rep).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rep = models.ChildReport{
			ChildID: p.ChildID,
			YearID:  per.YearID,
			MonthID: per.MonthID,
			Paid:    *p.Paid,
		}
		if err := database.DB.Create(&rep).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
		}
		return c.JSON(http.StatusCreated, map[string]any{
			"message": "Paid status updated successfully!",
			"data":    rep,
		})
	case err == nil:
		if err := database.DB.Model(&rep).Update("paid", *p.Paid).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"message": "Paid status updated successfully!",
			"data":    rep,
		})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
}

// ForChild handles GET /child_reports/:childId: every report of one child.
func (h *ChildReportHandler) ForChild(c echo.Context) error {
	var child models.Child
	if err := database.DB.First(&child, "id = ?", c.Param("childId")).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Student not found."})
	}
	var reports []models.ChildReport
	if err := database.DB.
		Where("child_id = ?", child.ID).
		Order("year_id ASC, month_id ASC").
		Find(&reports).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	return c.JSON(http.StatusOK, reports)
}

// All handles GET /child-reports: every child with its current-month report
// flags and the register projection.
func (h *ChildReportHandler) All(c echo.Context) error {
	per, err := currentPeriod(database.DB, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}

	var children []models.Child
	if err := database.DB.Order("id ASC").Find(&children).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}

	rows := make([]reportRow, 0, len(children))
	for _, ch := range children {
		var rep models.ChildReport
		hasReport := database.DB.
			Where("child_id = ? AND year_id = ? AND month_id = ?", ch.ID, per.YearID, per.MonthID).
			First(&rep).Error == nil

		row := reportRow{
			ChildID:   ch.ID,
			ChildName: ch.Name,
			Sno:       ch.Sno,
			GWhatsapp: derefStr(ch.GWhatsapp),
			Register:  ch.Registered(),
		}
		if hasReport {
			row.Week1, row.Week2, row.Week3 = rep.Week1, rep.Week2, rep.Week3
			row.Week4, row.Week5, row.Paid = rep.Week4, rep.Week5, rep.Paid
		}
		rows = append(rows, row)
	}
	return c.JSON(http.StatusOK, rows)
}
