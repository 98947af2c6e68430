package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ayesh156/card-marking-system/config"
	"github.com/ayesh156/card-marking-system/database"
	"github.com/ayesh156/card-marking-system/models"
	"github.com/ayesh156/card-marking-system/whatsapp"
)

type ReminderHandler struct {
	WA *whatsapp.Client
}

func NewReminderHandler(cfg *config.Config) *ReminderHandler {
	return &ReminderHandler{WA: whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppToken)}
}

// SendPaymentReminders handles GET /send-payment-reminders?email=.
//
// For every tuition the third and fourth occurrence of its weekday in the
// current month define the reminder windows; when today is the day before one
// of them, every unpaid report with weeks 1-2 attended and the window's
// reminder flag still unset gets nudged once. Windows already past are
// skipped — there is no catch-up.
func (h *ReminderHandler) SendPaymentReminders(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "User email is required."})
	}

	var user models.User
	if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "User not found."})
	}
	if user.BeforePaymentWeek3 == nil || *user.BeforePaymentWeek3 == "" {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "No Before payment template Week 3 found for the provided email."})
	}
	if user.BeforePaymentWeek4 == nil || *user.BeforePaymentWeek4 == "" {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "No Before payment template Week 4 found for the provided email."})
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	per, err := lookupPeriod(database.DB, now.Year(), now.Month())
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Year or month not found."})
	}

	var tuitions []models.Tuition
	if err := database.DB.Preload("Day").Find(&tuitions).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}

	week3Numbers := map[string]bool{}
	week4Numbers := map[string]bool{}
	var messagedStudentIDs []uint

	for _, t := range tuitions {
		if t.Day == nil {
			continue
		}
		wd := t.Day.Weekday()
		thirdWeek := nthWeekdayOfMonth(now.Year(), now.Month(), wd, 3)
		fourthWeek := nthWeekdayOfMonth(now.Year(), now.Month(), wd, 4)

		if today.Equal(thirdWeek.AddDate(0, 0, -1)) {
			ids, err := collectReminders(database.DB, t.ID, per, "reminder_week3", week3Numbers)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
			}
			messagedStudentIDs = append(messagedStudentIDs, ids...)
		}
		if today.Equal(fourthWeek.AddDate(0, 0, -1)) {
			ids, err := collectReminders(database.DB, t.ID, per, "reminder_week4", week4Numbers)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
			}
			messagedStudentIDs = append(messagedStudentIDs, ids...)
		}
	}

	if len(week3Numbers) > 0 {
		h.WA.Broadcast(keys(week3Numbers), *user.BeforePaymentWeek3)
	}
	if len(week4Numbers) > 0 {
		h.WA.Broadcast(keys(week4Numbers), *user.BeforePaymentWeek4)
	}

	if len(messagedStudentIDs) == 0 {
		return c.JSON(http.StatusOK, map[string]any{"message": "No reminders sent."})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":            "Payment reminders processed successfully.",
		"messagedStudentIds": messagedStudentIDs,
	})
}

// collectReminders finds the tuition's reminder candidates (attended weeks
// 1-2, unpaid, this window not yet nudged), marks the window flag and records
// their guardian numbers.
func collectReminders(db *gorm.DB, tuitionID uint, per period, reminderCol string, numbers map[string]bool) ([]uint, error) {
	var reports []models.StudentReport
	err := db.Preload("Student").
		Where("tuition_id = ? AND year_id = ? AND month_id = ?", tuitionID, per.YearID, per.MonthID).
		Where("paid = ? AND week1 = ? AND week2 = ?", false, true, true).
		Where(reminderCol+" = ?", false).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}

	var ids []uint
	for _, rep := range reports {
		if rep.Student == nil || rep.Student.GWhatsapp == nil || *rep.Student.GWhatsapp == "" {
			continue
		}
		if err := db.Model(&models.StudentReport{}).
			Where("id = ?", rep.ID).
			Update(reminderCol, true).Error; err != nil {
			return nil, err
		}
		numbers[*rep.Student.GWhatsapp] = true
		ids = append(ids, rep.StudentID)
	}
	return ids, nil
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
