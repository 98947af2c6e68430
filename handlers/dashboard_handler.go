package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ayesh156/card-marking-system/database"
	"github.com/ayesh156/card-marking-system/models"
)

type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler { return &DashboardHandler{} }

// subjectColumn maps the dashboard's class code to the student subject flag.
var subjectColumn = map[string]string{
	"E": "english",
	"S": "scholarship",
	"M": "maths",
}

// Stats handles GET /dashboard-stats?selectedClass=E|S|M.
// All four metrics only count active students carrying the selected subject
// flag; percentages are 0 when the filtered total is 0.
func (h *DashboardHandler) Stats(c echo.Context) error {
	col, ok := subjectColumn[c.QueryParam("selectedClass")]
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid class selected"})
	}

	var ids []uint
	if err := database.DB.Model(&models.Student{}).
		Where("status = ?", true).
		Where(col+" = ?", true).
		Pluck("id", &ids).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	total := int64(len(ids))

	now := time.Now()

	paidThisMonth, err := countReports(database.DB, ids, now, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("paid = ?", true)
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}

	lastWeek := now.AddDate(0, 0, -7)
	weekCol := []string{"week1", "week2", "week3", "week4", "week5"}[weekOfMonth(lastWeek)-1]
	attendedLastWeek, err := countReports(database.DB, ids, lastWeek, func(tx *gorm.DB) *gorm.DB {
		return tx.Where(weekCol+" = ?", true)
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}

	lastMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	paidLastMonth, err := countReports(database.DB, ids, lastMonth, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("paid = ?", true)
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"total_students":                  total,
		"paid_students":                   paidThisMonth,
		"paid_student_percentage":         pct(paidThisMonth, total),
		"attendance_last_week":            attendedLastWeek,
		"attendance_last_week_percentage": pct(attendedLastWeek, total),
		"paid_last_month":                 paidLastMonth,
		"paid_last_month_percentage":      pct(paidLastMonth, total),
	})
}

// countReports counts distinct filtered students with a report row in the
// period containing at, further narrowed by cond. A period with no reference
// rows yet simply counts as zero.
func countReports(db *gorm.DB, studentIDs []uint, at time.Time, cond func(*gorm.DB) *gorm.DB) (int64, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}
	per, err := lookupPeriod(db, at.Year(), at.Month())
	if err != nil {
		return 0, nil
	}
	var n int64
	tx := db.Model(&models.StudentReport{}).
		Where("student_id IN ?", studentIDs).
		Where("year_id = ? AND month_id = ?", per.YearID, per.MonthID).
		Distinct("student_id")
	if err := cond(tx).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// MonthlyAttendance handles GET /monthly-attendance-stats: attended week-slot
// totals per month of the current year, in calendar order.
func (h *DashboardHandler) MonthlyAttendance(c echo.Context) error {
	type monthCount struct {
		Month string `json:"month"`
		Count int    `json:"count"`
	}

	var year models.Year
	if err := database.DB.Where("year = ?", time.Now().Year()).First(&year).Error; err != nil {
		return c.JSON(http.StatusOK, []monthCount{})
	}

	type agg struct {
		Month string
		Count int
	}
	var rows []agg
	err := database.DB.Model(&models.StudentReport{}).
		Select(`months.month AS month,
			SUM((CASE WHEN week1 THEN 1 ELSE 0 END) +
			    (CASE WHEN week2 THEN 1 ELSE 0 END) +
			    (CASE WHEN week3 THEN 1 ELSE 0 END) +
			    (CASE WHEN week4 THEN 1 ELSE 0 END) +
			    (CASE WHEN week5 THEN 1 ELSE 0 END)) AS count`).
		Joins("JOIN months ON months.id = student_reports.month_id").
		Where("student_reports.year_id = ?", year.ID).
		Group("months.month").
		Scan(&rows).Error
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}

	byMonth := make(map[string]int, len(rows))
	for _, r := range rows {
		byMonth[r.Month] = r.Count
	}

	out := make([]monthCount, 0, 12)
	for m := time.January; m <= time.December; m++ {
		out = append(out, monthCount{Month: m.String(), Count: byMonth[m.String()]})
	}
	return c.JSON(http.StatusOK, out)
}

// RecentPayments handles GET /recent-payments: the latest paid reports with
// student and period context.
func (h *DashboardHandler) RecentPayments(c echo.Context) error {
	limit := atoiOr(c.QueryParam("limit"), 10)
	if limit < 1 || limit > 50 {
		limit = 10
	}

	type paymentRow struct {
		StudentID   uint      `json:"student_id"`
		StudentName string    `json:"student_name"`
		Sno         string    `json:"sno"`
		Month       string    `json:"month"`
		Year        int       `json:"year"`
		PaidAt      time.Time `json:"paid_at"`
	}
	var rows []paymentRow
	err := database.DB.Model(&models.StudentReport{}).
		Select(`student_reports.student_id, students.name AS student_name, students.sno,
			months.month AS month, years.year AS year, student_reports.updated_at AS paid_at`).
		Joins("JOIN students ON students.id = student_reports.student_id").
		Joins("JOIN months ON months.id = student_reports.month_id").
		Joins("JOIN years ON years.id = student_reports.year_id").
		Where("student_reports.paid = ?", true).
		Order("student_reports.updated_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	return c.JSON(http.StatusOK, rows)
}

// ClassesCount handles GET /classes-count.
func (h *DashboardHandler) ClassesCount(c echo.Context) error {
	var n int64
	if err := database.DB.Model(&models.Class{}).Count(&n).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": n})
}
