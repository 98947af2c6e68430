package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ayesh156/card-marking-system/config"
	"github.com/ayesh156/card-marking-system/database"
	"github.com/ayesh156/card-marking-system/models"
	"github.com/ayesh156/card-marking-system/whatsapp"
)

type ReportHandler struct {
	WA *whatsapp.Client
}

func NewReportHandler(cfg *config.Config) *ReportHandler {
	return &ReportHandler{WA: whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppToken)}
}

// classMap translates the dashboard's one-letter class codes.
var classMap = map[string]string{
	"E": "English",
	"S": "Scholarship",
	"M": "Mathematics",
}

type weekFlags struct {
	Week1 *bool `json:"week1"`
	Week2 *bool `json:"week2"`
	Week3 *bool `json:"week3"`
	Week4 *bool `json:"week4"`
	Week5 *bool `json:"week5"`
}

type weekStatusPayload struct {
	ChildID   uint       `json:"child_id" validate:"required"`
	TuitionID uint       `json:"tuition_id" validate:"required"`
	Weeks     *weekFlags `json:"weeks" validate:"required"`
}

// WeekStatus handles POST /reports: find-or-create the report row for the
// current period and merge only the week flags present in the payload.
func (h *ReportHandler) WeekStatus(c echo.Context) error {
	var p weekStatusPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid payload."})
	}
	if err := c.Validate(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": validationFields(err)})
	}

	if err := database.DB.First(&models.Student{}, p.ChildID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Student not found."})
	}
	if err := database.DB.First(&models.Tuition{}, p.TuitionID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Tuition not found."})
	}

	per, err := currentPeriod(database.DB, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}

	var rep models.StudentReport
	err = database.DB.
		Where("student_id = ? AND tuition_id = ? AND year_id = ? AND month_id = ?",
			p.ChildID, p.TuitionID, per.YearID, per.MonthID).
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
		rep = models.StudentReport{
			StudentID: p.ChildID,
			TuitionID: p.TuitionID,
			YearID:    per.YearID,
			MonthID:   per.MonthID,
			Week1:     boolPtrOr(p.Weeks.Week1, false),
			Week2:     boolPtrOr(p.Weeks.Week2, false),
			Week3:     boolPtrOr(p.Weeks.Week3, false),
			Week4:     boolPtrOr(p.Weeks.Week4, false),
			Week5:     boolPtrOr(p.Weeks.Week5, false),
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

type paidStatusPayload struct {
	ChildID   uint   `json:"child_id" validate:"required"`
	TuitionID uint   `json:"tuition_id" validate:"required"`
	Paid      *bool  `json:"paid" validate:"required"`
	Email     string `json:"email"`
}

// PaidStatus handles POST /paid: upsert the paid flag for the current period
// and, when the payment is confirmed, message the guardian with the
// operator's after-payment template.
func (h *ReportHandler) PaidStatus(c echo.Context) error {
	var p paidStatusPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid payload."})
	}
	if err := c.Validate(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": validationFields(err)})
	}
	if p.Email == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "User email is required."})
	}

	var student models.Student
	if err := database.DB.First(&student, p.ChildID).Error; err != nil || student.GWhatsapp == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": fmt.Sprintf("Student or WhatsApp number not found for student ID: %d", p.ChildID),
		})
	}

	var user models.User
	if err := database.DB.Where("email = ?", p.Email).First(&user).Error; err != nil ||
		user.AfterPaymentTemplate == nil || *user.AfterPaymentTemplate == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "After payment template not found for user email: " + p.Email,
		})
	}

	per, err := currentPeriod(database.DB, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}

	var rep models.StudentReport
	err = database.DB.
		Where("student_id = ? AND tuition_id = ? AND year_id = ? AND month_id = ?",
			p.ChildID, p.TuitionID, per.YearID, per.MonthID).
		First(&rep).Error

	status := http.StatusOK
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rep = models.StudentReport{
			StudentID: p.ChildID,
			TuitionID: p.TuitionID,
			YearID:    per.YearID,
			MonthID:   per.MonthID,
			Paid:      *p.Paid,
		}
		if err := database.DB.Create(&rep).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
		}
		status = http.StatusCreated
	case err == nil:
		if err := database.DB.Model(&rep).Update("paid", *p.Paid).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
		}
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}

	if *p.Paid {
		// best effort; a failed notification must not fail the payment mark
		if _, err := h.WA.SendTemplate(*student.GWhatsapp, *user.AfterPaymentTemplate); err != nil {
			c.Logger().Errorf("after-payment message to %s failed: %v", *student.GWhatsapp, err)
		}
	}

	return c.JSON(status, map[string]any{
		"message": "Paid status updated successfully!",
		"data":    rep,
	})
}

// reportRow is the roster row shape the marking and history screens consume.
type reportRow struct {
	ChildID   uint       `json:"child_id"`
	ChildName string     `json:"child_name"`
	Sno       string     `json:"sno"`
	GWhatsapp string     `json:"gWhatsapp"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	Week1     bool       `json:"week1"`
	Week2     bool       `json:"week2"`
	Week3     bool       `json:"week3"`
	Week4     bool       `json:"week4"`
	Week5     bool       `json:"week5"`
	Paid      bool       `json:"paid"`
	Status    *bool      `json:"status,omitempty"`
	Register  bool       `json:"register"`
	NotPaid   *bool      `json:"notpaid,omitempty"`
	Special   *bool      `json:"special,omitempty"`
}

func fillWeeks(row *reportRow, rep *models.StudentReport) {
	if rep == nil {
		return
	}
	row.Week1, row.Week2, row.Week3 = rep.Week1, rep.Week2, rep.Week3
	row.Week4, row.Week5, row.Paid = rep.Week4, rep.Week5, rep.Paid
}

// sharedWhatsappNumbers returns guardian numbers that appear on three or more
// student records (the "special" projection).
func sharedWhatsappNumbers(db *gorm.DB) (map[string]bool, error) {
	var nums []string
	err := db.Model(&models.Student{}).
		Where("g_whatsapp IS NOT NULL AND g_whatsapp <> ''").
		Group("g_whatsapp").
		Having("COUNT(*) >= ?", 3).
		Pluck("g_whatsapp", &nums).Error
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(nums))
	for _, n := range nums {
		set[n] = true
	}
	return set, nil
}

type fetchStudentDataPayload struct {
	SelectedClass string   `json:"selectedClass" validate:"required"`
	Grades        []string `json:"grades" validate:"required,min=1,dive,required"`
	Category      string   `json:"category" validate:"required"`
}

// FetchStudentData handles POST /fetch-student-data: resolve the tuition for
// a category/class/exact grade set and return its roster with current-period
// report flags plus the derived register/special projections.
func (h *ReportHandler) FetchStudentData(c echo.Context) error {
	var p fetchStudentDataPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid payload."})
	}
	className, ok := classMap[p.SelectedClass]
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid class selected"})
	}
	if err := c.Validate(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": validationFields(err)})
	}

	var category models.Category
	if err := database.DB.Where("category_name = ?", p.Category).First(&category).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Category not found"})
	}
	var class models.Class
	if err := database.DB.Where("class_name = ?", className).First(&class).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Class not found"})
	}

	var tuitions []models.Tuition
	if err := database.DB.Preload("Grades").
		Where("category_id = ? AND class_id = ?", category.ID, class.ID).
		Find(&tuitions).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	if len(tuitions) == 0 {
		return c.JSON(http.StatusOK, map[string]any{"students": nil, "tuitionId": nil})
	}

	// only tuitions whose grade set matches the request exactly
	want := append([]string(nil), p.Grades...)
	sort.Strings(want)
	var matching []models.Tuition
	for _, t := range tuitions {
		names := make([]string, 0, len(t.Grades))
		for _, g := range t.Grades {
			names = append(names, g.GradeName)
		}
		sort.Strings(names)
		if equalStrings(names, want) {
			matching = append(matching, t)
		}
	}
	if len(matching) == 0 {
		return c.JSON(http.StatusOK, map[string]any{"students": nil, "tuitionId": tuitions[0].ID})
	}

	matchingIDs := make([]uint, 0, len(matching))
	for _, t := range matching {
		matchingIDs = append(matchingIDs, t.ID)
	}

	if err := deactivateStaleEnrollments(database.DB, time.Now()); err != nil {
		c.Logger().Errorf("stale enrollment sweep failed: %v", err)
	}

	var enrollments []models.StudentTuition
	if err := database.DB.Preload("Student").
		Where("tuition_id IN ?", matchingIDs).
		Find(&enrollments).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}

	shared, err := sharedWhatsappNumbers(database.DB)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}

	per, err := currentPeriod(database.DB, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}

	rows := make([]reportRow, 0, len(enrollments))
	for _, en := range enrollments {
		s := en.Student
		if s == nil {
			continue
		}
		var rep models.StudentReport
		var repPtr *models.StudentReport
		if err := database.DB.
			Where("student_id = ? AND tuition_id IN ? AND year_id = ? AND month_id = ?",
				s.ID, matchingIDs, per.YearID, per.MonthID).
			First(&rep).Error; err == nil {
			repPtr = &rep
		}

		status := en.Status
		special := shared[derefStr(s.GWhatsapp)] && en.Status
		row := reportRow{
			ChildID:   s.ID,
			ChildName: s.Name,
			Sno:       s.Sno,
			GWhatsapp: derefStr(s.GWhatsapp),
			Status:    &status,
			Register:  s.Registered(),
			Special:   &special,
		}
		fillWeeks(&row, repPtr)
		rows = append(rows, row)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"tuitionId": matchingIDs[0],
		"students":  rows,
	})
}

// ByGrade handles GET /reports/:grade: active students of one grade with
// their current-period report flags.
func (h *ReportHandler) ByGrade(c echo.Context) error {
	grade := c.Param("grade")

	var students []models.Student
	if err := database.DB.
		Where("grade = ? AND status = ?", grade, true).
		Order("sno ASC").
		Find(&students).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}

	per, err := currentPeriod(database.DB, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}

	rows := make([]reportRow, 0, len(students))
	for _, s := range students {
		var rep models.StudentReport
		var repPtr *models.StudentReport
		if err := database.DB.
			Where("student_id = ? AND year_id = ? AND month_id = ?", s.ID, per.YearID, per.MonthID).
			First(&rep).Error; err == nil {
			repPtr = &rep
		}
		row := reportRow{
			ChildID:   s.ID,
			ChildName: s.Name,
			Sno:       s.Sno,
			GWhatsapp: derefStr(s.GWhatsapp),
			Register:  s.Registered(),
		}
		fillWeeks(&row, repPtr)
		rows = append(rows, row)
	}
	return c.JSON(http.StatusOK, rows)
}

// History handles GET /history?tuitionId&year&month (tuition also resolvable
// via grade+class). Adds the dayHeaders strip and the notpaid/special flags.
func (h *ReportHandler) History(c echo.Context) error {
	year := atoiOr(c.QueryParam("year"), 0)
	monthNum := atoiOr(c.QueryParam("month"), 0)
	if year == 0 || monthNum < 1 || monthNum > 12 {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Invalid year or month."})
	}
	month := time.Month(monthNum)

	tuition, err := h.resolveTuition(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Tuition not found."})
	}

	per, err := lookupPeriod(database.DB, year, month)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Invalid year or month."})
	}

	var day models.Day
	if err := database.DB.First(&day, tuition.DayID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Day not found."})
	}

	dayHeaders := weekdayHeaders(year, month, day.Weekday())

	var enrollments []models.StudentTuition
	if err := database.DB.Preload("Student").
		Where("tuition_id = ?", tuition.ID).
		Find(&enrollments).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	if len(enrollments) == 0 {
		return c.JSON(http.StatusOK, map[string]any{"students": nil, "dayHeaders": dayHeaders})
	}

	var reports []models.StudentReport
	if err := database.DB.
		Where("tuition_id = ? AND year_id = ? AND month_id = ?", tuition.ID, per.YearID, per.MonthID).
		Find(&reports).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	reportsByStudent := make(map[uint]models.StudentReport, len(reports))
	for _, r := range reports {
		reportsByStudent[r.StudentID] = r
	}

	// previous month feeds the "attended but never paid" flag
	prevAttended := map[uint]int{}
	prevPaid := map[uint]bool{}
	if prevPer, ok := previousPeriod(database.DB, year, month); ok {
		var prevReports []models.StudentReport
		if err := database.DB.
			Where("tuition_id = ? AND year_id = ? AND month_id = ?", tuition.ID, prevPer.YearID, prevPer.MonthID).
			Find(&prevReports).Error; err == nil {
			for _, r := range prevReports {
				prevAttended[r.StudentID] = r.WeeksAttended()
				prevPaid[r.StudentID] = r.Paid
			}
		}
	}

	shared, err := sharedWhatsappNumbers(database.DB)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}

	rows := make([]reportRow, 0, len(enrollments))
	for _, en := range enrollments {
		s := en.Student
		if s == nil {
			continue
		}
		var repPtr *models.StudentReport
		if rep, ok := reportsByStudent[s.ID]; ok {
			repPtr = &rep
		}

		notPaid := false
		if attended, ok := prevAttended[s.ID]; ok {
			notPaid = attended >= 2 && !prevPaid[s.ID]
		}

		status := en.Status
		special := shared[derefStr(s.GWhatsapp)]
		created := s.CreatedAt
		row := reportRow{
			ChildID:   s.ID,
			ChildName: s.Name,
			Sno:       s.Sno,
			GWhatsapp: derefStr(s.GWhatsapp),
			CreatedAt: &created,
			Status:    &status,
			Register:  s.Registered() && s.Gender != nil,
			NotPaid:   &notPaid,
			Special:   &special,
		}
		fillWeeks(&row, repPtr)
		rows = append(rows, row)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"students":   rows,
		"dayHeaders": dayHeaders,
	})
}

func (h *ReportHandler) resolveTuition(c echo.Context) (*models.Tuition, error) {
	if id := atoiOr(c.QueryParam("tuitionId"), 0); id > 0 {
		var t models.Tuition
		if err := database.DB.First(&t, id).Error; err != nil {
			return nil, err
		}
		return &t, nil
	}

	// fall back to grade+class resolution
	className, ok := classMap[c.QueryParam("class")]
	if !ok {
		className = c.QueryParam("class")
	}
	grade := c.QueryParam("grade")

	var class models.Class
	if err := database.DB.Where("class_name = ?", className).First(&class).Error; err != nil {
		return nil, err
	}
	var t models.Tuition
	err := database.DB.
		Joins("JOIN tuitions_has_grades thg ON thg.tuition_id = tuitions.id").
		Joins("JOIN grades g ON g.id = thg.grade_id").
		Where("tuitions.class_id = ? AND g.grade_name = ?", class.ID, grade).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// weekdayHeaders lists the MM/DD dates of the weekday's occurrences within
// the month, one per attendance column.
func weekdayHeaders(year int, month time.Month, weekday time.Weekday) []string {
	headers := []string{}
	for n := 1; n <= 5; n++ {
		d := nthWeekdayOfMonth(year, month, weekday, n)
		if d.Month() != month {
			break
		}
		headers = append(headers, d.Format("01/02"))
	}
	return headers
}

// deactivateStaleEnrollments flips enrollments to inactive when they are at
// least two months old and have produced no report in that window.
func deactivateStaleEnrollments(db *gorm.DB, now time.Time) error {
	twoMonthsAgo := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -2, 0)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var stale []models.StudentTuition
	if err := db.Where("created_at <= ? AND status = ?", twoMonthsAgo, true).Find(&stale).Error; err != nil {
		return err
	}
	for _, en := range stale {
		var n int64
		if err := db.Model(&models.StudentReport{}).
			Where("student_id = ? AND tuition_id = ? AND created_at BETWEEN ? AND ?",
				en.StudentID, en.TuitionID, twoMonthsAgo, monthStart).
			Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			if err := db.Model(&models.StudentTuition{}).
				Where("id = ?", en.ID).
				Update("status", false).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func derefStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
