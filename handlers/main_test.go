package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ayesh156/card-marking-system/database"
	"github.com/ayesh156/card-marking-system/models"
)

// setupDB opens a fresh in-memory database, migrates the schema and installs
// it as the package-global connection.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps the :memory: database alive across queries
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	database.DB = db
	return db
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// newRequest builds an echo context carrying an optional JSON body.
func newRequest(e *echo.Echo, method, path string, body any) (echo.Context, *httptest.ResponseRecorder) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	return ctx, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func createStudent(t *testing.T, db *gorm.DB, sno, name string, mutate ...func(*models.Student)) models.Student {
	t.Helper()
	s := models.Student{
		Sno:       sno,
		Name:      name,
		Address1:  strPtr("12 Main St"),
		School:    strPtr("Central College"),
		GName:     strPtr("Guardian"),
		GMobile:   strPtr("0711111111"),
		GWhatsapp: strPtr("0712345678"),
		Gender:    strPtr("male"),
		Dob:       timePtr(time.Date(2012, 4, 1, 0, 0, 0, 0, time.UTC)),
		Maths:     true,
		Status:    true,
	}
	for _, m := range mutate {
		m(&s)
	}
	require.NoError(t, db.Create(&s).Error)
	return s
}

func timePtr(t time.Time) *time.Time { return &t }

// createTuition sets up the category/class/grade rows around one tuition.
func createTuition(t *testing.T, db *gorm.DB, className, categoryName string, dayID uint, gradeNames ...string) models.Tuition {
	t.Helper()
	var category models.Category
	require.NoError(t, db.Where(models.Category{CategoryName: categoryName}).FirstOrCreate(&category).Error)

	var class models.Class
	require.NoError(t, db.Where(models.Class{ClassName: className, Grade: "5"}).
		Attrs(models.Class{DayID: dayID}).
		FirstOrCreate(&class).Error)

	grades := make([]models.Grade, 0, len(gradeNames))
	for _, g := range gradeNames {
		var grade models.Grade
		require.NoError(t, db.Where(models.Grade{GradeName: g}).FirstOrCreate(&grade).Error)
		grades = append(grades, grade)
	}

	tuition := models.Tuition{CategoryID: category.ID, ClassID: class.ID, DayID: dayID, Grades: grades}
	require.NoError(t, db.Create(&tuition).Error)
	return tuition
}

func enroll(t *testing.T, db *gorm.DB, studentID, tuitionID uint, active bool) models.StudentTuition {
	t.Helper()
	en := models.StudentTuition{StudentID: studentID, TuitionID: tuitionID, Status: active}
	require.NoError(t, db.Create(&en).Error)
	return en
}

func createUser(t *testing.T, db *gorm.DB, email string, mutate ...func(*models.User)) models.User {
	t.Helper()
	u := models.User{
		Name:                 "Operator",
		Email:                email,
		Status:               true,
		Mode:                 "D",
		BeforePaymentWeek3:   strPtr("before_week3"),
		BeforePaymentWeek4:   strPtr("before_week4"),
		AfterPaymentTemplate: strPtr("after_payment"),
	}
	for _, m := range mutate {
		m(&u)
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}
