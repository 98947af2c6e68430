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

type StudentHandler struct{}

func NewStudentHandler() *StudentHandler { return &StudentHandler{} }

type studentPayload struct {
	Sno         string  `json:"sno" validate:"required,max=20"`
	Name        string  `json:"name" validate:"required,max=100"`
	Address1    *string `json:"address1"`
	Address2    *string `json:"address2"`
	School      *string `json:"school"`
	GName       *string `json:"g_name" validate:"omitempty,max=100"`
	GMobile     *string `json:"g_mobile" validate:"omitempty,max=10"`
	GWhatsapp   *string `json:"g_whatsapp" validate:"omitempty,max=10"`
	Gender      *string `json:"gender" validate:"omitempty,max=10"`
	Dob         *string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Maths       *bool   `json:"maths" validate:"required"`
	English     *bool   `json:"english" validate:"required"`
	Scholarship *bool   `json:"scholarship" validate:"required"`
	Grade       *string `json:"grade" validate:"omitempty,max=1"`
}

func (p *studentPayload) normalize() {
	p.Sno = strings.TrimSpace(p.Sno)
	p.Name = strings.Join(strings.Fields(p.Name), " ")
	for _, f := range []**string{&p.Address1, &p.Address2, &p.School, &p.GName, &p.GMobile, &p.GWhatsapp, &p.Gender, &p.Grade} {
		if *f != nil {
			t := strings.TrimSpace(**f)
			if t == "" {
				*f = nil
			} else {
				**f = t
			}
		}
	}
}

func (p *studentPayload) apply(s *models.Student) {
	s.Sno = p.Sno
	s.Name = p.Name
	s.Address1 = p.Address1
	s.Address2 = p.Address2
	s.School = p.School
	s.GName = p.GName
	s.GMobile = p.GMobile
	s.GWhatsapp = p.GWhatsapp
	s.Gender = p.Gender
	s.Maths = *p.Maths
	s.English = *p.English
	s.Scholarship = *p.Scholarship
	s.Grade = p.Grade
	if p.Dob != nil {
		if d, err := time.Parse("2006-01-02", *p.Dob); err == nil {
			s.Dob = &d
		}
	} else {
		s.Dob = nil
	}
}

// snoTaken checks the serial-number uniqueness, ignoring the row being
// updated.
func snoTaken(sno string, excludeID uint) bool {
	var n int64
	tx := database.DB.Model(&models.Student{}).Where("sno = ?", sno)
	if excludeID > 0 {
		tx = tx.Where("id <> ?", excludeID)
	}
	tx.Count(&n)
	return n > 0
}

// List handles GET /students.
func (h *StudentHandler) List(c echo.Context) error {
	var students []models.Student
	if err := database.DB.Order("id ASC").Find(&students).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	return c.JSON(http.StatusOK, students)
}

// Search handles GET /students/search?name=.
func (h *StudentHandler) Search(c echo.Context) error {
	name := c.QueryParam("name")
	var students []models.Student
	if err := database.DB.
		Where("name LIKE ?", "%"+name+"%").
		Find(&students).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	return c.JSON(http.StatusOK, students)
}

// Get handles GET /students/:id.
func (h *StudentHandler) Get(c echo.Context) error {
	var s models.Student
	if err := database.DB.First(&s, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Student not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	return c.JSON(http.StatusOK, s)
}

// Create handles POST /students.
func (h *StudentHandler) Create(c echo.Context) error {
	var p studentPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid payload."})
	}
	p.normalize()
	if err := c.Validate(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": validationFields(err)})
	}
	if snoTaken(p.Sno, 0) {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":  "VALIDATION_ERROR",
			"fields": map[string]string{"sno": "The sno has already been taken."},
		})
	}

	var s models.Student
	p.apply(&s)
	s.Status = true
	if err := database.DB.Create(&s).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Student created successfully!",
		"student": s,
	})
}

// Update handles PUT /students/:id.
func (h *StudentHandler) Update(c echo.Context) error {
	var s models.Student
	if err := database.DB.First(&s, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Student not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}

	var p studentPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid payload."})
	}
	p.normalize()
	if err := c.Validate(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": validationFields(err)})
	}
	if snoTaken(p.Sno, s.ID) {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":  "VALIDATION_ERROR",
			"fields": map[string]string{"sno": "The sno has already been taken."},
		})
	}

	p.apply(&s)
	if err := database.DB.Save(&s).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Student updated successfully!",
		"student": s,
	})
}

// Disable handles PUT /students/:id/status — the soft delete.
func (h *StudentHandler) Disable(c echo.Context) error {
	var s models.Student
	if err := database.DB.First(&s, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Student not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	if err := database.DB.Model(&s).Update("status", false).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Student deleted successfully!"})
}

// SetStatusBySno handles PUT /status/sno/:sno — re-enabling (or
// disabling) a student via the external serial number.
func (h *StudentHandler) SetStatusBySno(c echo.Context) error {
	var p struct {
		Status *bool `json:"status" validate:"required"`
	}
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid payload."})
	}
	if err := c.Validate(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "VALIDATION_ERROR", "fields": validationFields(err)})
	}

	var s models.Student
	if err := database.DB.Where("sno = ?", c.Param("sno")).First(&s).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Student not found"})
	}
	if err := database.DB.Model(&s).Update("status", *p.Status).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Student enabled successfully!"})
}
