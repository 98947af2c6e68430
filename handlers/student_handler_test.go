package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayesh156/card-marking-system/models"
)

func validStudentBody(sno, name string) map[string]any {
	return map[string]any{
		"sno":         sno,
		"name":        name,
		"maths":       true,
		"english":     false,
		"scholarship": false,
	}
}

func TestStudentCreate(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	h := NewStudentHandler()

	body := validStudentBody("S100", "  Amaya   Perera ")
	body["g_whatsapp"] = "0771234567"
	body["dob"] = "2013-06-20"

	ctx, rec := newRequest(e, http.MethodPost, "/students", body)
	require.NoError(t, h.Create(ctx))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Student created successfully!", decodeBody(t, rec)["message"])

	var s models.Student
	require.NoError(t, db.Where("sno = ?", "S100").First(&s).Error)
	assert.Equal(t, "Amaya Perera", s.Name, "inner whitespace collapses")
	assert.True(t, s.Status)
	assert.True(t, s.Maths)
	require.NotNil(t, s.Dob)
	assert.Equal(t, "2013-06-20", s.Dob.Format("2006-01-02"))
}

func TestStudentCreateDuplicateSno(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	h := NewStudentHandler()
	createStudent(t, db, "S101", "First")

	ctx, rec := newRequest(e, http.MethodPost, "/students", validStudentBody("S101", "Second"))
	require.NoError(t, h.Create(ctx))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	fields := body["fields"].(map[string]any)
	assert.Equal(t, "The sno has already been taken.", fields["sno"])
}

func TestStudentCreateValidation(t *testing.T) {
	setupDB(t)
	e := newEcho()
	h := NewStudentHandler()

	// subject flags are mandatory
	ctx, rec := newRequest(e, http.MethodPost, "/students", map[string]any{
		"sno":  "S102",
		"name": "No Flags",
	})
	require.NoError(t, h.Create(ctx))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	fields := decodeBody(t, rec)["fields"].(map[string]any)
	assert.Contains(t, fields, "maths")
	assert.Contains(t, fields, "english")
	assert.Contains(t, fields, "scholarship")
}

func TestStudentUpdateKeepsOwnSno(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	h := NewStudentHandler()
	s := createStudent(t, db, "S103", "Before")

	body := validStudentBody("S103", "After")
	ctx, rec := newRequest(e, http.MethodPut, "/students/1", body)
	ctx.SetParamNames("id")
	ctx.SetParamValues("1")
	require.NoError(t, h.Update(ctx))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Student
	require.NoError(t, db.First(&got, s.ID).Error)
	assert.Equal(t, "After", got.Name)
	assert.Nil(t, got.GWhatsapp, "omitted optional fields clear")
}

func TestStudentDisableAndReEnable(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	h := NewStudentHandler()
	s := createStudent(t, db, "S104", "Toggle")

	ctx, rec := newRequest(e, http.MethodPut, "/students/1/status", nil)
	ctx.SetParamNames("id")
	ctx.SetParamValues("1")
	require.NoError(t, h.Disable(ctx))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Student deleted successfully!", decodeBody(t, rec)["message"])

	var got models.Student
	require.NoError(t, db.First(&got, s.ID).Error)
	assert.False(t, got.Status)

	ctx, rec = newRequest(e, http.MethodPut, "/status/sno/S104", map[string]any{"status": true})
	ctx.SetParamNames("sno")
	ctx.SetParamValues("S104")
	require.NoError(t, h.SetStatusBySno(ctx))
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, db.First(&got, s.ID).Error)
	assert.True(t, got.Status)
}

func TestStudentSearch(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	h := NewStudentHandler()
	createStudent(t, db, "S105", "Kavindu Silva")
	createStudent(t, db, "S106", "Nethmi Silva")
	createStudent(t, db, "S107", "Ryan Fernando")

	ctx, rec := newRequest(e, http.MethodGet, "/students/search?name=Silva", nil)
	require.NoError(t, h.Search(ctx))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestCreatePersistsInactiveStatus(t *testing.T) {
	db := setupDB(t)

	tuition := createTuition(t, db, "Mathematics", "Primary", 7, "5")
	s := createStudent(t, db, "S108", "Off", func(s *models.Student) { s.Status = false })
	en := enroll(t, db, s.ID, tuition.ID, false)
	u := createUser(t, db, "off-row@example.com", func(u *models.User) { u.Status = false })

	var gotStudent models.Student
	require.NoError(t, db.First(&gotStudent, s.ID).Error)
	assert.False(t, gotStudent.Status)

	var gotEnrollment models.StudentTuition
	require.NoError(t, db.First(&gotEnrollment, en.ID).Error)
	assert.False(t, gotEnrollment.Status)

	var gotUser models.User
	require.NoError(t, db.First(&gotUser, u.ID).Error)
	assert.False(t, gotUser.Status)
}

func TestStudentGetNotFound(t *testing.T) {
	setupDB(t)
	e := newEcho()
	h := NewStudentHandler()

	ctx, rec := newRequest(e, http.MethodGet, "/students/99", nil)
	ctx.SetParamNames("id")
	ctx.SetParamValues("99")
	require.NoError(t, h.Get(ctx))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
