package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayesh156/card-marking-system/models"
)

func TestUpsertDayCreateThenUpdate(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	h := NewClassHandler()

	ctx, rec := newRequest(e, http.MethodPost, "/days", map[string]any{
		"grade": "5", "class": "Mathematics", "day_id": 7,
	})
	require.NoError(t, h.UpsertDay(ctx))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Record created successfully", decodeBody(t, rec)["message"])

	ctx, rec = newRequest(e, http.MethodPost, "/days", map[string]any{
		"grade": "5", "class": "Mathematics", "day_id": 1,
	})
	require.NoError(t, h.UpsertDay(ctx))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Record updated successfully", decodeBody(t, rec)["message"])

	var count int64
	require.NoError(t, db.Model(&models.Class{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var cls models.Class
	require.NoError(t, db.Where("grade = ? AND class_name = ?", "5", "Mathematics").First(&cls).Error)
	assert.EqualValues(t, 1, cls.DayID)
}

func TestUpsertDayRejectsBadWeekday(t *testing.T) {
	setupDB(t)
	e := newEcho()
	h := NewClassHandler()

	ctx, rec := newRequest(e, http.MethodPost, "/days", map[string]any{
		"grade": "5", "class": "Mathematics", "day_id": 8,
	})
	require.NoError(t, h.UpsertDay(ctx))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDayEmptyWhenUnset(t *testing.T) {
	setupDB(t)
	e := newEcho()
	h := NewClassHandler()

	ctx, rec := newRequest(e, http.MethodGet, "/day?grade=5&class=Mathematics", nil)
	require.NoError(t, h.GetDay(ctx))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", decodeBody(t, rec)["day"])
}

func TestMonthsCalendarOrder(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	h := NewClassHandler()

	// inserted out of order on purpose
	for _, m := range []time.Month{time.May, time.January, time.March} {
		_, err := currentPeriod(db, time.Date(2025, m, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
	}

	ctx, rec := newRequest(e, http.MethodGet, "/months", nil)
	require.NoError(t, h.Months(ctx))
	require.Equal(t, http.StatusOK, rec.Code)

	var months []models.Month
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &months))
	require.Len(t, months, 3)
	assert.Equal(t, "January", months[0].Month)
	assert.Equal(t, "March", months[1].Month)
	assert.Equal(t, "May", months[2].Month)
}

func TestYearsAscending(t *testing.T) {
	db := setupDB(t)
	e := newEcho()
	h := NewClassHandler()

	for _, y := range []int{2026, 2024, 2025} {
		_, err := currentPeriod(db, time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
	}

	ctx, rec := newRequest(e, http.MethodGet, "/years", nil)
	require.NoError(t, h.Years(ctx))
	require.Equal(t, http.StatusOK, rec.Code)

	var years []models.Year
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &years))
	require.Len(t, years, 3)
	assert.Equal(t, 2024, years[0].Year)
	assert.Equal(t, 2026, years[2].Year)
}
