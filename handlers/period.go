package handlers

import (
	"time"

	"gorm.io/gorm"

	"github.com/ayesh156/card-marking-system/models"
)

// period identifies the year/month rows every report row hangs off.
type period struct {
	YearID  uint
	MonthID uint
	Year    int
	Month   time.Month
}

// currentPeriod resolves (and lazily creates) the year and month rows for the
// given instant. Concurrent first use can race on the insert; the unique
// indexes on years.year and months.month keep the tables duplicate-free.
func currentPeriod(db *gorm.DB, now time.Time) (period, error) {
	return resolvePeriod(db, now.Year(), now.Month(), true)
}

// lookupPeriod resolves an existing period without creating reference rows.
// Returns gorm.ErrRecordNotFound when either row is missing.
func lookupPeriod(db *gorm.DB, year int, month time.Month) (period, error) {
	return resolvePeriod(db, year, month, false)
}

func resolvePeriod(db *gorm.DB, year int, month time.Month, create bool) (period, error) {
	var y models.Year
	var m models.Month

	if create {
		if err := db.Where(models.Year{Year: year}).FirstOrCreate(&y).Error; err != nil {
			return period{}, err
		}
		if err := db.Where(models.Month{Month: month.String()}).FirstOrCreate(&m).Error; err != nil {
			return period{}, err
		}
	} else {
		if err := db.Where("year = ?", year).First(&y).Error; err != nil {
			return period{}, err
		}
		if err := db.Where("month = ?", month.String()).First(&m).Error; err != nil {
			return period{}, err
		}
	}

	return period{YearID: y.ID, MonthID: m.ID, Year: year, Month: month}, nil
}

// previousPeriod looks up the period one month before (year, month), without
// creating rows; a missing row means there is simply no history.
func previousPeriod(db *gorm.DB, year int, month time.Month) (period, bool) {
	prev := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	p, err := lookupPeriod(db, prev.Year(), prev.Month())
	if err != nil {
		return period{}, false
	}
	return p, true
}

// weekOfMonth maps a date to its 1-based week slot within the month, capped
// at the five report columns.
func weekOfMonth(t time.Time) int {
	w := (t.Day()-1)/7 + 1
	if w > 5 {
		w = 5
	}
	return w
}

// nthWeekdayOfMonth returns the date of the n-th (1-based) occurrence of the
// weekday within the month.
func nthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+(n-1)*7)
}
