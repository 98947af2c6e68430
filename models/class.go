package models

import "time"

// Day is the weekday reference table: 1=Sunday … 7=Saturday, seeded at
// migration time.
type Day struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	DayName string `json:"day_name" gorm:"size:10;uniqueIndex;not null"`

	Classes []Class `json:"-" gorm:"foreignKey:DayID;constraint:OnDelete:CASCADE"`
}

// Weekday converts the 1-based row id to a time.Weekday.
func (d *Day) Weekday() time.Weekday { return time.Weekday(d.ID - 1) }

// Class is a subject offering for one grade with a fixed weekday, used for
// attendance column headers and the per-grade day lookup.
type Class struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ClassName string    `json:"class_name" gorm:"size:20;not null;index:idx_classes_grade_name,priority:2"`
	Grade     string    `json:"grade" gorm:"size:1;not null;index:idx_classes_grade_name,priority:1"`
	DayID     uint      `json:"day_id" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Day *Day `json:"day,omitempty" gorm:"foreignKey:DayID"`
}
