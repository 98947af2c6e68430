package models

import "time"

type Category struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	CategoryName string `json:"category_name" gorm:"size:50;uniqueIndex;not null"`
}

type Grade struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	GradeName string `json:"grade_name" gorm:"size:10;uniqueIndex;not null"`
}

// Tuition is a scheduled offering: one subject class, one category, a set of
// grades and a weekday.
type Tuition struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CategoryID uint      `json:"category_id" gorm:"not null;index"`
	ClassID    uint      `json:"class_id" gorm:"not null;index"`
	DayID      uint      `json:"day_id" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Class    *Class    `json:"class,omitempty" gorm:"foreignKey:ClassID"`
	Day      *Day      `json:"day,omitempty" gorm:"foreignKey:DayID"`
	Grades   []Grade   `json:"grades,omitempty" gorm:"many2many:tuitions_has_grades"`
}

// StudentTuition records a student's enrollment in a tuition. CreatedAt feeds
// the auto-deactivation of students with no recent reports.
type StudentTuition struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StudentID uint      `json:"student_id" gorm:"not null;uniqueIndex:idx_student_tuition,priority:1"`
	TuitionID uint      `json:"tuition_id" gorm:"not null;uniqueIndex:idx_student_tuition,priority:2"`
	Status    bool      `json:"status" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
	Tuition *Tuition `json:"tuition,omitempty" gorm:"foreignKey:TuitionID;constraint:OnDelete:CASCADE"`
}

func (StudentTuition) TableName() string { return "students_has_tuitions" }
