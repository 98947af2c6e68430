package models

import "time"

// StudentReport is the central fact table: one row per
// (student, tuition, year, month). The composite unique index carries the
// upsert invariant; application code only ever find-or-creates.
type StudentReport struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	StudentID     uint      `json:"student_id" gorm:"not null;uniqueIndex:idx_student_reports_key,priority:1"`
	TuitionID     uint      `json:"tuition_id" gorm:"not null;uniqueIndex:idx_student_reports_key,priority:2"`
	YearID        uint      `json:"year_id" gorm:"not null;uniqueIndex:idx_student_reports_key,priority:3"`
	MonthID       uint      `json:"month_id" gorm:"not null;uniqueIndex:idx_student_reports_key,priority:4"`
	Week1         bool      `json:"week1" gorm:"not null;default:false"`
	Week2         bool      `json:"week2" gorm:"not null;default:false"`
	Week3         bool      `json:"week3" gorm:"not null;default:false"`
	Week4         bool      `json:"week4" gorm:"not null;default:false"`
	Week5         bool      `json:"week5" gorm:"not null;default:false"`
	Paid          bool      `json:"paid" gorm:"not null;default:false"`
	ReminderWeek3 bool      `json:"reminder_week3" gorm:"not null;default:false"`
	ReminderWeek4 bool      `json:"reminder_week4" gorm:"not null;default:false"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
	Tuition *Tuition `json:"tuition,omitempty" gorm:"foreignKey:TuitionID;constraint:OnDelete:CASCADE"`
	Year    *Year    `json:"-" gorm:"foreignKey:YearID;constraint:OnDelete:CASCADE"`
	Month   *Month   `json:"-" gorm:"foreignKey:MonthID;constraint:OnDelete:CASCADE"`
}

// WeeksAttended counts the week flags that are set.
func (r *StudentReport) WeeksAttended() int {
	n := 0
	for _, w := range []bool{r.Week1, r.Week2, r.Week3, r.Week4, r.Week5} {
		if w {
			n++
		}
	}
	return n
}

// ChildReport is the legacy fact table keyed by (child, year, month).
type ChildReport struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ChildID   uint      `json:"child_id" gorm:"not null;uniqueIndex:idx_child_reports_key,priority:1"`
	YearID    uint      `json:"year_id" gorm:"not null;uniqueIndex:idx_child_reports_key,priority:2"`
	MonthID   uint      `json:"month_id" gorm:"not null;uniqueIndex:idx_child_reports_key,priority:3"`
	Week1     bool      `json:"week1" gorm:"not null;default:false"`
	Week2     bool      `json:"week2" gorm:"not null;default:false"`
	Week3     bool      `json:"week3" gorm:"not null;default:false"`
	Week4     bool      `json:"week4" gorm:"not null;default:false"`
	Week5     bool      `json:"week5" gorm:"not null;default:false"`
	Paid      bool      `json:"paid" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Child *Child `json:"child,omitempty" gorm:"foreignKey:ChildID;constraint:OnDelete:CASCADE"`
	Year  *Year  `json:"-" gorm:"foreignKey:YearID;constraint:OnDelete:CASCADE"`
	Month *Month `json:"-" gorm:"foreignKey:MonthID;constraint:OnDelete:CASCADE"`
}
