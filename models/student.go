package models

import "time"

// Student is the canonical roster entry. Profile columns are pointers so the
// derived "registered" projection can tell an empty value from a missing one.
type Student struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Sno         string     `json:"sno" gorm:"size:20;uniqueIndex;not null"`
	Name        string     `json:"name" gorm:"size:100;not null"`
	Address1    *string    `json:"address1" gorm:"type:text"`
	Address2    *string    `json:"address2" gorm:"type:text"`
	School      *string    `json:"school" gorm:"type:text"`
	GName       *string    `json:"g_name" gorm:"size:100"`
	GMobile     *string    `json:"g_mobile" gorm:"size:10"`
	GWhatsapp   *string    `json:"g_whatsapp" gorm:"size:10"`
	Gender      *string    `json:"gender" gorm:"size:10"`
	Dob         *time.Time `json:"dob"`
	Maths       bool       `json:"maths" gorm:"not null;default:false"`
	English     bool       `json:"english" gorm:"not null;default:false"`
	Scholarship bool       `json:"scholarship" gorm:"not null;default:false"`
	Grade       *string    `json:"grade" gorm:"size:1"`
	Status      bool       `json:"status" gorm:"not null"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Reports []StudentReport `json:"-" gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
}

// Registered reports whether the registration form was fully filled in.
// Derived at read time, never stored.
func (s *Student) Registered() bool {
	return s.Address1 != nil && s.School != nil && s.GName != nil &&
		s.GMobile != nil && s.Dob != nil
}
