package models

import "time"

// Child is the legacy roster table from before the tuition-based schema.
// Kept for the old marking UI; column names mirror the original table.
type Child struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Sno       string     `json:"sno" gorm:"size:20;uniqueIndex;not null"`
	Name      string     `json:"name" gorm:"size:100;not null"`
	Address1  *string    `json:"address1" gorm:"type:text"`
	Address2  *string    `json:"address2" gorm:"type:text"`
	School    *string    `json:"school" gorm:"type:text"`
	GName     *string    `json:"gName" gorm:"column:gName;size:100"`
	GMobile   *string    `json:"gMobile" gorm:"column:gMobile;size:10"`
	GWhatsapp *string    `json:"gWhatsapp" gorm:"column:gWhatsapp;size:10"`
	Gender    *string    `json:"gender" gorm:"size:10"`
	Dob       *time.Time `json:"dob"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Reports []ChildReport `json:"-" gorm:"foreignKey:ChildID;constraint:OnDelete:CASCADE"`
}

func (Child) TableName() string { return "child" }

func (c *Child) Registered() bool {
	return c.Address1 != nil && c.School != nil && c.GName != nil &&
		c.GMobile != nil && c.Gender != nil && c.Dob != nil
}
