package models

import "time"

// User is an operator account. Password holds a bcrypt hash.
type User struct {
	ID                   uint      `json:"id" gorm:"primaryKey"`
	Name                 string    `json:"name" gorm:"size:50;not null"`
	Email                string    `json:"email" gorm:"size:100;uniqueIndex;not null"`
	Password             string    `json:"-" gorm:"size:100"`
	BeforePaymentWeek3   *string   `json:"before_payment_week3" gorm:"size:100"`
	BeforePaymentWeek4   *string   `json:"before_payment_week4" gorm:"size:100"`
	AfterPaymentTemplate *string   `json:"after_payment_template" gorm:"size:100"`
	Status               bool      `json:"status" gorm:"not null"`
	Mode                 string    `json:"mode" gorm:"size:1;not null;default:D"` // "L" | "D"
	ImagePath            *string   `json:"image_path" gorm:"type:text"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
