package models

// Year and Month are lazily created reference tables; the unique indexes are
// what keep concurrent first-use from duplicating a row.

type Year struct {
	ID   uint `json:"id" gorm:"primaryKey"`
	Year int  `json:"year" gorm:"uniqueIndex;not null"`
}

type Month struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Month string `json:"month" gorm:"size:20;uniqueIndex;not null"`
}
