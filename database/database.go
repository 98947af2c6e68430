package database

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ayesh156/card-marking-system/config"
	"github.com/ayesh156/card-marking-system/models"
)

var DB *gorm.DB

func Connect(cfg *config.Config) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	DB = db

	if err := Migrate(DB); err != nil {
		log.Fatalf("auto migrate failed: %v", err)
	}
}

// Migrate creates the schema and seeds the weekday reference table. It is
// shared with the test harness, which runs it against SQLite.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Day{},
		&models.Class{},
		&models.Category{},
		&models.Grade{},
		&models.Tuition{},
		&models.Student{},
		&models.StudentTuition{},
		&models.Year{},
		&models.Month{},
		&models.StudentReport{},
		&models.Child{},
		&models.ChildReport{},
		&models.User{},
	); err != nil {
		return err
	}
	return seedDays(db)
}

// seedDays fills days with Sunday..Saturday so row ids line up with
// time.Weekday+1.
func seedDays(db *gorm.DB) error {
	var n int64
	if err := db.Model(&models.Day{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	days := make([]models.Day, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		days = append(days, models.Day{ID: uint(wd) + 1, DayName: wd.String()})
	}
	return db.Create(&days).Error
}
