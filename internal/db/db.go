package db

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/jonafit/coach-platform/internal/billing"
	"github.com/jonafit/coach-platform/internal/chat"
	"github.com/jonafit/coach-platform/internal/diet"
	"github.com/jonafit/coach-platform/internal/jobs"
	"github.com/jonafit/coach-platform/internal/logger"
	"github.com/jonafit/coach-platform/internal/models"
	"github.com/jonafit/coach-platform/internal/workout"
)

func Connect(dsn string) *gorm.DB {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Fatalf("mysql connect: %v", err)
	}
	if err := Migrate(gdb); err != nil {
		logger.Fatalf("automigrate: %v", err)
	}
	return gdb
}

// Migrate creates or updates every table the service owns.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.PhysicalAssessment{},
		&billing.Plan{},
		&billing.Subscription{},
		&workout.Plan{},
		&diet.Plan{},
		&diet.Meal{},
		&chat.Conversation{},
		&chat.Message{},
		&jobs.Job{},
	)
}
