package utils

import (
	"fmt"

	"project/backend/config"
	"project/backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB opens the Postgres connection and migrates the schema.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Subject{},
		&models.Lesson{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.QuizChoice{},
		&models.QuizAttemptRecord{},
		&models.QuizAnswerRecord{},
		&models.UserLessonProgress{},
		&models.UserQuizProgress{},
		&models.UserSubjectProgress{},
	); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return db, nil
}
