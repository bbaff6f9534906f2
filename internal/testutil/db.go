// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"assignment-helper/internal/model"
)

// DB opens a migrated in-memory SQLite database private to tb. A single
// connection keeps every statement on the same in-memory database, so code
// under test must use the transaction handle inside db.Transaction.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		tb.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		tb.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func Logger(tb testing.TB) *zap.Logger {
	tb.Helper()
	return zap.NewNop()
}

func SeedStudent(tb testing.TB, db *gorm.DB, email string) *model.Student {
	tb.Helper()
	student := &model.Student{Email: email, PasswordHash: "x", FullName: "Test Student", StudentID: "S-" + email}
	if err := db.Create(student).Error; err != nil {
		tb.Fatalf("seed student failed: %v", err)
	}
	return student
}

func SeedAssignment(tb testing.TB, db *gorm.DB, studentID uint, filename string) *model.Assignment {
	tb.Helper()
	assignment := &model.Assignment{StudentID: studentID, Filename: filename, OriginalFilename: filename}
	if err := db.Create(assignment).Error; err != nil {
		tb.Fatalf("seed assignment failed: %v", err)
	}
	return assignment
}
