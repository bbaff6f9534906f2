package model

import "time"

type Student struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	FullName     string    `gorm:"size:255" json:"full_name"`
	StudentID    string    `gorm:"size:64" json:"student_id"`
	CreatedAt    time.Time `json:"created_at"`
}
