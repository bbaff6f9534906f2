package model

import "time"

type Assignment struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	StudentID        uint      `gorm:"not null;index" json:"student_id"`
	Filename         string    `gorm:"size:512;not null" json:"filename"`
	OriginalFilename string    `gorm:"size:1024" json:"original_filename"`
	FilePath         string    `gorm:"size:1024" json:"file_path"`
	OriginalText     string    `gorm:"type:text" json:"original_text,omitempty"`
	Topic            *string   `gorm:"size:255" json:"topic"`
	AcademicLevel    *string   `gorm:"size:64" json:"academic_level"`
	WordCount        *int      `json:"word_count"`
	UploadedAt       time.Time `gorm:"autoCreateTime" json:"uploaded_at"`

	Student *Student `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
