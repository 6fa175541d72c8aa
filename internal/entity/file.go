package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// File is an uploaded object. A nil StudentID means it is shared with every
// student.
type File struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UploaderID   uuid.UUID  `gorm:"type:uuid;not null" json:"uploader_id"`
	StudentID    *uuid.UUID `gorm:"type:uuid" json:"student_id"`
	FileType     string     `gorm:"size:100;not null" json:"file_type"`
	FileName     string     `gorm:"size:255;not null" json:"file_name"`
	OriginalName string     `gorm:"size:255;not null" json:"original_name"`
	FileSize     int64      `gorm:"not null" json:"file_size"`
	FileURL      string     `gorm:"type:text;not null" json:"file_url"`
	Description  *string    `gorm:"type:text" json:"description"`
	UploadedAt   time.Time  `gorm:"autoCreateTime" json:"uploaded_at"`

	Uploader *User `gorm:"foreignKey:UploaderID" json:"-"`
	Student  *User `gorm:"foreignKey:StudentID" json:"-"`
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// VisibleTo reports whether userID may download the file.
func (f *File) VisibleTo(userID uuid.UUID) bool {
	return f.UploaderID == userID || f.StudentID == nil || *f.StudentID == userID
}
