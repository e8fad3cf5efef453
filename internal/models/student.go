package models

import "time"

// Student represents one roster entry. StudentID is the stable business
// identifier used throughout the export pipeline; the numeric primary key is
// internal to the database.
type Student struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	StudentID   string    `gorm:"size:32;uniqueIndex;not null" json:"student_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Gender      string    `gorm:"size:16" json:"gender"`
	Class       string    `gorm:"size:64" json:"class"`
	Height      string    `gorm:"size:16" json:"height"`
	Weight      string    `gorm:"size:16" json:"weight"`
	VisionLeft  string    `gorm:"size:16" json:"vision_left"`
	VisionRight string    `gorm:"size:16" json:"vision_right"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
