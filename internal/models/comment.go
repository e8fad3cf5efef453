package models

import "time"

// MaxCommentRunes bounds the free-text comment length.
const MaxCommentRunes = 500

// Comment is the teacher-written appraisal for one student. At most one row
// exists per student.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	StudentID string    `gorm:"size:32;uniqueIndex;not null" json:"student_id"`
	Content   string    `gorm:"size:2000" json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}
