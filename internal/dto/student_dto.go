package dto

import "time"

// StudentCreateRequest describes the payload for adding a roster entry.
type StudentCreateRequest struct {
	StudentID   string `json:"student_id" validate:"required,max=32"`
	Name        string `json:"name" validate:"required,max=255"`
	Gender      string `json:"gender" validate:"omitempty,max=16"`
	Class       string `json:"class" validate:"omitempty,max=64"`
	Height      string `json:"height" validate:"omitempty,max=16"`
	Weight      string `json:"weight" validate:"omitempty,max=16"`
	VisionLeft  string `json:"vision_left" validate:"omitempty,max=16"`
	VisionRight string `json:"vision_right" validate:"omitempty,max=16"`
}

// StudentUpdateRequest carries partial roster updates.
type StudentUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Gender      *string `json:"gender" validate:"omitempty,max=16"`
	Class       *string `json:"class" validate:"omitempty,max=64"`
	Height      *string `json:"height" validate:"omitempty,max=16"`
	Weight      *string `json:"weight" validate:"omitempty,max=16"`
	VisionLeft  *string `json:"vision_left" validate:"omitempty,max=16"`
	VisionRight *string `json:"vision_right" validate:"omitempty,max=16"`
}

// GradeUpsertRequest replaces a student's marks for one semester.
type GradeUpsertRequest struct {
	Semester string            `json:"semester" validate:"required,max=64"`
	Scores   map[string]string `json:"scores" validate:"required,dive,omitempty,oneof=excellent good pass below_pass"`
}

// CommentUpsertRequest replaces a student's appraisal text.
type CommentUpsertRequest struct {
	Content string `json:"content" validate:"required,max=500"`
}

// CommentResponse serializes a stored comment.
type CommentResponse struct {
	StudentID string    `json:"student_id"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}
