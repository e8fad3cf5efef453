package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Grade levels recorded per subject. A subject may also be empty when no mark
// has been entered yet.
const (
	GradeExcellent = "excellent"
	GradeGood      = "good"
	GradePass      = "pass"
	GradeBelowPass = "below_pass"
)

// GradeDisplay maps a stored level to the text rendered into documents. An
// unknown or empty level renders as an empty string.
func GradeDisplay(level string) string {
	switch level {
	case GradeExcellent:
		return "Excellent"
	case GradeGood:
		return "Good"
	case GradePass:
		return "Pass"
	case GradeBelowPass:
		return "Below Pass"
	default:
		return ""
	}
}

// Grade holds the per-subject marks of one student for one semester.
type Grade struct {
	ID        uint           `gorm:"primaryKey" json:"-"`
	StudentID string         `gorm:"size:32;index:idx_grade_student_semester,unique;not null" json:"student_id"`
	Semester  string         `gorm:"size:64;index:idx_grade_student_semester,unique;not null" json:"semester"`
	Scores    datatypes.JSON `gorm:"type:json" json:"scores"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ScoreMap decodes the stored subject→level mapping. An empty column decodes
// to an empty map rather than an error.
func (g Grade) ScoreMap() (map[string]string, error) {
	scores := map[string]string{}
	if len(g.Scores) == 0 {
		return scores, nil
	}
	if err := json.Unmarshal(g.Scores, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

// SetScores encodes the subject→level mapping into the JSON column.
func (g *Grade) SetScores(scores map[string]string) error {
	payload, err := json.Marshal(scores)
	if err != nil {
		return err
	}
	g.Scores = datatypes.JSON(payload)
	return nil
}
