package service

import (
	"context"
	"errors"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ysxx86/classreport-go-api/internal/dto"
	"github.com/ysxx86/classreport-go-api/internal/models"
	"github.com/ysxx86/classreport-go-api/internal/repository"
	"github.com/ysxx86/classreport-go-api/pkg/docx"
)

// ErrStudentNotFound indicates the requested roster entry does not exist.
var ErrStudentNotFound = errors.New("student not found")

// Aggregator collects one student's profile, grade set and comment into the
// canonical token map consumed by both rendering strategies.
type Aggregator interface {
	Aggregate(ctx context.Context, studentID string, settings dto.ExportSettings) (docx.TokenMap, error)
}

type aggregatorService struct {
	students  repository.StudentRepository
	grades    repository.GradeRepository
	comments  repository.CommentRepository
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewAggregator constructs the token aggregator over the three read-only
// stores it queries.
func NewAggregator(students repository.StudentRepository, grades repository.GradeRepository, comments repository.CommentRepository, logger zerolog.Logger) Aggregator {
	return &aggregatorService{
		students:  students,
		grades:    grades,
		comments:  comments,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "aggregator_service").Logger(),
	}
}

// Aggregate is a pure function of the student identifier, the settings and
// the stores. Absent data maps to an empty string; the only error it raises
// is ErrStudentNotFound.
func (s *aggregatorService) Aggregate(ctx context.Context, studentID string, settings dto.ExportSettings) (docx.TokenMap, error) {
	student, err := s.students.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	tokens := docx.TokenMap{
		"studentId":   student.StudentID,
		"name":        student.Name,
		"gender":      student.Gender,
		"class":       student.Class,
		"height":      student.Height,
		"weight":      student.Weight,
		"visionLeft":  student.VisionLeft,
		"visionRight": student.VisionRight,
		"schoolYear":  settings.SchoolYear,
		"semester":    settings.Semester,
		"schoolName":  settings.SchoolName,
		"className":   settings.ClassName,
		"teacherName": settings.TeacherName,
		"startDate":   settings.ExportDate,
		"comment":     "",
		"commentDate": "",
	}

	s.addGradeTokens(ctx, tokens, studentID, settings.Semester)
	s.addCommentTokens(ctx, tokens, studentID)

	return tokens, nil
}

func (s *aggregatorService) addGradeTokens(ctx context.Context, tokens docx.TokenMap, studentID, semester string) {
	grade, err := s.grades.GetBySemester(ctx, studentID, semester)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Str("student_id", studentID).Msg("grade lookup failed, rendering blanks")
		}
		return
	}

	scores, err := grade.ScoreMap()
	if err != nil {
		s.logger.Warn().Err(err).Str("student_id", studentID).Msg("grade record undecodable, rendering blanks")
		return
	}

	for subject, level := range scores {
		subject = strings.TrimSpace(subject)
		if subject == "" {
			continue
		}
		tokens[subject] = models.GradeDisplay(level)
	}
}

func (s *aggregatorService) addCommentTokens(ctx context.Context, tokens docx.TokenMap, studentID string) {
	comment, err := s.comments.GetByStudent(ctx, studentID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Str("student_id", studentID).Msg("comment lookup failed, rendering blanks")
		}
		return
	}

	tokens["comment"] = strings.TrimSpace(s.sanitizer.Sanitize(comment.Content))
	if !comment.UpdatedAt.IsZero() {
		tokens["commentDate"] = comment.UpdatedAt.Format("2006-01-02")
	}
}
