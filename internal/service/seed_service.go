package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ysxx86/classreport-go-api/internal/models"
	"github.com/ysxx86/classreport-go-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// SeedService loads demonstration roster data for development environments.
type SeedService interface {
	SeedDemo(ctx context.Context, token string) (int, error)
}

type seedService struct {
	students repository.StudentRepository
	grades   repository.GradeRepository
	comments repository.CommentRepository
	enabled  bool
	token    string
	logger   zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(students repository.StudentRepository, grades repository.GradeRepository, comments repository.CommentRepository, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		students: students,
		grades:   grades,
		comments: comments,
		enabled:  enabled,
		token:    token,
		logger:   logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) SeedDemo(ctx context.Context, token string) (int, error) {
	if !s.enabled {
		return 0, ErrSeedDisabled
	}
	if s.token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
		return 0, ErrSeedUnauthorized
	}

	seeded := 0
	for _, entry := range demoStudents() {
		if _, err := s.students.GetByStudentID(ctx, entry.student.StudentID); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return seeded, err
		}

		if err := s.students.Create(ctx, &entry.student); err != nil {
			return seeded, err
		}

		if len(entry.scores) > 0 {
			grade := models.Grade{StudentID: entry.student.StudentID, Semester: "2025-2026-1"}
			if err := grade.SetScores(entry.scores); err != nil {
				return seeded, err
			}
			if err := s.grades.Upsert(ctx, &grade); err != nil {
				return seeded, err
			}
		}

		if entry.comment != "" {
			comment := models.Comment{StudentID: entry.student.StudentID, Content: entry.comment}
			if err := s.comments.Upsert(ctx, &comment); err != nil {
				return seeded, err
			}
		}

		seeded++
	}

	s.logger.Info().Int("seeded", seeded).Msg("demo roster seeded")
	return seeded, nil
}

type demoEntry struct {
	student models.Student
	scores  map[string]string
	comment string
}

func demoStudents() []demoEntry {
	entries := []demoEntry{
		{
			student: models.Student{StudentID: "1001", Name: "Li Hua", Gender: "male", Class: "Grade 3 Class 2", Height: "138", Weight: "32", VisionLeft: "5.0", VisionRight: "5.0"},
			scores:  map[string]string{"chinese": models.GradeExcellent, "math": models.GradeGood, "english": models.GradeExcellent, "pe": models.GradeGood},
			comment: "A focused and curious student who helps classmates willingly.",
		},
		{
			student: models.Student{StudentID: "1002", Name: "Wang Fang", Gender: "female", Class: "Grade 3 Class 2", Height: "134", Weight: "29"},
			comment: "Shows steady improvement in every subject this semester.",
		},
		{
			student: models.Student{StudentID: "1003", Name: "Zhang Wei", Gender: "male", Class: "Grade 3 Class 2"},
			scores:  map[string]string{"chinese": models.GradePass, "math": models.GradeBelowPass},
		},
	}

	for i := 4; i <= 8; i++ {
		entries = append(entries, demoEntry{
			student: models.Student{
				StudentID: fmt.Sprintf("10%02d", i),
				Name:      fmt.Sprintf("Student %d", i),
				Class:     "Grade 3 Class 2",
			},
		})
	}

	return entries
}
