package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ysxx86/classreport-go-api/internal/dto"
	"github.com/ysxx86/classreport-go-api/internal/models"
	"github.com/ysxx86/classreport-go-api/internal/repository"
)

// ErrStudentExists indicates a roster entry with the same id already exists.
var ErrStudentExists = errors.New("student id already registered")

// RosterService covers the CRUD glue around students, their grades and
// comments. The export core consumes these records read-only through the
// repositories; this service is the write surface.
type RosterService interface {
	ListStudents(ctx context.Context, filter repository.StudentFilter) ([]models.Student, error)
	GetStudent(ctx context.Context, studentID string) (models.Student, error)
	CreateStudent(ctx context.Context, req dto.StudentCreateRequest) (models.Student, error)
	UpdateStudent(ctx context.Context, studentID string, req dto.StudentUpdateRequest) (models.Student, error)
	DeleteStudent(ctx context.Context, studentID string) error

	ListGrades(ctx context.Context, studentID string) ([]models.Grade, error)
	UpsertGrade(ctx context.Context, studentID string, req dto.GradeUpsertRequest) (models.Grade, error)

	GetComment(ctx context.Context, studentID string) (dto.CommentResponse, error)
	UpsertComment(ctx context.Context, studentID string, req dto.CommentUpsertRequest) (dto.CommentResponse, error)
}

type rosterService struct {
	students  repository.StudentRepository
	grades    repository.GradeRepository
	comments  repository.CommentRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewRosterService constructs the roster CRUD service.
func NewRosterService(students repository.StudentRepository, grades repository.GradeRepository, comments repository.CommentRepository, validate *validator.Validate, logger zerolog.Logger) RosterService {
	return &rosterService{
		students:  students,
		grades:    grades,
		comments:  comments,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "roster_service").Logger(),
	}
}

func (s *rosterService) ListStudents(ctx context.Context, filter repository.StudentFilter) ([]models.Student, error) {
	return s.students.List(ctx, filter)
}

func (s *rosterService) GetStudent(ctx context.Context, studentID string) (models.Student, error) {
	student, err := s.students.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, err
	}
	return student, nil
}

func (s *rosterService) CreateStudent(ctx context.Context, req dto.StudentCreateRequest) (models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Student{}, err
	}

	if _, err := s.students.GetByStudentID(ctx, req.StudentID); err == nil {
		return models.Student{}, ErrStudentExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Student{}, err
	}

	student := models.Student{
		StudentID:   strings.TrimSpace(req.StudentID),
		Name:        strings.TrimSpace(req.Name),
		Gender:      req.Gender,
		Class:       req.Class,
		Height:      req.Height,
		Weight:      req.Weight,
		VisionLeft:  req.VisionLeft,
		VisionRight: req.VisionRight,
	}
	if err := s.students.Create(ctx, &student); err != nil {
		return models.Student{}, err
	}

	s.logger.Info().Str("student_id", student.StudentID).Msg("student registered")
	return student, nil
}

func (s *rosterService) UpdateStudent(ctx context.Context, studentID string, req dto.StudentUpdateRequest) (models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Student{}, err
	}

	student, err := s.GetStudent(ctx, studentID)
	if err != nil {
		return models.Student{}, err
	}

	applyIfSet := func(target *string, value *string) {
		if value != nil {
			*target = strings.TrimSpace(*value)
		}
	}
	applyIfSet(&student.Name, req.Name)
	applyIfSet(&student.Gender, req.Gender)
	applyIfSet(&student.Class, req.Class)
	applyIfSet(&student.Height, req.Height)
	applyIfSet(&student.Weight, req.Weight)
	applyIfSet(&student.VisionLeft, req.VisionLeft)
	applyIfSet(&student.VisionRight, req.VisionRight)

	if err := s.students.Update(ctx, &student); err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (s *rosterService) DeleteStudent(ctx context.Context, studentID string) error {
	if err := s.students.Delete(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}
	return nil
}

func (s *rosterService) ListGrades(ctx context.Context, studentID string) ([]models.Grade, error) {
	if _, err := s.GetStudent(ctx, studentID); err != nil {
		return nil, err
	}
	return s.grades.ListByStudent(ctx, studentID)
}

func (s *rosterService) UpsertGrade(ctx context.Context, studentID string, req dto.GradeUpsertRequest) (models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Grade{}, err
	}
	if _, err := s.GetStudent(ctx, studentID); err != nil {
		return models.Grade{}, err
	}

	grade := models.Grade{StudentID: studentID, Semester: strings.TrimSpace(req.Semester)}
	if err := grade.SetScores(req.Scores); err != nil {
		return models.Grade{}, err
	}
	if err := s.grades.Upsert(ctx, &grade); err != nil {
		return models.Grade{}, err
	}
	return grade, nil
}

func (s *rosterService) GetComment(ctx context.Context, studentID string) (dto.CommentResponse, error) {
	if _, err := s.GetStudent(ctx, studentID); err != nil {
		return dto.CommentResponse{}, err
	}

	comment, err := s.comments.GetByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CommentResponse{StudentID: studentID}, nil
		}
		return dto.CommentResponse{}, err
	}

	return dto.CommentResponse{
		StudentID: comment.StudentID,
		Content:   comment.Content,
		UpdatedAt: comment.UpdatedAt,
	}, nil
}

func (s *rosterService) UpsertComment(ctx context.Context, studentID string, req dto.CommentUpsertRequest) (dto.CommentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CommentResponse{}, err
	}
	if _, err := s.GetStudent(ctx, studentID); err != nil {
		return dto.CommentResponse{}, err
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(req.Content))
	if runes := []rune(content); len(runes) > models.MaxCommentRunes {
		content = string(runes[:models.MaxCommentRunes])
	}

	comment := models.Comment{StudentID: studentID, Content: content}
	if err := s.comments.Upsert(ctx, &comment); err != nil {
		return dto.CommentResponse{}, err
	}

	return dto.CommentResponse{
		StudentID: studentID,
		Content:   content,
		UpdatedAt: comment.UpdatedAt,
	}, nil
}
