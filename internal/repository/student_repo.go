package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/ysxx86/classreport-go-api/internal/models"
)

// StudentFilter narrows roster listings.
type StudentFilter struct {
	Class  string
	Search string
}

// StudentRepository provides access to roster records.
type StudentRepository interface {
	GetByStudentID(ctx context.Context, studentID string) (models.Student, error)
	List(ctx context.Context, filter StudentFilter) ([]models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, studentID string) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a roster repository backed by GORM.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByStudentID(ctx context.Context, studentID string) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Where("student_id = ?", studentID).First(&student).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) List(ctx context.Context, filter StudentFilter) ([]models.Student, error) {
	query := r.db.WithContext(ctx).Model(&models.Student{}).Order("student_id ASC")

	if class := strings.TrimSpace(filter.Class); class != "" {
		query = query.Where("class = ?", class)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR student_id LIKE ?", pattern, pattern)
	}

	var students []models.Student
	if err := query.Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

func (r *studentRepository) Delete(ctx context.Context, studentID string) error {
	result := r.db.WithContext(ctx).Where("student_id = ?", studentID).Delete(&models.Student{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
