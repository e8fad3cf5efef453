package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ysxx86/classreport-go-api/internal/models"
)

// GradeRepository provides access to per-semester grade records.
type GradeRepository interface {
	GetBySemester(ctx context.Context, studentID, semester string) (models.Grade, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error)
	Upsert(ctx context.Context, grade *models.Grade) error
}

type gradeRepository struct {
	db *gorm.DB
}

// NewGradeRepository constructs a grade repository backed by GORM.
func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) GetBySemester(ctx context.Context, studentID, semester string) (models.Grade, error) {
	var grade models.Grade
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND semester = ?", studentID, semester).
		First(&grade).Error
	if err != nil {
		return models.Grade{}, err
	}
	return grade, nil
}

func (r *gradeRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error) {
	var grades []models.Grade
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("semester ASC").
		Find(&grades).Error
	if err != nil {
		return nil, err
	}
	return grades, nil
}

func (r *gradeRepository) Upsert(ctx context.Context, grade *models.Grade) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "semester"}},
			DoUpdates: clause.AssignmentColumns([]string{"scores", "updated_at"}),
		}).
		Create(grade).Error
}
