package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ysxx86/classreport-go-api/internal/models"
)

// CommentRepository provides access to student appraisal comments.
type CommentRepository interface {
	GetByStudent(ctx context.Context, studentID string) (models.Comment, error)
	Upsert(ctx context.Context, comment *models.Comment) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository constructs a comment repository backed by GORM.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) GetByStudent(ctx context.Context, studentID string) (models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Where("student_id = ?", studentID).First(&comment).Error; err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

func (r *commentRepository) Upsert(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
		}).
		Create(comment).Error
}
