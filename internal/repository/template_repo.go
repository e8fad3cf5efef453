package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ysxx86/classreport-go-api/internal/models"
)

// TemplateRepository provides access to stored report templates.
type TemplateRepository interface {
	GetByTemplateID(ctx context.Context, templateID string) (models.Template, error)
	List(ctx context.Context) ([]models.Template, error)
	Create(ctx context.Context, template *models.Template) error
}

type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository constructs a template repository backed by GORM.
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) GetByTemplateID(ctx context.Context, templateID string) (models.Template, error) {
	var template models.Template
	if err := r.db.WithContext(ctx).Where("template_id = ?", templateID).First(&template).Error; err != nil {
		return models.Template{}, err
	}
	return template, nil
}

func (r *templateRepository) List(ctx context.Context) ([]models.Template, error) {
	var templates []models.Template
	err := r.db.WithContext(ctx).
		Select("id", "template_id", "name", "kind", "created_at").
		Order("created_at ASC").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *templateRepository) Create(ctx context.Context, template *models.Template) error {
	return r.db.WithContext(ctx).Create(template).Error
}
