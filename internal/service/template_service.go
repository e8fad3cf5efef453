package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ysxx86/classreport-go-api/internal/dto"
	"github.com/ysxx86/classreport-go-api/internal/models"
	"github.com/ysxx86/classreport-go-api/internal/repository"
	"github.com/ysxx86/classreport-go-api/pkg/docx"
)

var (
	// ErrTemplateNotFound indicates no template matches the identifier.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrTemplateCorrupt indicates a custom template's package cannot be
	// opened as a structured archive.
	ErrTemplateCorrupt = errors.New("template document is corrupt")
	// ErrTemplateTooLarge indicates an upload exceeded the configured limit.
	ErrTemplateTooLarge = errors.New("template exceeds maximum allowed size")
	// ErrTemplateTypeNotAllowed indicates the upload is not a document package.
	ErrTemplateTypeNotAllowed = errors.New("template must be a document package")
)

// ResolvedTemplate is the Template Resolver's output: the template kind plus
// the payload the matching render strategy consumes.
type ResolvedTemplate struct {
	TemplateID string
	Name       string
	Kind       string
	// Sections is populated for builtin templates.
	Sections []Section
	// Document holds the raw package bytes for custom templates.
	Document []byte
}

// TemplateService resolves, uploads and lists report templates.
type TemplateService interface {
	Resolve(ctx context.Context, templateID string) (ResolvedTemplate, error)
	Upload(ctx context.Context, file *multipart.FileHeader) (dto.TemplateUploadResponse, error)
	List(ctx context.Context) ([]dto.TemplateResponse, error)
}

type templateService struct {
	repo     repository.TemplateRepository
	sections []Section
	maxSize  int64
	logger   zerolog.Logger
}

// NewTemplateService constructs the template service. It fails when the
// bundled builtin layout does not validate against its schema.
func NewTemplateService(repo repository.TemplateRepository, maxSizeMB int, logger zerolog.Logger) (TemplateService, error) {
	sections, err := loadBuiltinLayout()
	if err != nil {
		return nil, err
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}

	return &templateService{
		repo:     repo,
		sections: sections,
		maxSize:  int64(maxSizeMB) * 1024 * 1024,
		logger:   logger.With().Str("component", "template_service").Logger(),
	}, nil
}

func (s *templateService) Resolve(ctx context.Context, templateID string) (ResolvedTemplate, error) {
	if templateID == models.BuiltinTemplateID {
		return ResolvedTemplate{
			TemplateID: models.BuiltinTemplateID,
			Name:       "Default Report",
			Kind:       models.TemplateKindBuiltin,
			Sections:   s.sections,
		}, nil
	}

	template, err := s.repo.GetByTemplateID(ctx, templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ResolvedTemplate{}, ErrTemplateNotFound
		}
		return ResolvedTemplate{}, err
	}

	if template.Kind == models.TemplateKindBuiltin {
		return ResolvedTemplate{
			TemplateID: template.TemplateID,
			Name:       template.Name,
			Kind:       models.TemplateKindBuiltin,
			Sections:   s.sections,
		}, nil
	}

	if err := docx.ValidatePackage(template.Document); err != nil {
		return ResolvedTemplate{}, fmt.Errorf("%w: %v", ErrTemplateCorrupt, err)
	}

	return ResolvedTemplate{
		TemplateID: template.TemplateID,
		Name:       template.Name,
		Kind:       models.TemplateKindCustom,
		Document:   template.Document,
	}, nil
}

func (s *templateService) Upload(ctx context.Context, file *multipart.FileHeader) (dto.TemplateUploadResponse, error) {
	if file == nil {
		return dto.TemplateUploadResponse{}, errors.New("file is required")
	}
	if file.Size > s.maxSize {
		return dto.TemplateUploadResponse{}, ErrTemplateTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		return dto.TemplateUploadResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		return dto.TemplateUploadResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		return dto.TemplateUploadResponse{}, ErrTemplateTooLarge
	}

	if !isDocumentPackage(buf.Bytes()) {
		return dto.TemplateUploadResponse{}, ErrTemplateTypeNotAllowed
	}
	if err := docx.ValidatePackage(buf.Bytes()); err != nil {
		return dto.TemplateUploadResponse{}, fmt.Errorf("%w: %v", ErrTemplateCorrupt, err)
	}

	template := models.Template{
		TemplateID: uuid.NewString(),
		Name:       templateDisplayName(file.Filename),
		Kind:       models.TemplateKindCustom,
		Document:   buf.Bytes(),
	}
	if err := s.repo.Create(ctx, &template); err != nil {
		return dto.TemplateUploadResponse{}, err
	}

	s.logger.Info().Str("template_id", template.TemplateID).Str("name", template.Name).Msg("custom template stored")

	return dto.TemplateUploadResponse{
		TemplateID: template.TemplateID,
		Name:       template.Name,
		SizeBytes:  int64(buf.Len()),
	}, nil
}

func (s *templateService) List(ctx context.Context) ([]dto.TemplateResponse, error) {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	templates := make([]dto.TemplateResponse, 0, len(stored)+1)
	templates = append(templates, dto.TemplateResponse{
		TemplateID: models.BuiltinTemplateID,
		Name:       "Default Report",
		Kind:       models.TemplateKindBuiltin,
	})
	for _, template := range stored {
		templates = append(templates, dto.TemplateResponse{
			TemplateID: template.TemplateID,
			Name:       template.Name,
			Kind:       template.Kind,
			CreatedAt:  template.CreatedAt,
		})
	}

	return templates, nil
}

func isDocumentPackage(data []byte) bool {
	detected := mimetype.Detect(data)
	for mime := detected; mime != nil; mime = mime.Parent() {
		switch mime.String() {
		case "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip":
			return true
		}
	}
	return false
}

func templateDisplayName(filename string) string {
	name := strings.TrimSpace(filename)
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.LastIndexByte(name, '.'); idx > 0 {
		name = name[:idx]
	}
	if name == "" {
		name = "Custom Template"
	}
	return name
}
