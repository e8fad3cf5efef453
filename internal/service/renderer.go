package service

import (
	"context"
	"fmt"

	"github.com/ysxx86/classreport-go-api/internal/dto"
	"github.com/ysxx86/classreport-go-api/internal/models"
	"github.com/ysxx86/classreport-go-api/pkg/docx"
)

// RenderError wraps a rendering failure with the student it belongs to so
// the orchestrator can record it without aborting the batch.
type RenderError struct {
	StudentID string
	Cause     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering report for student %s: %v", e.StudentID, e.Cause)
}

func (e *RenderError) Unwrap() error { return e.Cause }

// Renderer is the contract shared by the two substitution strategies.
type Renderer interface {
	Render(ctx context.Context, tokens docx.TokenMap, settings dto.ExportSettings) ([]byte, error)
}

// rendererFor picks the strategy matching the resolved template's kind.
func rendererFor(engine *docx.Engine, template ResolvedTemplate) Renderer {
	if template.Kind == models.TemplateKindCustom {
		return &tokenRenderer{engine: engine, document: template.Document}
	}
	return &builderRenderer{engine: engine, sections: template.Sections}
}

// tokenRenderer rewrites an uploaded document package, replacing bracketed
// tokens with aggregated values.
type tokenRenderer struct {
	engine   *docx.Engine
	document []byte
}

func (r *tokenRenderer) Render(_ context.Context, tokens docx.TokenMap, _ dto.ExportSettings) ([]byte, error) {
	return r.engine.RewritePackage(r.document, tokens)
}

// builderRenderer constructs the default report section by section from the
// aggregated data and the inclusion flags.
type builderRenderer struct {
	engine   *docx.Engine
	sections []Section
}

func (r *builderRenderer) Render(_ context.Context, tokens docx.TokenMap, settings dto.ExportSettings) ([]byte, error) {
	flags := map[string]bool{
		"include_basic_info": settings.IncludeBasicInfo,
		"include_grades":     settings.IncludeGrades,
		"include_comments":   settings.IncludeComments,
		"include_attendance": settings.IncludeAttendance,
		"include_awards":     settings.IncludeAwards,
	}

	builder := r.engine.NewBuilder()
	for _, section := range r.sections {
		if !sectionEnabled(section, flags) {
			continue
		}

		switch section.Key {
		case SectionHeader:
			r.renderHeader(builder, tokens)
		case SectionBasicInfo:
			r.renderBasicInfo(builder, section, tokens)
		case SectionGrades:
			r.renderGrades(builder, section, tokens)
		case SectionComment:
			r.renderComment(builder, section, tokens)
		case SectionSignature:
			r.renderSignature(builder, tokens)
		}
	}

	return builder.Bytes()
}

func (r *builderRenderer) renderHeader(builder *docx.Builder, tokens docx.TokenMap) {
	title := "Student Report"
	if school := tokens["schoolName"]; school != "" {
		title = school + " Student Report"
	}
	builder.AddHeading(title)

	subtitle := joinNonEmpty(" ", tokens["schoolYear"], tokens["semester"])
	if subtitle != "" {
		builder.AddStyledParagraph(subtitle, docx.ParagraphStyle{Align: docx.AlignCenter})
	}
	builder.AddSpacer()
}

func (r *builderRenderer) renderBasicInfo(builder *docx.Builder, section Section, tokens docx.TokenMap) {
	builder.AddStyledParagraph(section.Title, docx.ParagraphStyle{Bold: true})
	builder.AddTable([][]string{
		{"Name", tokens["name"], "Student ID", tokens["studentId"]},
		{"Gender", tokens["gender"], "Class", firstNonEmpty(tokens["className"], tokens["class"])},
		{"Height", tokens["height"], "Weight", tokens["weight"]},
		{"Vision (L)", tokens["visionLeft"], "Vision (R)", tokens["visionRight"]},
	})
	builder.AddSpacer()
}

// renderGrades always emits the section when its flag is set. A student with
// no grade data for the semester still gets the full subject grid with dash
// placeholders, keeping section order uniform across one batch.
func (r *builderRenderer) renderGrades(builder *docx.Builder, section Section, tokens docx.TokenMap) {
	builder.AddStyledParagraph(section.Title, docx.ParagraphStyle{Bold: true})

	rows := make([][]string, 0, len(section.Subjects)+1)
	rows = append(rows, []string{"Subject", "Level"})
	for _, subject := range section.Subjects {
		level := tokens[subject.Code]
		if level == "" {
			level = "-"
		}
		rows = append(rows, []string{subject.Title, level})
	}

	builder.AddTable(rows)
	builder.AddSpacer()
}

// renderComment is skipped entirely when the student has no comment; unlike
// grades there is no placeholder form for free text.
func (r *builderRenderer) renderComment(builder *docx.Builder, section Section, tokens docx.TokenMap) {
	comment := tokens["comment"]
	if comment == "" {
		return
	}

	builder.AddStyledParagraph(section.Title, docx.ParagraphStyle{Bold: true})
	builder.AddParagraph(comment)
	if date := tokens["commentDate"]; date != "" {
		builder.AddStyledParagraph(date, docx.ParagraphStyle{Align: docx.AlignRight})
	}
	builder.AddSpacer()
}

func (r *builderRenderer) renderSignature(builder *docx.Builder, tokens docx.TokenMap) {
	if teacher := tokens["teacherName"]; teacher != "" {
		builder.AddStyledParagraph("Teacher: "+teacher, docx.ParagraphStyle{Align: docx.AlignRight})
	}
	if date := tokens["startDate"]; date != "" {
		builder.AddStyledParagraph(date, docx.ParagraphStyle{Align: docx.AlignRight})
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	joined := ""
	for _, part := range parts {
		if part == "" {
			continue
		}
		if joined != "" {
			joined += sep
		}
		joined += part
	}
	return joined
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
