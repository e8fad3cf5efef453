package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ysxx86/classreport-go-api/internal/dto"
	"github.com/ysxx86/classreport-go-api/internal/repository"
)

// ErrPackaging indicates archive assembly or storage failed after all
// render jobs had already resolved.
var ErrPackaging = errors.New("failed to package export result")

// DocxContentType is the media type of a generated report document.
const DocxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// ZipContentType is the media type of a consolidated export archive.
const ZipContentType = "application/zip"

// RenderedDocument is one successfully rendered report awaiting packaging.
type RenderedDocument struct {
	StudentID   string
	StudentName string
	Data        []byte
}

// PackageResult is the transport decision for one batch: inline bytes for a
// single document, or a stored archive name for later retrieval.
type PackageResult struct {
	Kind        string
	ContentType string
	Data        []byte
	FileName    string
	ArchiveName string
	// FileNames holds the per-document names aligned with the packaged
	// input, after collision disambiguation.
	FileNames []string
}

// Packager turns a batch's rendered documents into a downloadable result.
type Packager interface {
	Package(ctx context.Context, documents []RenderedDocument, settings dto.ExportSettings, allowInline bool) (PackageResult, error)
}

type packager struct {
	archives repository.ArchiveStore
	logger   zerolog.Logger
}

// NewPackager constructs a packager storing archives in the given store.
func NewPackager(archives repository.ArchiveStore, logger zerolog.Logger) Packager {
	return &packager{
		archives: archives,
		logger:   logger.With().Str("component", "packager").Logger(),
	}
}

func (p *packager) Package(ctx context.Context, documents []RenderedDocument, settings dto.ExportSettings, allowInline bool) (PackageResult, error) {
	if len(documents) == 0 {
		return PackageResult{}, fmt.Errorf("%w: no documents produced", ErrPackaging)
	}

	names := AssignFileNames(documents, settings)

	if len(documents) == 1 && allowInline {
		return PackageResult{
			Kind:        dto.ResultKindBytes,
			ContentType: DocxContentType,
			Data:        documents[0].Data,
			FileName:    names[0],
			FileNames:   names,
		}, nil
	}

	archive, err := buildArchive(documents, names)
	if err != nil {
		return PackageResult{}, fmt.Errorf("%w: %v", ErrPackaging, err)
	}

	archiveName := fmt.Sprintf("reports_%s.zip", uuid.NewString())
	if err := p.archives.Save(ctx, archiveName, archive); err != nil {
		return PackageResult{}, fmt.Errorf("%w: storing archive: %v", ErrPackaging, err)
	}

	p.logger.Info().Str("archive", archiveName).Int("documents", len(documents)).Msg("export archive stored")

	return PackageResult{
		Kind:        dto.ResultKindDeferred,
		ContentType: ZipContentType,
		ArchiveName: archiveName,
		FileNames:   names,
	}, nil
}

// AssignFileNames derives per-document file names from the configured format
// and disambiguates collisions within the batch with a numeric suffix, so a
// duplicated student never silently overwrites its own report.
func AssignFileNames(documents []RenderedDocument, settings dto.ExportSettings) []string {
	seen := make(map[string]int, len(documents))
	names := make([]string, len(documents))

	for i, document := range documents {
		base := documentBaseName(document, settings.FileNameFormat)
		seen[base]++
		if count := seen[base]; count > 1 {
			base = fmt.Sprintf("%s (%d)", base, count)
		}
		names[i] = base + ".docx"
	}

	return names
}

func documentBaseName(document RenderedDocument, format string) string {
	id := sanitizeFileName(document.StudentID)
	name := sanitizeFileName(document.StudentName)

	switch {
	case name == "":
		return id
	case id == "":
		return name
	case format == dto.FileNameNameID:
		return name + "_" + id
	default:
		return id + "_" + name
	}
}

// sanitizeFileName strips path separators and characters archive consumers
// tend to choke on.
func sanitizeFileName(name string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_",
		"?", "_", `"`, "_", "<", "_", ">", "_", "|", "_",
	)
	return strings.TrimSpace(replacer.Replace(name))
}

// buildArchive writes the documents into one zip with zeroed timestamps so
// re-running an identical batch yields identical archive contents.
func buildArchive(documents []RenderedDocument, names []string) ([]byte, error) {
	var out bytes.Buffer
	writer := zip.NewWriter(&out)

	for i, document := range documents {
		header := &zip.FileHeader{Name: names[i], Method: zip.Deflate}
		entry, err := writer.CreateHeader(header)
		if err != nil {
			return nil, err
		}
		if _, err := entry.Write(document.Data); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}
