package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ysxx86/classreport-go-api/internal/dto"
	"github.com/ysxx86/classreport-go-api/internal/observability"
	"github.com/ysxx86/classreport-go-api/internal/repository"
	"github.com/ysxx86/classreport-go-api/pkg/docx"
)

// EngineProvider acquires the document generation capability. It is passed
// into the orchestrator explicitly rather than living in process-global
// state; the provider memoizes internally.
type EngineProvider interface {
	Acquire(ctx context.Context) (*docx.Engine, error)
}

// ExportService is the batch orchestrator: it runs one render job per
// requested student, isolates per-job failures, and hands the survivors to
// the packager.
type ExportService interface {
	Export(ctx context.Context, req dto.ExportRequest) (dto.ExportResult, error)
	FetchArchive(ctx context.Context, name string) ([]byte, error)
}

type exportService struct {
	aggregator Aggregator
	templates  TemplateService
	provider   EngineProvider
	packager   Packager
	archives   repository.ArchiveStore
	progress   *ProgressBroker
	validator  *validator.Validate
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// NewExportService constructs the batch orchestrator.
func NewExportService(
	aggregator Aggregator,
	templates TemplateService,
	provider EngineProvider,
	packager Packager,
	archives repository.ArchiveStore,
	progress *ProgressBroker,
	validate *validator.Validate,
	logger zerolog.Logger,
) ExportService {
	return &exportService{
		aggregator: aggregator,
		templates:  templates,
		provider:   provider,
		packager:   packager,
		archives:   archives,
		progress:   progress,
		validator:  validate,
		logger:     logger.With().Str("component", "export_service").Logger(),
		tracer:     otel.Tracer("github.com/ysxx86/classreport-go-api/internal/service/export"),
	}
}

// Export runs one batch within the request/response cycle. Pre-flight
// failures (validation, capability, template resolution) abort before any
// job runs; once the loop starts, per-student failures are recorded and the
// batch continues. Jobs execute sequentially in request order and outcomes
// preserve that order.
func (s *exportService) Export(ctx context.Context, req dto.ExportRequest) (dto.ExportResult, error) {
	ctx, span := s.tracer.Start(ctx, "export.batch")
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.ExportResult{}, err
	}

	batchID := req.BatchID
	if batchID == "" {
		batchID = uuid.NewString()
	}
	total := len(req.StudentIDs)
	span.SetAttributes(
		attribute.String("export.batch_id", batchID),
		attribute.Int("export.requested", total),
		attribute.String("export.template_id", req.TemplateID),
	)

	logger := s.logger.With().Str("batch_id", batchID).Logger()
	s.progress.Publish(ProgressEvent{Type: EventBatchStarted, BatchID: batchID, Total: total})

	engine, err := s.provider.Acquire(ctx)
	if err != nil {
		s.progress.Publish(ProgressEvent{Type: EventBatchFailed, BatchID: batchID, Total: total, Error: err.Error()})
		span.RecordError(err)
		span.SetStatus(codes.Error, "capability unavailable")
		return dto.ExportResult{}, err
	}

	template, err := s.templates.Resolve(ctx, req.TemplateID)
	if err != nil {
		s.progress.Publish(ProgressEvent{Type: EventBatchFailed, BatchID: batchID, Total: total, Error: err.Error()})
		span.RecordError(err)
		span.SetStatus(codes.Error, "template resolution failed")
		return dto.ExportResult{}, err
	}

	renderer := rendererFor(engine, template)

	outcomes := make([]dto.JobOutcome, 0, total)
	documents := make([]RenderedDocument, 0, total)

	for index, studentID := range req.StudentIDs {
		s.progress.Publish(ProgressEvent{
			Type: EventJobStarted, BatchID: batchID,
			Index: index, Total: total, StudentID: studentID,
		})

		outcome, document := s.runJob(ctx, renderer, studentID, req.Settings)
		outcomes = append(outcomes, outcome)

		if outcome.Succeeded {
			documents = append(documents, document)
			s.progress.Publish(ProgressEvent{
				Type: EventJobCompleted, BatchID: batchID,
				Index: index, Total: total, StudentID: studentID, StudentName: outcome.StudentName,
			})
		} else {
			logger.Warn().Str("student_id", studentID).Str("class", outcome.ErrorClass).Str("cause", outcome.Error).Msg("render job failed")
			s.progress.Publish(ProgressEvent{
				Type: EventJobFailed, BatchID: batchID,
				Index: index, Total: total, StudentID: studentID, Error: outcome.Error,
			})
		}
		observability.ExportJobs().WithLabelValues(jobOutcomeLabel(outcome)).Inc()
	}

	result := dto.ExportResult{
		BatchID:   batchID,
		Succeeded: len(documents),
		Failed:    total - len(documents),
		Outcomes:  outcomes,
		Status:    batchStatus(len(documents), total),
	}
	span.SetAttributes(
		attribute.Int("export.succeeded", result.Succeeded),
		attribute.Int("export.failed", result.Failed),
	)

	if len(documents) == 0 {
		observability.ExportBatches().WithLabelValues(result.Status).Inc()
		s.progress.Publish(ProgressEvent{Type: EventBatchCompleted, BatchID: batchID, Total: total, Status: result.Status})
		logger.Error().Int("requested", total).Msg("export produced no documents")
		return result, nil
	}

	s.progress.Publish(ProgressEvent{Type: EventPackaging, BatchID: batchID, Total: total})

	packed, err := s.packager.Package(ctx, documents, req.Settings, req.AllowInline)
	if err != nil {
		observability.ExportBatches().WithLabelValues("packaging_failed").Inc()
		s.progress.Publish(ProgressEvent{Type: EventBatchFailed, BatchID: batchID, Total: total, Error: err.Error()})
		span.RecordError(err)
		span.SetStatus(codes.Error, "packaging failed")
		return dto.ExportResult{}, err
	}

	fillFileNames(result.Outcomes, packed.FileNames)
	result.Kind = packed.Kind
	result.ContentType = packed.ContentType
	result.Data = packed.Data
	result.FileName = packed.FileName
	result.ArchiveName = packed.ArchiveName

	observability.ExportBatches().WithLabelValues(result.Status).Inc()
	s.progress.Publish(ProgressEvent{Type: EventBatchCompleted, BatchID: batchID, Total: total, Status: result.Status})
	logger.Info().
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Str("status", result.Status).
		Str("kind", result.Kind).
		Msg("export batch finished")

	return result, nil
}

// runJob executes aggregation and rendering for one student, classifying
// any failure instead of propagating it.
func (s *exportService) runJob(ctx context.Context, renderer Renderer, studentID string, settings dto.ExportSettings) (dto.JobOutcome, RenderedDocument) {
	start := time.Now()
	defer func() {
		observability.RenderLatency().Observe(time.Since(start).Seconds())
	}()

	outcome := dto.JobOutcome{StudentID: studentID}

	tokens, err := s.aggregator.Aggregate(ctx, studentID, settings)
	if err != nil {
		outcome.ErrorClass = classifyJobError(err)
		outcome.Error = err.Error()
		return outcome, RenderedDocument{}
	}
	outcome.StudentName = tokens["name"]

	data, err := renderer.Render(ctx, tokens, settings)
	if err != nil {
		renderErr := &RenderError{StudentID: studentID, Cause: err}
		outcome.ErrorClass = classifyJobError(renderErr)
		outcome.Error = renderErr.Error()
		return outcome, RenderedDocument{}
	}

	outcome.Succeeded = true
	return outcome, RenderedDocument{
		StudentID:   studentID,
		StudentName: tokens["name"],
		Data:        data,
	}
}

// FetchArchive serves the deferred retrieval path.
func (s *exportService) FetchArchive(ctx context.Context, name string) ([]byte, error) {
	return s.archives.Get(ctx, name)
}

func classifyJobError(err error) string {
	var renderErr *RenderError
	switch {
	case errors.Is(err, ErrStudentNotFound):
		return dto.ErrClassStudentNotFound
	case errors.Is(err, ErrTemplateNotFound):
		return dto.ErrClassTemplateMissing
	case errors.Is(err, ErrTemplateCorrupt), errors.Is(err, docx.ErrPackageCorrupt):
		return dto.ErrClassTemplateCorrupt
	case errors.As(err, &renderErr):
		return dto.ErrClassRender
	default:
		return dto.ErrClassRender
	}
}

func batchStatus(succeeded, total int) string {
	switch succeeded {
	case 0:
		return dto.BatchAllFailed
	case total:
		return dto.BatchAllSucceeded
	default:
		return dto.BatchPartialSuccess
	}
}

func jobOutcomeLabel(outcome dto.JobOutcome) string {
	if outcome.Succeeded {
		return "succeeded"
	}
	return outcome.ErrorClass
}

// fillFileNames copies the packager's disambiguated names back onto the
// successful outcomes, preserving request order.
func fillFileNames(outcomes []dto.JobOutcome, names []string) {
	next := 0
	for i := range outcomes {
		if !outcomes[i].Succeeded {
			continue
		}
		if next < len(names) {
			outcomes[i].FileName = names[next]
			next++
		}
	}
}
