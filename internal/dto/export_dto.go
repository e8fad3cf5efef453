package dto

// Filename format choices for per-student documents within a batch.
const (
	FileNameIDName = "id_name"
	FileNameNameID = "name_id"
)

// Batch terminal statuses computed after every job has resolved.
const (
	BatchAllSucceeded   = "all_succeeded"
	BatchPartialSuccess = "partial_success"
	BatchAllFailed      = "all_failed"
)

// Job outcome error classes surfaced to clients.
const (
	ErrClassStudentNotFound = "student_not_found"
	ErrClassTemplateMissing = "template_not_found"
	ErrClassTemplateCorrupt = "template_corrupt"
	ErrClassRender          = "render_error"
)

// ExportSettings carries the per-request rendering options. Settings are
// supplied fresh with every export and never persisted.
type ExportSettings struct {
	SchoolYear     string `json:"school_year" validate:"required"`
	Semester       string `json:"semester" validate:"required"`
	SchoolName     string `json:"school_name"`
	ClassName      string `json:"class_name"`
	TeacherName    string `json:"teacher_name"`
	ExportDate     string `json:"export_date"`
	FileNameFormat string `json:"file_name_format" validate:"omitempty,oneof=id_name name_id"`

	IncludeBasicInfo  bool `json:"include_basic_info"`
	IncludeGrades     bool `json:"include_grades"`
	IncludeComments   bool `json:"include_comments"`
	IncludeAttendance bool `json:"include_attendance"`
	IncludeAwards     bool `json:"include_awards"`
}

// ExportRequest is the payload of the batch export operation.
type ExportRequest struct {
	// BatchID lets the client pick the identifier its progress subscription
	// uses. Left empty, the server generates one.
	BatchID    string         `json:"batch_id" validate:"omitempty,max=64"`
	StudentIDs []string       `json:"student_ids" validate:"required,min=1,dive,required"`
	TemplateID string         `json:"template_id" validate:"required"`
	Settings   ExportSettings `json:"settings" validate:"required"`
	// AllowInline permits a single-document batch to come back as raw bytes.
	// Clients that cannot consume a binary response set it to false and
	// always receive a retrievable archive name.
	AllowInline bool `json:"allow_inline"`
}

// JobOutcome records the result of rendering one student's report.
type JobOutcome struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name,omitempty"`
	FileName    string `json:"file_name,omitempty"`
	Succeeded   bool   `json:"succeeded"`
	ErrorClass  string `json:"error_class,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Export result kinds: inline document bytes or a deferred archive handle.
const (
	ResultKindBytes    = "bytes"
	ResultKindDeferred = "deferred"
)

// ExportResult is the aggregate outcome of one batch, preserving per-student
// detail in request order.
type ExportResult struct {
	BatchID   string       `json:"batch_id"`
	Status    string       `json:"status"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Outcomes  []JobOutcome `json:"outcomes"`

	Kind        string `json:"kind"`
	ContentType string `json:"content_type,omitempty"`
	FileName    string `json:"file_name,omitempty"`
	Data        []byte `json:"-"`
	// ArchiveName is set on the deferred path and retrieved through the
	// archive endpoint.
	ArchiveName string `json:"archive_name,omitempty"`
}
