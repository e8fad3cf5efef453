package dto

// Progress severities consumed by the presentation layer.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
	SeveritySuccess = "success"
)

// ProgressUpdate is the presentation-facing projection of one batch
// lifecycle event.
type ProgressUpdate struct {
	BatchID  string `json:"batch_id"`
	Percent  int    `json:"percent"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Done     bool   `json:"done"`
}
