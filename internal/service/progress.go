package service

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/ysxx86/classreport-go-api/internal/dto"
)

const progressBufferSize = 16

// Progress event types emitted by the batch orchestrator.
const (
	EventBatchStarted   = "batch_started"
	EventJobStarted     = "job_started"
	EventJobCompleted   = "job_completed"
	EventJobFailed      = "job_failed"
	EventPackaging      = "packaging"
	EventBatchCompleted = "batch_completed"
	EventBatchFailed    = "batch_failed"
)

// ProgressEvent is one orchestrator lifecycle event. Presentation concerns
// live entirely in MapProgress; the orchestrator only states facts.
type ProgressEvent struct {
	Type        string `json:"type"`
	BatchID     string `json:"batch_id"`
	Index       int    `json:"index"`
	Total       int    `json:"total"`
	StudentID   string `json:"student_id,omitempty"`
	StudentName string `json:"student_name,omitempty"`
	Status      string `json:"status,omitempty"`
	Error       string `json:"error,omitempty"`
}

// MapProgress is the pure projection from a lifecycle event to the
// (percentage, message, severity) tuple the presentation layer consumes.
// Job progress spans 10..90 so the bar visibly moves before the first
// render lands and leaves room for packaging.
func MapProgress(event ProgressEvent) dto.ProgressUpdate {
	update := dto.ProgressUpdate{BatchID: event.BatchID, Severity: dto.SeverityInfo}

	switch event.Type {
	case EventBatchStarted:
		update.Percent = 5
		update.Message = fmt.Sprintf("Preparing export of %d report(s)", event.Total)
	case EventJobStarted:
		update.Percent = jobPercent(event.Index, event.Total)
		update.Message = fmt.Sprintf("Rendering report %d of %d (%s)", event.Index+1, event.Total, event.StudentID)
	case EventJobCompleted:
		update.Percent = jobPercent(event.Index+1, event.Total)
		update.Message = fmt.Sprintf("Report %d of %d finished", event.Index+1, event.Total)
	case EventJobFailed:
		update.Percent = jobPercent(event.Index+1, event.Total)
		update.Message = fmt.Sprintf("Report for %s failed: %s", event.StudentID, event.Error)
		update.Severity = dto.SeverityWarning
	case EventPackaging:
		update.Percent = 95
		update.Message = "Packaging documents"
	case EventBatchCompleted:
		update.Percent = 100
		update.Done = true
		update.Severity = dto.SeveritySuccess
		update.Message = fmt.Sprintf("Export finished: %s", event.Status)
		if event.Status == dto.BatchPartialSuccess {
			update.Severity = dto.SeverityWarning
		}
	case EventBatchFailed:
		update.Percent = 100
		update.Done = true
		update.Severity = dto.SeverityError
		update.Message = fmt.Sprintf("Export failed: %s", event.Error)
	default:
		update.Message = event.Type
	}

	return update
}

func jobPercent(done, total int) int {
	if total <= 0 {
		return 10
	}
	percent := 10 + done*80/total
	if percent > 90 {
		percent = 90
	}
	return percent
}

// ProgressBroker fans progress updates out to per-batch subscribers and,
// when a NATS connection is configured, republishes them for other nodes.
type ProgressBroker struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan dto.ProgressUpdate]struct{}
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
}

// NewProgressBroker constructs a broker. natsConn may be nil when cross-node
// fanout is not configured.
func NewProgressBroker(natsConn *nats.Conn, subject string, logger zerolog.Logger) *ProgressBroker {
	if subject == "" {
		subject = "classreport.export.progress"
	}
	return &ProgressBroker{
		subscribers: make(map[string]map[chan dto.ProgressUpdate]struct{}),
		nats:        natsConn,
		natsSubject: subject,
		logger:      logger.With().Str("component", "progress_broker").Logger(),
	}
}

// Subscribe registers a listener for one batch. The returned cancel func
// must be called when the listener goes away; a slow listener loses updates
// rather than blocking the orchestrator.
func (b *ProgressBroker) Subscribe(batchID string) (<-chan dto.ProgressUpdate, func()) {
	channel := make(chan dto.ProgressUpdate, progressBufferSize)

	b.mu.Lock()
	if b.subscribers[batchID] == nil {
		b.subscribers[batchID] = make(map[chan dto.ProgressUpdate]struct{})
	}
	b.subscribers[batchID][channel] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if listeners, ok := b.subscribers[batchID]; ok {
			delete(listeners, channel)
			if len(listeners) == 0 {
				delete(b.subscribers, batchID)
			}
		}
		b.mu.Unlock()
	}

	return channel, cancel
}

// Publish maps the event and delivers the update to local subscribers and
// the NATS subject.
func (b *ProgressBroker) Publish(event ProgressEvent) {
	update := MapProgress(event)

	b.mu.RLock()
	for channel := range b.subscribers[event.BatchID] {
		select {
		case channel <- update:
		default:
		}
	}
	b.mu.RUnlock()

	if b.nats != nil {
		payload, err := json.Marshal(update)
		if err == nil {
			if err := b.nats.Publish(b.natsSubject, payload); err != nil {
				b.logger.Warn().Err(err).Msg("failed to publish progress to nats")
			}
		}
	}
}
