// Package eventlog implements the platform event log: every entry goes to
// slog and, when a writer is configured, is persisted as an event_log row.
package eventlog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"bqdigital/housekeeper/pkg/cms"
	"bqdigital/housekeeper/pkg/telemetry/logging"
)

// EventWriter persists event log entries.
type EventWriter interface {
	InsertEvent(ctx context.Context, event cms.AuditEvent) error
}

// Service implements cms.EventLog.
type Service struct {
	writer      EventWriter
	logger      *slog.Logger
	machineName string
	now         func() time.Time
}

var _ cms.EventLog = (*Service)(nil)

// New creates an event log service. writer may be nil, in which case
// entries are only logged.
func New(writer EventWriter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	machine, err := os.Hostname()
	if err != nil {
		machine = ""
	}
	return &Service{
		writer:      writer,
		logger:      logger.With("component", "eventlog"),
		machineName: machine,
		now:         time.Now,
	}
}

// LogError records an ERROR event.
func (s *Service) LogError(ctx context.Context, source, code, message string) {
	s.write(ctx, cms.AuditEvent{
		EventType:   cms.EventError,
		Source:      source,
		Code:        code,
		Description: message,
	})
}

// LogException records an ERROR event carrying the full error detail.
func (s *Service) LogException(ctx context.Context, source, code string, err error, message string) {
	event := cms.AuditEvent{
		EventType:   cms.EventError,
		Source:      source,
		Code:        code,
		Description: message,
	}
	if err != nil {
		event.Exception = fmt.Sprintf("%+v", err)
	}
	s.write(ctx, event)
}

// LogInformation records an INFORMATION event.
func (s *Service) LogInformation(ctx context.Context, source, code, message string) {
	s.write(ctx, cms.AuditEvent{
		EventType:   cms.EventInformation,
		Source:      source,
		Code:        code,
		Description: message,
	})
}

// LogAuditEvent records a fully described event. Missing request metadata
// is filled from the context when available.
func (s *Service) LogAuditEvent(ctx context.Context, event cms.AuditEvent) {
	if event.EventType == "" {
		event.EventType = cms.EventInformation
	}
	s.write(ctx, event)
}

func (s *Service) write(ctx context.Context, event cms.AuditEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.EventTime.IsZero() {
		event.EventTime = s.now()
	}
	if rc, ok := logging.GetRequestContext(ctx); ok {
		event.Context = mergeRequestContext(event.Context, rc)
	}
	if event.Context.MachineName == "" {
		event.Context.MachineName = s.machineName
	}

	attrs := []any{
		"event_id", event.ID,
		"source", event.Source,
		"code", event.Code,
	}
	attrs = append(attrs, logging.Attrs(ctx)...)
	if event.Exception != "" {
		attrs = append(attrs, "exception", event.Exception)
	}

	switch event.EventType {
	case cms.EventError:
		s.logger.ErrorContext(ctx, event.Description, attrs...)
	case cms.EventWarning:
		s.logger.WarnContext(ctx, event.Description, attrs...)
	default:
		s.logger.InfoContext(ctx, event.Description, attrs...)
	}

	if s.writer == nil {
		return
	}
	// The event log never fails its caller.
	if err := s.writer.InsertEvent(ctx, event); err != nil {
		s.logger.Warn("failed to persist event",
			"event_id", event.ID,
			"error", err,
		)
	}
}

// mergeRequestContext fills empty fields of dst from src.
func mergeRequestContext(dst, src cms.RequestContext) cms.RequestContext {
	if dst.URL == "" {
		dst.URL = src.URL
	}
	if dst.IPAddress == "" {
		dst.IPAddress = src.IPAddress
	}
	if dst.UserAgent == "" {
		dst.UserAgent = src.UserAgent
	}
	if dst.Referrer == "" {
		dst.Referrer = src.Referrer
	}
	if dst.SiteID == 0 {
		dst.SiteID = src.SiteID
	}
	if dst.MachineName == "" {
		dst.MachineName = src.MachineName
	}
	return dst
}
