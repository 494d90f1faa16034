package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"bqdigital/housekeeper/pkg/cms"
)

// InsertEvent persists an event log entry. A missing ID is generated.
func (s *SQLStorage) InsertEvent(ctx context.Context, event cms.AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.EventTime.IsZero() {
		event.EventTime = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO event_log (
			event_id, event_type, source, event_code, description, exception,
			url, ip_address, user_agent, referrer, site_id, machine_name, event_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		event.ID, event.EventType, event.Source, event.Code, event.Description, nullString(event.Exception),
		nullString(event.Context.URL), nullString(event.Context.IPAddress), nullString(event.Context.UserAgent),
		nullString(event.Context.Referrer), event.Context.SiteID, nullString(event.Context.MachineName),
		event.EventTime.UTC(),
	)
	if err != nil {
		return s.storageError("insert_event", err)
	}
	return nil
}

// RecentEvents returns up to limit events, newest first.
func (s *SQLStorage) RecentEvents(ctx context.Context, limit int) ([]cms.AuditEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, event_type, source, event_code, description, exception,
			url, ip_address, user_agent, referrer, site_id, machine_name, event_time
		FROM event_log
		ORDER BY event_time DESC, event_id
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, s.storageError("query_events", err)
	}
	defer rows.Close()

	events := []cms.AuditEvent{}
	for rows.Next() {
		var e cms.AuditEvent
		var exception, url, ip, ua, referrer, machine sql.NullString
		err := rows.Scan(&e.ID, &e.EventType, &e.Source, &e.Code, &e.Description, &exception,
			&url, &ip, &ua, &referrer, &e.Context.SiteID, &machine, &e.EventTime)
		if err != nil {
			return nil, s.storageError("scan_event", err)
		}
		e.Exception = exception.String
		e.Context.URL = url.String
		e.Context.IPAddress = ip.String
		e.Context.UserAgent = ua.String
		e.Context.Referrer = referrer.String
		e.Context.MachineName = machine.String
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, s.storageError("query_events", err)
	}
	return events, nil
}

// RecordTaskRun implements cms.TaskRunRecorder.
func (s *SQLStorage) RecordTaskRun(ctx context.Context, run cms.TaskRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_runs (run_id, task_name, started_at, finished_at, status, result)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.TaskName, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Status, run.Result,
	)
	if err != nil {
		return s.storageError("record_task_run", err)
	}
	return nil
}

// LastTaskRun returns the most recent run of a task, or cms.ErrNotFound.
func (s *SQLStorage) LastTaskRun(ctx context.Context, taskName string) (*cms.TaskRun, error) {
	var run cms.TaskRun
	err := s.db.QueryRowContext(ctx, `
		SELECT run_id, task_name, started_at, finished_at, status, result
		FROM task_runs
		WHERE task_name = $1
		ORDER BY started_at DESC
		LIMIT 1`,
		taskName,
	).Scan(&run.ID, &run.TaskName, &run.StartedAt, &run.FinishedAt, &run.Status, &run.Result)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cms.ErrNotFound
	}
	if err != nil {
		return nil, s.storageError("query_last_task_run", err)
	}
	return &run, nil
}
