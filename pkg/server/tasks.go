package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"bqdigital/housekeeper/pkg/scheduler"
	"bqdigital/housekeeper/pkg/tasks"
)

const maxTaskDataBytes = 1 << 20

// TaskRunner runs registered tasks.
type TaskRunner interface {
	Run(ctx context.Context, name string, data *string, trigger string) (tasks.Result, error)
	Registry() *tasks.Registry
}

// RunResponse is the body of a task run response.
type RunResponse struct {
	Task   string `json:"task"`
	Status string `json:"status"`
	Result string `json:"result"`
}

// TaskInfo describes a configured task.
type TaskInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Schedule string `json:"schedule,omitempty"`
	Paused   bool   `json:"paused,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	entries := s.runner.Registry().Entries()
	out := make([]TaskInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, TaskInfo{Name: e.Name, Type: e.Type, Schedule: e.Schedule, Paused: e.Paused})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRunTask(w http.ResponseWriter, r *http.Request) {
	if s.crawlers != nil && s.crawlers.IsCrawler(r.Context()) {
		writeError(w, http.StatusForbidden, "crawlers may not trigger tasks")
		return
	}

	name := r.PathValue("name")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxTaskDataBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "task data too large")
		return
	}
	var data *string
	if len(body) > 0 {
		d := string(body)
		data = &d
	}

	result, err := s.runner.Run(r.Context(), name, data, scheduler.TriggerHTTP)
	switch {
	case errors.Is(err, tasks.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "task not found: "+name)
		return
	case errors.Is(err, tasks.ErrTaskRunning):
		writeJSON(w, http.StatusConflict, RunResponse{Task: name, Status: string(tasks.StatusSkipped), Result: "task is already running"})
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	code := http.StatusOK
	switch result.Status {
	case tasks.StatusConfigError:
		code = http.StatusUnprocessableEntity
	case tasks.StatusFailed:
		code = http.StatusInternalServerError
	}
	writeJSON(w, code, RunResponse{Task: name, Status: string(result.Status), Result: result.Message})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, errorResponse{Error: message})
}
