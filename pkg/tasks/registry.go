package tasks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrTaskNotFound is returned for names that were never registered.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskRunning is returned when a run of the same task is in flight.
	ErrTaskRunning = errors.New("task is already running")
)

// Entry is a registered task with its configured data.
type Entry struct {
	Name     string
	Type     string
	Schedule string
	Data     string
	Task     Task

	// Paused tasks keep their schedule but only run on demand.
	Paused bool
}

// Registry holds the configured tasks by name and guarantees at most one
// concurrent run per task name, whichever path triggered it. The per-name
// locks outlive Replace, so a run started before a reload still blocks
// runs of the reloaded task.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	locks   map[string]*sync.Mutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
		locks:   make(map[string]*sync.Mutex),
	}
}

// Register adds or replaces a task.
func (r *Registry) Register(e *Entry) error {
	if err := validEntry(e); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.Name] = e
	return nil
}

// Replace swaps the whole task set in one step.
func (r *Registry) Replace(entries []*Entry) error {
	next := make(map[string]*Entry, len(entries))
	for _, e := range entries {
		if err := validEntry(e); err != nil {
			return err
		}
		if _, dup := next[e.Name]; dup {
			return fmt.Errorf("duplicate task name %q", e.Name)
		}
		next[e.Name] = e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = next
	return nil
}

func validEntry(e *Entry) error {
	if e == nil || e.Name == "" {
		return errors.New("task name is required")
	}
	if e.Task == nil {
		return fmt.Errorf("task %q has no implementation", e.Name)
	}
	return nil
}

// Get returns the entry registered under name.
func (r *Registry) Get(name string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// Entries returns all entries sorted by name.
func (r *Registry) Entries() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) lock(name string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locks[name]
	if !ok {
		l = &sync.Mutex{}
		r.locks[name] = l
	}
	return l
}

// Run runs the named task with its configured data, or with data when
// non-nil. It returns ErrTaskRunning instead of waiting when the task is
// already running. Once started, a run is not interrupted by cancellation
// of ctx; its values are kept.
func (r *Registry) Run(ctx context.Context, name string, data *string) (Result, error) {
	e, ok := r.Get(name)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrTaskNotFound, name)
	}

	l := r.lock(name)
	if !l.TryLock() {
		return Result{Status: StatusSkipped}, fmt.Errorf("%w: %s", ErrTaskRunning, name)
	}
	defer l.Unlock()

	info := TaskInfo{Name: e.Name, Data: e.Data}
	if data != nil {
		info.Data = *data
	}
	return e.Task.Run(context.WithoutCancel(ctx), info), nil
}
