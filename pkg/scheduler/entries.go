package scheduler

import (
	"fmt"

	"bqdigital/housekeeper/pkg/config"
	"bqdigital/housekeeper/pkg/tasks"
)

// BuildEntries creates registry entries for cfgs. Disabled tasks are
// registered paused so they can still be run on demand.
func BuildEntries(cfgs []config.TaskConfig, deps tasks.Deps) ([]*tasks.Entry, error) {
	entries := make([]*tasks.Entry, 0, len(cfgs))
	for _, tc := range cfgs {
		task, err := tasks.New(tc.Type, deps)
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", tc.Name, err)
		}
		entries = append(entries, &tasks.Entry{
			Name:     tc.Name,
			Type:     tc.Type,
			Schedule: tc.Schedule,
			Data:     tc.Data,
			Task:     task,
			Paused:   !tc.IsEnabled(),
		})
	}
	return entries, nil
}
