// Package task tracks in-flight background work for progress observability.
package task

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a background task.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Info describes one background workflow invocation. Tasks are never
// persisted; the registry resets on process restart.
type Info struct {
	// TaskID is unique per invocation, distinct from the file id.
	TaskID string `json:"task_id"`

	// TaskType names the work being done (e.g. "process").
	TaskType string `json:"task_type"`

	// FileUUID is the file this task operates on.
	FileUUID string `json:"file_uuid"`

	// Status is the current lifecycle state.
	Status Status `json:"status"`

	// Progress percentage, 0-100.
	Progress int `json:"progress"`

	// Message is the human-readable current step.
	Message string `json:"message"`

	// StartedAt is the task creation time.
	StartedAt time.Time `json:"started_at"`
}

// Registry is a concurrency-safe in-memory task table. All mutations on
// unknown task ids are silent no-ops: the registry exists purely for
// observability, never for correctness-critical coordination.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]Info
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]Info)}
}

// Create inserts a new running task and returns its id.
func (r *Registry) Create(taskType, fileUUID string) string {
	taskID := uuid.New().String()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[taskID] = Info{
		TaskID:    taskID,
		TaskType:  taskType,
		FileUUID:  fileUUID,
		Status:    StatusRunning,
		Progress:  0,
		Message:   "Starting...",
		StartedAt: time.Now().UTC(),
	}
	return taskID
}

// UpdateProgress sets the progress percentage and step message.
func (r *Registry) UpdateProgress(taskID string, progress int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task, ok := r.tasks[taskID]; ok {
		task.Progress = progress
		task.Message = message
		r.tasks[taskID] = task
	}
}

// Complete marks the task completed at 100%.
func (r *Registry) Complete(taskID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task, ok := r.tasks[taskID]; ok {
		task.Status = StatusCompleted
		task.Progress = 100
		task.Message = "Completed"
		r.tasks[taskID] = task
	}
}

// Fail marks the task failed with the error text as message.
func (r *Registry) Fail(taskID, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task, ok := r.tasks[taskID]; ok {
		task.Status = StatusFailed
		task.Message = errMsg
		r.tasks[taskID] = task
	}
}

// Cancel marks the task cancelled. Returns false for unknown ids. This is
// advisory bookkeeping only; it does not abort an in-flight phase.
func (r *Registry) Cancel(taskID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[taskID]
	if !ok {
		return false
	}
	task.Status = StatusCancelled
	task.Message = "Cancelled by user"
	r.tasks[taskID] = task
	return true
}

// Get returns a snapshot of one task.
func (r *Registry) Get(taskID string) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[taskID]
	return task, ok
}

// List returns a snapshot of all known tasks.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]Info, 0, len(r.tasks))
	for _, task := range r.tasks {
		tasks = append(tasks, task)
	}
	return tasks
}
