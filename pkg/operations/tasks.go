package operations

import (
	"sync"

	"github.com/google/uuid"

	"GalaxyClientv2/internal/models"
	"GalaxyClientv2/pkg/gogapi"
)

// TaskHandle tracks one running or finished install for the task API.
type TaskHandle struct {
	ID          string
	Coordinator *Coordinator

	mu     sync.RWMutex
	result *Result
	done   chan struct{}
}

func (h *TaskHandle) Done() <-chan struct{} {
	return h.done
}

// Result is nil until the run finished.
func (h *TaskHandle) Result() *Result {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.result
}

func (h *TaskHandle) Status() models.TaskStatus {
	snapshot := h.Coordinator.Progress.Snapshot()
	fraction := snapshot.Fraction()

	status := models.TaskStatus{
		TaskID:   h.ID,
		Status:   "running",
		State:    string(snapshot.State),
		Progress: &fraction,
	}

	if result := h.Result(); result != nil {
		status.Status = result.Outcome()
		summary := result.Summary()
		status.Summary = &summary
		if result.Err != nil {
			msg := result.Err.Error()
			status.Error = &msg
		}
	}
	return status
}

type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*TaskHandle
}

func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]*TaskHandle)}
}

// StartInstall launches a coordinator run in the background and returns its
// handle immediately.
func (r *Registry) StartInstall(api *gogapi.Client, task InstallTask) *TaskHandle {
	handle := &TaskHandle{
		ID:          uuid.NewString(),
		Coordinator: NewCoordinator(api, task),
		done:        make(chan struct{}),
	}

	r.mu.Lock()
	r.tasks[handle.ID] = handle
	r.mu.Unlock()

	go func() {
		result := handle.Coordinator.Run()
		handle.mu.Lock()
		handle.result = result
		handle.mu.Unlock()
		close(handle.done)
	}()

	return handle
}

func (r *Registry) Get(id string) (*TaskHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handle, ok := r.tasks[id]
	return handle, ok
}

func (r *Registry) List() []models.TaskStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	statuses := make([]models.TaskStatus, 0, len(r.tasks))
	for _, handle := range r.tasks {
		statuses = append(statuses, handle.Status())
	}
	return statuses
}

// Cancel stops a running task. Finished tasks report false.
func (r *Registry) Cancel(id string) bool {
	handle, ok := r.Get(id)
	if !ok {
		return false
	}
	select {
	case <-handle.done:
		return false
	default:
		handle.Coordinator.Cancel()
		return true
	}
}
