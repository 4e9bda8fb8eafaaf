// Package tasks records the latest backend processing task per user.
package tasks

import (
	"sync"

	"github.com/dmitrijs2005/gophcam/internal/server/models"
)

// Registry maps an owner identity to the last task id the backend issued.
// It holds no link to the photo that produced the task.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]string
}

func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]string)}
}

func (r *Registry) Put(userID, taskID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[userID] = taskID
}

func (r *Registry) Get(userID string) (*models.ProcessingTask, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.tasks[userID]
	if !ok {
		return nil, false
	}
	return &models.ProcessingTask{TaskID: id, OwnerID: userID}, true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}
