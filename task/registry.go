// Package task holds the in-memory scrape task registry and the worker
// pool that bounds concurrent browser sessions.
package task

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/kuchikomi-lab/kuchikomi/models"
)

// Task statuses.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Task tracks one scrape invocation from creation to expiry. Workers
// write through the mutating methods; handlers read via Snapshot.
type Task struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	status   string
	progress int
	message  string
	reviews  []models.Review
	place    *models.PlaceInfo
	errDet   *models.ErrorDetail
}

// SetProgress records a stage-boundary update. Used as the scraper's
// progress sink, so it must be cheap and lock-only.
func (t *Task) SetProgress(message string, percent int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.message = message
	t.progress = percent
}

// Complete stores the finished result.
func (t *Task) Complete(result *models.ScrapeResult, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = StatusCompleted
	t.progress = 100
	t.message = message
	t.reviews = result.Reviews
	place := result.Place
	t.place = &place
}

// Fail marks the task failed with a terminal error.
func (t *Task) Fail(detail *models.ErrorDetail) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = StatusError
	t.progress = 100
	t.message = "エラー: " + detail.Message
	t.errDet = detail
}

// Snapshot returns a consistent copy of the task for API responses.
func (t *Task) Snapshot() models.TaskStatusResponse {
	t.mu.Lock()
	defer t.mu.Unlock()
	return models.TaskStatusResponse{
		TaskID:    t.ID,
		Status:    t.status,
		Progress:  t.progress,
		Message:   t.message,
		Reviews:   t.reviews,
		PlaceInfo: t.place,
		Error:     t.errDet,
	}
}

// Result returns the completed review set, or ok=false while the task is
// still running or failed empty.
func (t *Task) Result() (reviews []models.Review, place *models.PlaceInfo, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusCompleted {
		return nil, nil, false
	}
	return t.reviews, t.place, true
}

// Registry is the process-wide task store. Finished tasks stay queryable
// for the configured TTL, then a background sweep drops them.
type Registry struct {
	store sync.Map
	ttl   time.Duration
}

// NewRegistry creates a Registry and starts its expiry sweep.
func NewRegistry(ttl time.Duration) *Registry {
	r := &Registry{ttl: ttl}
	go r.sweep()
	return r
}

// Create registers a fresh processing task and returns it.
func (r *Registry) Create() *Task {
	t := &Task{
		ID:        "task-" + randomID(),
		CreatedAt: time.Now(),
		status:    StatusProcessing,
		message:   "処理を開始しています...",
	}
	r.store.Store(t.ID, t)
	return t
}

// Get looks up a task by id.
func (r *Registry) Get(id string) (*Task, bool) {
	val, ok := r.store.Load(id)
	if !ok {
		return nil, false
	}
	return val.(*Task), true
}

func (r *Registry) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-r.ttl)
		r.store.Range(func(key, value any) bool {
			if value.(*Task).CreatedAt.Before(cutoff) {
				r.store.Delete(key)
			}
			return true
		})
	}
}

// randomID generates a short random hex string for task IDs.
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
