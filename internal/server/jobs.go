package server

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound reports an unknown job id.
	ErrNotFound = errors.New("server: job not found")
	// ErrFinished reports a cancel against a job already in a terminal
	// state.
	ErrFinished = errors.New("server: job already finished")
	// ErrCapacity reports a full job table.
	ErrCapacity = errors.New("server: job table full")
)

// JobState tracks a run through its lifecycle.
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
	StateCancelled JobState = "cancelled"
)

// Terminal reports whether the state is final.
func (s JobState) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// RunRequest is the submission payload. Objective names come from the
// catalog; Initial and Bounds override the catalog defaults when set.
type RunRequest struct {
	Objective string       `json:"objective"`
	Method    string       `json:"method"`
	Direction string       `json:"direction"`
	MaxEval   uint         `json:"maxEval,omitempty"`
	AbsTol    *float64     `json:"absTol,omitempty"`
	RelTol    *float64     `json:"relTol,omitempty"`
	StopScore *float64     `json:"stopScore,omitempty"`
	Seed      *uint64      `json:"seed,omitempty"`
	Initial   []float64    `json:"initial,omitempty"`
	Bounds    [][2]float64 `json:"bounds,omitempty"`
}

// RunResult is the terminal payload of a run that reached the engine.
type RunResult struct {
	Code        int       `json:"code"`
	CodeText    string    `json:"codeText"`
	Optimum     []float64 `json:"optimum"`
	Score       float64   `json:"score"`
	Evaluations uint64    `json:"evaluations"`
}

// Job is one optimization run moving through the worker pool.
type Job struct {
	ID          string     `json:"id"`
	State       JobState   `json:"state"`
	Request     RunRequest `json:"request"`
	SubmittedAt time.Time  `json:"submittedAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	EndedAt     *time.Time `json:"endedAt,omitempty"`
	Error       string     `json:"error,omitempty"`
	Result      *RunResult `json:"result,omitempty"`

	// cancel is shared between snapshots of the same job; the running
	// worker polls it through the stop condition.
	cancel *atomic.Bool
}

// JobSummary is the listing shape.
type JobSummary struct {
	ID          string    `json:"id"`
	State       JobState  `json:"state"`
	Objective   string    `json:"objective"`
	Method      string    `json:"method"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Manager owns the job table. Mutation goes through its methods; reads
// return snapshots, so handlers never race the workers.
type Manager struct {
	mu       sync.RWMutex
	jobs     map[string]*Job
	order    []string
	capacity int
}

// NewManager returns a manager bounded to capacity jobs.
func NewManager(capacity int) *Manager {
	return &Manager{
		jobs:     make(map[string]*Job, capacity),
		capacity: capacity,
	}
}

// Submit registers a new pending job.
func (m *Manager) Submit(req RunRequest) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.jobs) >= m.capacity {
		return Job{}, ErrCapacity
	}

	j := &Job{
		ID:          uuid.NewString(),
		State:       StatePending,
		Request:     req,
		SubmittedAt: time.Now().UTC(),
		cancel:      &atomic.Bool{},
	}
	m.jobs[j.ID] = j
	m.order = append(m.order, j.ID)
	return *j, nil
}

// Get returns a snapshot of one job.
func (m *Manager) Get(id string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	j, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// List returns summaries in submission order.
func (m *Manager) List() []JobSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]JobSummary, 0, len(m.order))
	for _, id := range m.order {
		j := m.jobs[id]
		out = append(out, JobSummary{
			ID:          j.ID,
			State:       j.State,
			Objective:   j.Request.Objective,
			Method:      j.Request.Method,
			SubmittedAt: j.SubmittedAt,
		})
	}
	return out
}

// Cancel requests a cooperative stop. The job stays in its current
// state until the worker notices the flag and finishes it.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if j.State.Terminal() {
		return ErrFinished
	}
	j.cancel.Store(true)
	return nil
}

// CancelAll flips the cancel flag of every non-terminal job; used
// during shutdown so in-flight runs stop cooperatively.
func (m *Manager) CancelAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, j := range m.jobs {
		if !j.State.Terminal() {
			j.cancel.Store(true)
		}
	}
}

// update applies fn to one job under the write lock.
func (m *Manager) update(id string, fn func(*Job)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if j, ok := m.jobs[id]; ok {
		fn(j)
	}
}
