package domain

import (
	"time"

	"github.com/google/uuid"
)

type JobKind string

const (
	JobExtract  JobKind = "extract"
	JobGenerate JobKind = "generate"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ResumeJob tracks one pass through the pipeline. Its ID keeps the files of
// concurrent requests apart.
type ResumeJob struct {
	ID        uuid.UUID `json:"id"`
	Kind      JobKind   `json:"kind"`
	Template  string    `json:"template,omitempty"`
	Status    string    `json:"status"`
	Path      string    `json:"path,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewResumeJob(kind JobKind) *ResumeJob {
	now := time.Now()
	return &ResumeJob{
		ID:        uuid.New(),
		Kind:      kind,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (j *ResumeJob) Complete(path string) {
	j.Status = StatusCompleted
	j.Path = path
	j.UpdatedAt = time.Now()
}

func (j *ResumeJob) Fail(err error) {
	j.Status = StatusFailed
	if err != nil {
		j.Error = err.Error()
	}
	j.UpdatedAt = time.Now()
}

// Elapsed is the time since the job was created.
func (j *ResumeJob) Elapsed() time.Duration { return j.UpdatedAt.Sub(j.CreatedAt) }
