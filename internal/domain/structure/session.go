package structure

import (
	"context"
	"time"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusGenerating Status = "generating"
	StatusGenerated  Status = "generated"
	StatusFailed     Status = "failed"
	StatusMinimized  Status = "minimized"
)

// Session records one generation request and what followed it.
type Session struct {
	ID         string    `json:"id"`
	UserDir    string    `json:"user_dir"`
	Descriptor string    `json:"descriptor,omitempty"`
	Units      int       `json:"units"`
	Status     Status    `json:"status"`
	SMILES     string    `json:"smiles,omitempty"`
	Error      string    `json:"error,omitempty"`
	Artifacts  []string  `json:"artifacts,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewSession returns a session in the generating state.
func NewSession(id, userDir, descriptor string, now time.Time) *Session {
	return &Session{
		ID:         id,
		UserDir:    userDir,
		Descriptor: descriptor,
		Status:     StatusGenerating,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Transition moves the session to status and stamps UpdatedAt.
func (s *Session) Transition(status Status, now time.Time) {
	s.Status = status
	s.UpdatedAt = now
}

// Fail records err and marks the session failed.
func (s *Session) Fail(err error, now time.Time) {
	if err != nil {
		s.Error = err.Error()
	}
	s.Transition(StatusFailed, now)
}

// SessionRepository persists session records.  Get returns an error with
// code SessionNotFound for unknown ids.
type SessionRepository interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

//Personal.AI order the ending
