package domain

import (
	"errors"
	"time"
)

var (
	ErrRunInProgress = errors.New("another run is in progress")
	ErrRunNotFound   = errors.New("run not found")
)

type RunReport struct {
	RunID      string    `json:"run_id"      db:"id"`
	Status     Status    `json:"status"      db:"status"`
	Stage      Stage     `json:"stage"       db:"stage"`
	ErrorKind  string    `json:"error_kind"  db:"error_kind"`
	Message    string    `json:"message"     db:"message"`
	Fetched    int       `json:"fetched"     db:"fetched"`
	Deduped    int       `json:"deduped"     db:"deduped"`
	Rejected   int       `json:"rejected"    db:"rejected"`
	Valid      int       `json:"valid"       db:"valid"`
	Invalid    int       `json:"invalid"     db:"invalid"`
	Published  int       `json:"published"   db:"published"`
	StartedAt  time.Time `json:"started_at"  db:"started_at"`
	FinishedAt time.Time `json:"finished_at" db:"finished_at"`
}
