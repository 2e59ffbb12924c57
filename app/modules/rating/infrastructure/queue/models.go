package ratingqueue

import (
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// QueueName is the River queue rating jobs run on.
const QueueName = "rating"

// FinalizeMatchJob rates a match once every participant has confirmed.
// Jobs are unique by args, so a match has at most one live finalize job.
type FinalizeMatchJob struct {
	MatchID uuid.UUID `json:"match_id"`
}

// Kind returns the job type identifier for River
func (FinalizeMatchJob) Kind() string { return "rating_finalize_match" }

// InsertOpts places the job on the rating queue.
func (FinalizeMatchJob) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       QueueName,
		MaxAttempts: 10,
		UniqueOpts: river.UniqueOpts{
			ByArgs:   true,
			ByPeriod: 24 * time.Hour,
		},
	}
}

// JobInfo is the organizer view of one River finalize job.
type JobInfo struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	MatchID     string `json:"match_id"`
	State       string `json:"state"`
	CreatedAt   string `json:"created_at"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}
