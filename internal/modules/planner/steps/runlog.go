package steps

import (
	"time"

	"github.com/google/uuid"
)

// RunRecord is the audit entry for one oracle generation attempt.
type RunRecord struct {
	ID               uuid.UUID
	Artifact         string // "priorities" | "schedule"
	Attempt          int
	Status           string // "succeeded" | "failed" | "degraded"
	LatencyMS        int
	ValidationErrors []string
	CreatedAt        time.Time
}

// RunLog collects generation-attempt records for a single run. The
// pipeline is strictly sequential, so no locking is needed.
type RunLog struct {
	records []RunRecord
}

func NewRunLog() *RunLog {
	return &RunLog{}
}

// Add appends a record; the attempt number is derived from how many
// records already exist for the artifact.
func (l *RunLog) Add(artifact string, status string, started time.Time, validationErrors []string) RunRecord {
	attempt := 1
	for _, r := range l.records {
		if r.Artifact == artifact {
			attempt++
		}
	}
	rec := RunRecord{
		ID:               uuid.New(),
		Artifact:         artifact,
		Attempt:          attempt,
		Status:           status,
		LatencyMS:        int(time.Since(started).Milliseconds()),
		ValidationErrors: append([]string(nil), validationErrors...),
		CreatedAt:        time.Now().UTC(),
	}
	l.records = append(l.records, rec)
	return rec
}

func (l *RunLog) Records() []RunRecord {
	if l == nil {
		return nil
	}
	return append([]RunRecord(nil), l.records...)
}
