package models

import (
	"fmt"
	"time"
)

// MinJobInterval is the shortest allowed repeat interval for a scheduled scan.
const MinJobInterval = 10 * time.Second

// JobSpec describes a recurring scan. The repeat interval is an explicit
// caller-supplied parameter; there is no process-wide refresh flag.
type JobSpec struct {
	Request  ScanRequest `json:"request"`
	Interval string      `json:"interval"`
	Email    bool        `json:"email,omitempty"`
}

// GetInterval parses and validates the repeat interval.
func (s *JobSpec) GetInterval() (time.Duration, error) {
	d, err := time.ParseDuration(s.Interval)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", s.Interval, err)
	}
	if d < MinJobInterval {
		return 0, fmt.Errorf("interval %s is below the minimum %s", d, MinJobInterval)
	}
	return d, nil
}

// Job is a registered recurring scan. LastResponse holds only the most
// recent outcome; it lives in process memory and is lost on restart.
type Job struct {
	ID           string        `json:"id"`
	Spec         JobSpec       `json:"spec"`
	CreatedAt    time.Time     `json:"created_at"`
	LastRun      *time.Time    `json:"last_run,omitempty"`
	RunCount     int           `json:"run_count"`
	LastError    string        `json:"last_error,omitempty"`
	LastResponse *ScanResponse `json:"last_response,omitempty"`
}
