// Package schedule manages recurring scans. The repeat interval is an
// explicit per-job parameter supplied by the caller; each run re-executes the
// scan as a fresh invocation and only the latest response is kept, in process
// memory.
package schedule

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/sweep/internal/common"
	"github.com/bobmcallan/sweep/internal/interfaces"
	"github.com/bobmcallan/sweep/internal/models"
)

// runTimeout bounds a single scheduled scan run.
const runTimeout = 5 * time.Minute

// Service implements ScheduleService on a cron runner.
type Service struct {
	scan     interfaces.ScanService
	report   interfaces.ReportService
	notifier interfaces.Notifier
	logger   *common.Logger

	cron *cron.Cron

	mu      sync.RWMutex
	entries map[string]*jobEntry
}

type jobEntry struct {
	job     *models.Job
	entryID cron.EntryID
}

// NewService creates a new schedule service and starts its runner. report
// and notifier may be nil; jobs with Email set then run without delivery.
func NewService(scan interfaces.ScanService, report interfaces.ReportService, notifier interfaces.Notifier, logger *common.Logger) *Service {
	s := &Service{
		scan:     scan,
		report:   report,
		notifier: notifier,
		logger:   logger,
		cron:     cron.New(),
		entries:  make(map[string]*jobEntry),
	}
	s.cron.Start()
	return s
}

// Add registers a recurring scan. The interval is validated against the
// minimum and the scan request is validated up front so a broken job is
// rejected here rather than failing silently on every tick.
func (s *Service) Add(spec models.JobSpec) (*models.Job, error) {
	interval, err := spec.GetInterval()
	if err != nil {
		return nil, err
	}

	spec.Request.Normalize()
	if err := spec.Request.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job request: %w", err)
	}

	job := &models.Job{
		ID:        uuid.New().String(),
		Spec:      spec,
		CreatedAt: time.Now().UTC(),
	}

	entryID := s.cron.Schedule(cron.Every(interval), cron.FuncJob(func() {
		s.runJob(job.ID)
	}))

	s.mu.Lock()
	s.entries[job.ID] = &jobEntry{job: job, entryID: entryID}
	s.mu.Unlock()

	s.logger.Info().
		Str("job_id", job.ID).
		Str("interval", interval.String()).
		Bool("email", spec.Email).
		Msg("Scheduled recurring scan")

	return copyJob(job), nil
}

// Get returns a snapshot of one job.
func (s *Service) Get(id string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("job not found: %s", id)
	}
	return copyJob(entry.job), nil
}

// List returns snapshots of all jobs, oldest first.
func (s *Service) List() []*models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*models.Job, 0, len(s.entries))
	for _, entry := range s.entries {
		jobs = append(jobs, copyJob(entry.job))
	}

	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})

	return jobs
}

// Remove unschedules and forgets a job.
func (s *Service) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("job not found: %s", id)
	}

	s.cron.Remove(entry.entryID)
	delete(s.entries, id)

	s.logger.Info().Str("job_id", id).Msg("Removed recurring scan")
	return nil
}

// Stop halts the runner and waits for in-flight runs, up to the context
// deadline.
func (s *Service) Stop(ctx context.Context) error {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runJob executes one tick of a job and records the outcome on it.
func (s *Service) runJob(id string) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	resp, err := s.scan.Scan(ctx, entry.job.Spec.Request)

	now := time.Now().UTC()
	s.mu.Lock()
	entry.job.LastRun = &now
	entry.job.RunCount++
	if err != nil {
		entry.job.LastError = err.Error()
	} else {
		entry.job.LastError = ""
		entry.job.LastResponse = resp
	}
	email := entry.job.Spec.Email
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn().Str("job_id", id).Err(err).Msg("Scheduled scan failed")
		return
	}

	s.logger.Info().
		Str("job_id", id).
		Int("results", len(resp.Results)).
		Msg("Scheduled scan complete")

	if email {
		s.deliverReport(id, resp)
	}
}

// deliverReport renders and emails the report for a completed run. Delivery
// problems are logged, never fatal to the job.
func (s *Service) deliverReport(id string, resp *models.ScanResponse) {
	if s.report == nil || s.notifier == nil || !s.notifier.Enabled() {
		return
	}

	markdown := s.report.Build(resp.Results)
	html, err := s.report.RenderHTML(markdown)
	if err != nil {
		s.logger.Warn().Str("job_id", id).Err(err).Msg("Report render failed, skipping delivery")
		return
	}

	subject := fmt.Sprintf("Market Scan: %d tickers — %s",
		len(resp.Results), resp.Meta.ExecutedAt.Format("2006-01-02 15:04 MST"))

	if err := s.notifier.SendReport(subject, html, markdown); err != nil {
		s.logger.Warn().Str("job_id", id).Err(err).Msg("Report delivery failed")
		return
	}

	s.logger.Info().Str("job_id", id).Msg("Report delivered")
}

// copyJob returns a snapshot safe to hand out while the runner keeps
// mutating the original.
func copyJob(job *models.Job) *models.Job {
	c := *job
	return &c
}

// Ensure Service implements ScheduleService
var _ interfaces.ScheduleService = (*Service)(nil)
