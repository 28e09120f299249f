// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// JobStatus is a point-in-time view of a registered job
type JobStatus struct {
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
	Running   bool       `json:"running"`
}

type entry struct {
	id       cron.EntryID
	job      Job
	schedule string
	lastRun  time.Time
	lastErr  error
	running  bool
}

// Scheduler manages background jobs
type Scheduler struct {
	cron *cron.Cron
	now  func() time.Time
	log  zerolog.Logger

	mu   sync.Mutex
	jobs map[string]*entry
}

// New creates a new scheduler
func New(log zerolog.Logger) *Scheduler {
	l := log.With().Str("component", "scheduler").Logger()
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cronLogger{l})),
		),
		now:  time.Now,
		log:  l,
		jobs: make(map[string]*entry),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a new job with cron schedule
// Schedule examples:
//   - "0 */5 * * * *"      - Every 5 minutes
//   - "@hourly"            - Every hour
//   - "0 0 2 * * *"        - 2 AM daily
//   - "@every 15m"         - Every 15 minutes
//
// Job names must be unique.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.Name()]; exists {
		return fmt.Errorf("job %s already registered", job.Name())
	}

	e := &entry{job: job, schedule: schedule}
	id, err := s.cron.AddFunc(schedule, func() {
		_ = s.run(e)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", schedule, job.Name(), err)
	}
	e.id = id
	s.jobs[job.Name()] = e

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

// RunNow executes a registered job immediately (outside schedule)
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	e, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %s: %w", name, ErrUnknownJob)
	}

	s.log.Info().Str("job", name).Msg("Running job immediately")
	return s.run(e)
}

// Jobs returns the status of every registered job, sorted by name
func (s *Scheduler) Jobs() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for name, e := range s.jobs {
		st := JobStatus{
			Name:     name,
			Schedule: e.schedule,
			Running:  e.running,
		}
		if next := s.cron.Entry(e.id).Next; !next.IsZero() {
			st.NextRun = &next
		}
		if !e.lastRun.IsZero() {
			last := e.lastRun
			st.LastRun = &last
		}
		if e.lastErr != nil {
			st.LastError = e.lastErr.Error()
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Scheduler) run(e *entry) (err error) {
	name := e.job.Name()

	s.mu.Lock()
	if e.running {
		s.mu.Unlock()
		s.log.Warn().Str("job", name).Msg("Job still running, skipping")
		return fmt.Errorf("job %s: %w", name, ErrJobRunning)
	}
	e.running = true
	s.mu.Unlock()

	s.log.Debug().Str("job", name).Msg("Running job")
	start := s.now()

	// A panicking job is reported as a failed run and stays schedulable
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job %s panicked: %v", name, p)
		}

		s.mu.Lock()
		e.running = false
		e.lastRun = start
		e.lastErr = err
		s.mu.Unlock()

		if err != nil {
			s.log.Error().
				Err(err).
				Str("job", name).
				Msg("Job failed")
			return
		}
		s.log.Debug().
			Str("job", name).
			Dur("duration", s.now().Sub(start)).
			Msg("Job completed")
	}()

	return e.job.Run()
}

// cronLogger routes cron's own messages (including recovered panics) to zerolog
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
