// Package scheduler runs a job once a day at a wall-clock time.
package scheduler

import (
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var timeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// Scheduler wraps cron with a fixed time zone and a single daily entry.
type Scheduler struct {
	cron     *cron.Cron
	location *time.Location
	mu       sync.Mutex
	entryID  cron.EntryID
	job      func() bool
	started  bool
	running  sync.Mutex
}

// New creates a scheduler for the named time zone.
func New(timezone string) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		location: loc,
	}, nil
}

// Location is the scheduler's time zone.
func (s *Scheduler) Location() *time.Location { return s.location }

// Schedule runs fn daily at HH:MM, replacing any earlier schedule. A run that
// is still going when the next one is due, whether started by cron or by
// RunNow, is skipped.
func (s *Scheduler) Schedule(timeStr string, fn func()) error {
	hour, minute, err := ParseTime(timeStr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
	}
	job := s.exclusive(fn)
	entryID, err := s.cron.AddFunc(fmt.Sprintf("%d %d * * *", minute, hour), func() { job() })
	if err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}
	s.entryID = entryID
	s.job = job
	return nil
}

// RunNow runs the scheduled job in the caller's goroutine. It reports false
// when no job is scheduled or a run is already in progress.
func (s *Scheduler) RunNow() bool {
	s.mu.Lock()
	job := s.job
	s.mu.Unlock()
	if job == nil {
		return false
	}
	return job()
}

// exclusive lets one run of fn proceed at a time; overlapping calls return
// false without running it.
func (s *Scheduler) exclusive(fn func()) func() bool {
	return func() bool {
		if !s.running.TryLock() {
			return false
		}
		defer s.running.Unlock()
		fn()
		return true
	}
}

// Next reports when the scheduled job fires next; zero when none is set or
// the scheduler has not been started.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// Start begins dispatching.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		s.cron.Start()
		s.started = true
	}
}

// Stop halts dispatching and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	ctx := s.cron.Stop()
	s.mu.Unlock()
	<-ctx.Done()
}

// ParseTime splits "HH:MM" into hour and minute.
func ParseTime(timeStr string) (int, int, error) {
	matches := timeRegex.FindStringSubmatch(timeStr)
	if len(matches) != 3 {
		return 0, 0, fmt.Errorf("invalid time format: %q (expected HH:MM)", timeStr)
	}
	hour, _ := strconv.Atoi(matches[1])
	minute, _ := strconv.Atoi(matches[2])
	return hour, minute, nil
}
