// Package schedule runs the periodic jobs on cron specs.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/robfig/cron/v3"

	"tweetgate/internal/metrics"
)

// Job is one periodic task.
type Job func(ctx context.Context) error

// JobInfo describes a registered job.
type JobInfo struct {
	Name    string
	Spec    string
	NextRun time.Time
	LastRun time.Time
}

type entry struct {
	id   cron.EntryID
	spec string
	job  Job
}

// Scheduler fires registered jobs on their schedules. A job that is still
// running when its next tick arrives skips that tick.
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]entry
	log     *slog.Logger
	timeout time.Duration
}

func New(loc *time.Location, log *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	c := cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	return &Scheduler{cron: c, jobs: make(map[string]entry), log: log, timeout: 10 * time.Minute}
}

// Add registers job under name. An empty spec leaves the job disabled.
func (s *Scheduler) Add(name, spec string, job Job) error {
	if spec == "" {
		s.log.Info("job disabled", "job", name)
		return nil
	}
	if _, dup := s.jobs[name]; dup {
		return fmt.Errorf("job %s already scheduled", name)
	}
	id, err := s.cron.AddFunc(spec, func() { s.run(context.Background(), name, job) })
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}
	s.jobs[name] = entry{id: id, spec: spec, job: job}
	s.log.Debug("job added", "job", name, "spec", spec)
	return nil
}

func (s *Scheduler) run(parent context.Context, name string, job Job) error {
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()
	start := time.Now()
	defer metrics.ObserveJob(name, start)
	if err := job(ctx); err != nil {
		s.log.Warn("job failed", "job", name, "err", err)
		return err
	}
	s.log.Debug("job done", "job", name, "took", time.Since(start))
	return nil
}

// RunNow executes a registered job immediately on the caller's goroutine.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	e, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("unknown job %s", name)
	}
	return s.run(ctx, name, e.job)
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}

// Jobs lists registered jobs by name. Before Run starts the scheduler, NextRun
// is computed from the spec.
func (s *Scheduler) Jobs() []JobInfo {
	out := make([]JobInfo, 0, len(s.jobs))
	for name, e := range s.jobs {
		ce := s.cron.Entry(e.id)
		next := ce.Next
		if next.IsZero() && ce.Schedule != nil {
			next = ce.Schedule.Next(time.Now().In(s.cron.Location()))
		}
		out = append(out, JobInfo{Name: name, Spec: e.spec, NextRun: next, LastRun: ce.Prev})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Next reports when spec fires after now, for previews.
func Next(spec string, now time.Time) (time.Time, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(now), nil
}
