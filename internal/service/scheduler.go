package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a scheduled unit of work. It receives the scheduler's context.
type Job func(ctx context.Context)

// Scheduler runs named jobs on cron schedules. A job still running when its
// next tick arrives is skipped, and a panicking job is logged and recovered.
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
}

func NewScheduler(ctx context.Context, loc *time.Location) *Scheduler {
	logger := cron.PrintfLogger(log.Default())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		ctx: ctx,
	}
}

// Daily runs job every day at an "HH:MM" time in the scheduler's location.
func (s *Scheduler) Daily(name, at string, job Job) (cron.EntryID, error) {
	spec, err := dailySpec(at)
	if err != nil {
		return 0, fmt.Errorf("schedule %s: %w", name, err)
	}
	return s.add(name, spec, job)
}

// Every runs job at a fixed interval, rounded down to whole seconds.
func (s *Scheduler) Every(name string, interval time.Duration, job Job) (cron.EntryID, error) {
	if interval < time.Second {
		return 0, fmt.Errorf("schedule %s: interval %s is shorter than a second", name, interval)
	}
	return s.add(name, fmt.Sprintf("@every %ds", int(interval.Seconds())), job)
}

func (s *Scheduler) add(name, spec string, job Job) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, func() {
		if s.ctx.Err() != nil {
			return
		}
		job(s.ctx)
	})
	if err != nil {
		return 0, fmt.Errorf("schedule %s: %w", name, err)
	}
	log.Printf("[info] scheduled %s (%s)", name, spec)
	return id, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func dailySpec(at string) (string, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", at)
	}
	// second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", t.Minute(), t.Hour()), nil
}
