package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Purger drops expired cache entries
type Purger interface {
	Purge() int
}

// SessionPurger drops sessions idle longer than maxIdle
type SessionPurger interface {
	PurgeIdle(maxIdle time.Duration) int
}

// WarmUpper prefetches lookups, returning how many options were loaded
type WarmUpper interface {
	WarmUp(ctx context.Context) int
}

// Jobs lists what the scheduler maintains; nil fields are skipped
type Jobs struct {
	Cache      Purger
	Sessions   SessionPurger
	SessionTTL time.Duration
	Catalog    WarmUpper
}

// Scheduler runs periodic housekeeping jobs
type Scheduler struct {
	cron *cron.Cron
	jobs Jobs
	log  *logrus.Logger
}

// New registers the housekeeping jobs
func New(jobs Jobs, log *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(),
		jobs: jobs,
		log:  log,
	}

	specs := []struct {
		spec string
		name string
		fn   func()
		on   bool
	}{
		{"@every 10m", "cache purge", s.purgeCache, jobs.Cache != nil},
		{"@every 15m", "session purge", s.purgeSessions, jobs.Sessions != nil},
		{"@hourly", "brand warm-up", s.warmUp, jobs.Catalog != nil},
	}
	for _, j := range specs {
		if !j.on {
			continue
		}
		if _, err := s.cron.AddFunc(j.spec, j.fn); err != nil {
			return nil, fmt.Errorf("failed to schedule %s: %w", j.name, err)
		}
	}
	return s, nil
}

// Start runs the jobs in the background and warms the catalog once
func (s *Scheduler) Start() {
	if s.jobs.Catalog != nil {
		go s.warmUp()
	}
	s.cron.Start()
	s.log.Infof("Scheduler started with %d jobs", len(s.cron.Entries()))
}

// Stop waits for running jobs to finish or ctx to expire
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) purgeCache() {
	if n := s.jobs.Cache.Purge(); n > 0 {
		s.log.Debugf("Purged %d expired cache entries", n)
	}
}

func (s *Scheduler) purgeSessions() {
	if n := s.jobs.Sessions.PurgeIdle(s.jobs.SessionTTL); n > 0 {
		s.log.Infof("Purged %d idle sessions", n)
	}
}

func (s *Scheduler) warmUp() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n := s.jobs.Catalog.WarmUp(ctx)
	if n == 0 {
		s.log.Warn("Brand warm-up loaded no options")
		return
	}
	s.log.Debugf("Brand warm-up loaded %d brands", n)
}
