package scheduler

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPurger struct{ calls int }

func (p *countingPurger) Purge() int { p.calls++; return 3 }

type countingSessions struct {
	calls   int
	maxIdle time.Duration
}

func (s *countingSessions) PurgeIdle(maxIdle time.Duration) int {
	s.calls++
	s.maxIdle = maxIdle
	return 1
}

type countingCatalog struct{ calls int }

func (c *countingCatalog) WarmUp(context.Context) int { c.calls++; return 0 }

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestNew_RegistersConfiguredJobs(t *testing.T) {
	s, err := New(Jobs{Cache: &countingPurger{}, Sessions: &countingSessions{}, SessionTTL: time.Hour}, quietLogger())
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 2)

	s, err = New(Jobs{}, quietLogger())
	require.NoError(t, err)
	assert.Empty(t, s.cron.Entries())
}

func TestJobs(t *testing.T) {
	cache := &countingPurger{}
	sessions := &countingSessions{}
	catalog := &countingCatalog{}

	s, err := New(Jobs{Cache: cache, Sessions: sessions, SessionTTL: 2 * time.Hour, Catalog: catalog}, quietLogger())
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 3)

	s.purgeCache()
	s.purgeSessions()
	s.warmUp()

	assert.Equal(t, 1, cache.calls)
	assert.Equal(t, 1, sessions.calls)
	assert.Equal(t, 2*time.Hour, sessions.maxIdle)
	assert.Equal(t, 1, catalog.calls)
}

func TestStartStop(t *testing.T) {
	s, err := New(Jobs{Cache: &countingPurger{}}, quietLogger())
	require.NoError(t, err)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
