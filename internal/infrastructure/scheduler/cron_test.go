package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Validate("0 0 3 * * *"))
	require.NoError(t, Validate("@every 1h"))
	assert.Error(t, Validate("0 3 * * *"))
	assert.Error(t, Validate("not a cron"))
}

func TestCronSchedulerRunsJob(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("* * * * * *", time.UTC)
	fired := make(chan time.Time, 4)

	require.NoError(t, s.Start(context.Background(), func(at time.Time) { fired <- at }))

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("job was not triggered")
	}

	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
}

func TestCronSchedulerInvalidExpression(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("bogus", time.UTC)
	err := s.Start(context.Background(), func(time.Time) {})
	require.Error(t, err)
}
