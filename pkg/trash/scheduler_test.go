package trash

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		wantRunning bool
		wantError   bool
	}{
		{name: "valid daily schedule", schedule: "0 3 * * *", wantRunning: true},
		{name: "valid hourly schedule", schedule: "0 * * * *", wantRunning: true},
		{name: "empty schedule - no error, not running", schedule: ""},
		{name: "invalid schedule", schedule: "invalid cron", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			s := NewScheduler(f.mgr, tt.schedule)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := s.Start(ctx)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantRunning, s.IsRunning())

			if tt.wantRunning {
				next := s.NextRun()
				require.NotNil(t, next)
				assert.True(t, next.After(time.Now()))
			} else {
				assert.Nil(t, s.NextRun())
			}
			s.Stop()
			assert.False(t, s.IsRunning())
		})
	}
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	f := newFixture(t, false)
	s := NewScheduler(f.mgr, "0 3 * * *")

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	require.True(t, s.IsRunning())

	cancel()
	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestScheduler_Restart(t *testing.T) {
	f := newFixture(t, false)
	s := NewScheduler(f.mgr, "0 3 * * *")
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))
	s.Stop()
	require.NoError(t, s.Start(ctx))
	defer s.Stop()

	assert.True(t, s.IsRunning())
	assert.Len(t, s.cron.Entries(), 1)
}

func TestScheduler_RunPurge(t *testing.T) {
	f := newFixture(t, false)
	page := f.add(f.root, "Page")
	f.throwAt(page.NodeID, epoch)
	f.now = day(365)

	s := NewScheduler(f.mgr, "0 3 * * *")
	s.runPurge(context.Background())

	assert.False(t, f.exists(page.NodeID))
}

func TestScheduler_RestartIgnoresEarlierContext(t *testing.T) {
	f := newFixture(t, false)
	s := NewScheduler(f.mgr, "0 3 * * *")

	first, cancelFirst := context.WithCancel(context.Background())
	require.NoError(t, s.Start(first))
	s.Stop()

	second, cancelSecond := context.WithCancel(context.Background())
	defer cancelSecond()
	require.NoError(t, s.Start(second))
	defer s.Stop()

	cancelFirst()
	assert.Never(t, func() bool { return !s.IsRunning() }, 200*time.Millisecond, 10*time.Millisecond)

	cancelSecond()
	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}
