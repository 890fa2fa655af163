package schedule_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TeamRadiantAI/polaris-sub000/schedule"
)

type RunEveryTick struct{}

type fakeTicker struct {
	mu    sync.Mutex
	ticks []schedule.ID
	err   error
}

func (f *fakeTicker) Tick(sched schedule.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ticks = append(f.ticks, sched)
	return f.err
}

func (f *fakeTicker) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ticks)
}

func TestAddScheduleDispatchesTickOnCronFire(t *testing.T) {
	ticker := &fakeTicker{}
	trigger := schedule.NewCronTrigger(ticker)

	_, err := trigger.AddSchedule("@every 10ms", schedule.Of[RunEveryTick]())
	require.NoError(t, err)

	trigger.Start()
	defer trigger.Stop()

	require.Eventually(t, func() bool { return ticker.count() > 0 }, time.Second, 5*time.Millisecond)
}

func TestLastErrorSurfacesAndClearsTickFailures(t *testing.T) {
	wantErr := errors.New("boom")
	ticker := &fakeTicker{err: wantErr}
	trigger := schedule.NewCronTrigger(ticker)

	_, err := trigger.AddSchedule("@every 10ms", schedule.Of[RunEveryTick]())
	require.NoError(t, err)

	trigger.Start()
	defer trigger.Stop()

	require.Eventually(t, func() bool { return trigger.LastError() != nil }, time.Second, 5*time.Millisecond)

	assert.Nil(t, trigger.LastError(), "LastError should clear on read")
}

func TestRemoveStopsFurtherDispatch(t *testing.T) {
	ticker := &fakeTicker{}
	trigger := schedule.NewCronTrigger(ticker)

	id, err := trigger.AddSchedule("@every 10ms", schedule.Of[RunEveryTick]())
	require.NoError(t, err)

	trigger.Start()
	require.Eventually(t, func() bool { return ticker.count() > 0 }, time.Second, 5*time.Millisecond)

	trigger.Remove(id)
	countAtRemoval := ticker.count()
	time.Sleep(50 * time.Millisecond)
	trigger.Stop()

	assert.Equal(t, countAtRemoval, ticker.count())
}

func TestInvalidCronSpecReturnsError(t *testing.T) {
	trigger := schedule.NewCronTrigger(&fakeTicker{})
	_, err := trigger.AddSchedule("not a cron spec", schedule.Of[RunEveryTick]())
	assert.Error(t, err)
}
