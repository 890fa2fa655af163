package schedule

import (
	"sync"

	"github.com/robfig/cron/v3"
)

// Ticker is the narrow slice of plugin.Runtime a CronTrigger needs: the
// ability to dispatch Tick(schedule) without schedule.go importing the
// plugin package (which already imports schedule, so that direction would
// cycle).
type Ticker interface {
	Tick(sched ID) error
}

// CronTrigger drives a Runtime's schedule-based tick dispatch (spec.md
// §4.5.3) on a wall-clock cadence, in addition to whatever manual
// Tick(schedule) calls a host makes. One CronTrigger entry binds a cron
// expression ("@every 30s", "*/5 * * * *", ...) to a single schedule ID.
type CronTrigger struct {
	mu      sync.Mutex
	cron    *cron.Cron
	rt      Ticker
	lastErr error
}

// NewCronTrigger constructs a trigger bound to rt. Call AddSchedule for
// each cron-driven schedule, then Start.
func NewCronTrigger(rt Ticker) *CronTrigger {
	return &CronTrigger{cron: cron.New(), rt: rt}
}

// AddSchedule registers spec (standard five-field cron syntax, or a
// "@every <duration>" descriptor) to dispatch sched whenever it fires.
// Returns the entry ID so a host can later remove it via Remove.
func (t *CronTrigger) AddSchedule(spec string, sched ID) (cron.EntryID, error) {
	return t.cron.AddFunc(spec, func() {
		if err := t.rt.Tick(sched); err != nil {
			t.mu.Lock()
			t.lastErr = err
			t.mu.Unlock()
		}
	})
}

// Remove cancels a previously registered entry.
func (t *CronTrigger) Remove(id cron.EntryID) {
	t.cron.Remove(id)
}

// Start begins dispatching on a background goroutine managed by the
// underlying cron.Cron.
func (t *CronTrigger) Start() {
	t.cron.Start()
}

// Stop halts dispatch and waits for any in-flight Tick to finish.
func (t *CronTrigger) Stop() {
	<-t.cron.Stop().Done()
}

// LastError returns the most recent error returned by a dispatched Tick,
// if any, and clears it.
func (t *CronTrigger) LastError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	err := t.lastErr
	t.lastErr = nil
	return err
}
