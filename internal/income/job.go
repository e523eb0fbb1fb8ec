// Package income runs the periodic passive-income grant.
package income

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"wager-pool/internal/ledger"
	"wager-pool/internal/notify"
)

var ErrAlreadyRunning = errors.New("income_job_running")

type Granter interface {
	GrantIncome(ctx context.Context, runID string, amount int64) ([]ledger.AccountUpdate, error)
}

// Job grants Amount to every account once per Interval. Each slot of the
// interval has its own run id, so a sweep interrupted by a crash is finished
// on restart without crediting anyone twice.
type Job struct {
	granter   Granter
	publisher notify.Publisher
	amount    int64
	interval  time.Duration
	now       func() time.Time

	running atomic.Bool
	sweepMu sync.Mutex
}

func New(g Granter, p notify.Publisher, amount int64, interval time.Duration) *Job {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Job{granter: g, publisher: p, amount: amount, interval: interval, now: time.Now}
}

// RunID names the slot containing t.
func RunID(t time.Time, interval time.Duration) string {
	return fmt.Sprintf("income-%d", t.Truncate(interval).Unix())
}

// Start runs the sweep for the current slot, then again at every slot
// boundary, until ctx is cancelled. Slots missed while a sweep ran long are
// swept late rather than skipped. Only one loop may run per Job.
func (j *Job) Start(ctx context.Context) error {
	if !j.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	go func() {
		defer j.running.Store(false)
		last := j.now().Truncate(j.interval)
		j.runLogged(ctx, last)
		for {
			timer := time.NewTimer(max(last.Add(j.interval).Sub(j.now()), 0))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			last = j.catchUp(ctx, last, j.now())
		}
	}()
	return nil
}

// catchUp sweeps every slot after last up to the one containing now, oldest
// first, and returns the last slot swept.
func (j *Job) catchUp(ctx context.Context, last, now time.Time) time.Time {
	current := now.Truncate(j.interval)
	for slot := last.Add(j.interval); !slot.After(current); slot = slot.Add(j.interval) {
		if ctx.Err() != nil {
			break
		}
		j.runLogged(ctx, slot)
		last = slot
	}
	return last
}

func (j *Job) Running() bool {
	return j.running.Load()
}

// RunOnce grants income for the slot containing now.
func (j *Job) RunOnce(ctx context.Context, now time.Time) ([]ledger.AccountUpdate, error) {
	j.sweepMu.Lock()
	defer j.sweepMu.Unlock()

	runID := RunID(now, j.interval)
	updates, err := j.granter.GrantIncome(ctx, runID, j.amount)
	if len(updates) > 0 && j.publisher != nil {
		j.publisher.Publish(notify.ReasonIncome, updates...)
	}
	return updates, err
}

func (j *Job) runLogged(ctx context.Context, now time.Time) {
	started := time.Now()
	updates, err := j.RunOnce(ctx, now)
	if err != nil {
		log.Error().Err(err).
			Str("run_id", RunID(now, j.interval)).
			Int("credited", len(updates)).
			Msg("income sweep failed")
		return
	}
	log.Info().
		Str("run_id", RunID(now, j.interval)).
		Int("credited", len(updates)).
		Int64("amount", j.amount).
		Dur("took", time.Since(started)).
		Msg("income sweep done")
}
