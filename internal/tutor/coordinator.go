package tutor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultDebounce is the quiet period a real-time evaluation waits for after
// the last snapshot change.
const DefaultDebounce = 3 * time.Second

// RunFunc performs one evaluation call: compose, invoke the model, normalize
// and apply side effects. The coordinator only decides whether it may run.
type RunFunc func(ctx context.Context, snapshot Snapshot, mode Mode) (Verdict, error)

// Coordinator is the per-session state machine guarding evaluation calls.
// Two producers contend for a single in-flight slot: the explicit on-demand
// trigger and the debounced real-time timer. Idle and Pending are the only
// states; success and failure both return to Idle.
type Coordinator struct {
	mu              sync.Mutex
	run             RunFunc
	debounce        time.Duration
	logger          zerolog.Logger
	inFlight        bool
	realTime        bool
	lastFingerprint string
	timer           *time.Timer
	pending         Snapshot
}

// NewCoordinator constructs a session coordinator. A non-positive debounce
// falls back to the default quiet period.
func NewCoordinator(debounce time.Duration, run RunFunc, logger zerolog.Logger) *Coordinator {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Coordinator{
		run:      run,
		debounce: debounce,
		logger:   logger.With().Str("component", "evaluation_coordinator").Logger(),
	}
}

// Fingerprint derives the content fingerprint of a full snapshot, used to
// detect "no change since the last successful real-time call".
func Fingerprint(snapshot Snapshot) string {
	h := sha256.New()
	h.Write([]byte(snapshot.HTML))
	h.Write([]byte("\n/*__CSS__*/\n"))
	h.Write([]byte(snapshot.CSS))
	h.Write([]byte("\n/*__JS__*/\n"))
	h.Write([]byte(snapshot.JS))
	return hex.EncodeToString(h.Sum(nil))
}

// Evaluate runs an on-demand evaluation. It is rejected only by the
// in-flight guard; fingerprints do not apply to explicit reviews.
func (c *Coordinator) Evaluate(ctx context.Context, snapshot Snapshot) (Verdict, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return Verdict{}, ErrEvaluationInFlight
	}
	c.inFlight = true
	c.mu.Unlock()

	verdict, err := c.run(ctx, snapshot, ModeOnDemand)

	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()

	return verdict, err
}

// SetRealTime turns the real-time trigger path on or off. Turning it off
// clears the stored fingerprint so a later re-enable always evaluates at
// least once, and cancels any pending debounce timer.
func (c *Coordinator) SetRealTime(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.realTime = enabled
	if !enabled {
		c.lastFingerprint = ""
		if c.timer != nil {
			c.timer.Stop()
			c.timer = nil
		}
	}
}

// RealTime reports whether the real-time trigger path is active.
func (c *Coordinator) RealTime() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.realTime
}

// SnapshotChanged arms the trailing debounce timer with the latest snapshot.
// Every change cancels the previous timer; the evaluation fires only after a
// full quiet period. No-op while real-time mode is off.
func (c *Coordinator) SnapshotChanged(ctx context.Context, snapshot Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.realTime {
		return
	}

	c.pending = snapshot
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		c.fireRealTime(ctx)
	})
}

// Stop cancels any pending debounce timer. An evaluation already in flight
// is never cancelled mid-call.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Coordinator) fireRealTime(ctx context.Context) {
	c.mu.Lock()
	if !c.realTime {
		c.mu.Unlock()
		return
	}

	snapshot := c.pending
	fingerprint := Fingerprint(snapshot)
	if fingerprint == c.lastFingerprint {
		// Unchanged code: re-evaluation is a no-op, not an error.
		c.mu.Unlock()
		return
	}
	if c.inFlight {
		// Overlapping trigger: rejected, not queued.
		c.mu.Unlock()
		return
	}
	c.inFlight = true
	c.mu.Unlock()

	_, err := c.run(ctx, snapshot, ModeRealTime)

	c.mu.Lock()
	c.inFlight = false
	if err == nil {
		c.lastFingerprint = fingerprint
	}
	c.mu.Unlock()

	if err != nil && ctx.Err() == nil {
		c.logger.Warn().Err(err).Msg("real-time evaluation failed")
	}
}
