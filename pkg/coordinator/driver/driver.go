package driver

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/avoca-hq/calls-service/pkg/coordinator/broadcast"
	"github.com/avoca-hq/calls-service/pkg/coordinator/call"
	"github.com/avoca-hq/calls-service/pkg/coordinator/lifecycle"
	"github.com/avoca-hq/calls-service/pkg/coordinator/protocol"
	"github.com/avoca-hq/calls-service/pkg/coordinator/record"
)

// Records is the slice of the external call record client the driver needs.
type Records interface {
	Create(ctx context.Context, phoneNumber string, startTime time.Time) (string, error)
	UpdateCall(ctx context.Context, phoneCallID string, update record.Update) error
}

type Options struct {
	Logger      *slog.Logger
	Table       *call.Table
	Broadcaster *broadcast.Broadcaster
	Records     Records
	Lifecycle   *lifecycle.Lifecycle

	MinTokenInterval time.Duration
	MaxTokenInterval time.Duration
	CallInterval     time.Duration

	// GenerateTokens overrides the synthetic feed, nil means call.GenerateTokens.
	GenerateTokens func() []string
}

// Driver originates simulated calls on a repeating timer and owns each
// call's happy-path progression from origination to eviction.
type Driver struct {
	logger      *slog.Logger
	table       *call.Table
	broadcaster *broadcast.Broadcaster
	records     Records
	lifecycle   *lifecycle.Lifecycle

	minInterval  time.Duration
	maxInterval  time.Duration
	callInterval time.Duration
	genTokens    func() []string

	wg sync.WaitGroup
}

func New(opts Options) *Driver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	d := &Driver{
		logger:       logger,
		table:        opts.Table,
		broadcaster:  opts.Broadcaster,
		records:      opts.Records,
		lifecycle:    opts.Lifecycle,
		minInterval:  opts.MinTokenInterval,
		maxInterval:  opts.MaxTokenInterval,
		callInterval: opts.CallInterval,
		genTokens:    opts.GenerateTokens,
	}
	if d.genTokens == nil {
		d.genTokens = call.GenerateTokens
	}
	if d.minInterval <= 0 {
		d.minInterval = 250 * time.Millisecond
	}
	if d.maxInterval < d.minInterval {
		d.maxInterval = d.minInterval
	}
	if d.callInterval <= 0 {
		d.callInterval = 5 * time.Second
	}
	return d
}

// Run fires the origination ticker until ctx is canceled. Each tick spawns
// one call after its own random jitter, so multiple calls stream
// concurrently. Per-call failures never stop the ticker.
func (d *Driver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.callInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if d.lifecycle.IsDraining() {
				continue
			}
			d.logger.Info("preparing to emit new call")
			d.wg.Add(1)
			go func() {
				defer d.wg.Done()
				if !sleepCtx(ctx, d.randomDelay()) {
					return
				}
				d.OriginateOnce(ctx)
			}()
		}
	}
}

// OriginateOnce drives a single simulated call to completion: create the
// durable record, stream tokens, finalize, evict. A create failure abandons
// the call before anything is broadcast.
func (d *Driver) OriginateOnce(ctx context.Context) {
	phoneNumber := call.GeneratePhoneNumber()
	tokens := d.genTokens()
	startTime := time.Now().UTC()

	phoneCallID, err := d.records.Create(ctx, phoneNumber, startTime)
	if err != nil {
		d.logger.Error("create phone call failed", "phone_number", phoneNumber, "error", err)
		return
	}

	sess := call.NewSession(phoneCallID, phoneNumber, tokens, startTime)
	d.table.Add(sess)
	d.logger.Info("call started", "phone_call_id", phoneCallID, "phone_number", phoneNumber, "tokens", len(tokens))

	d.broadcaster.NotifyAll(protocol.CallStarted{
		Event:         protocol.EventCallStarted,
		PhoneCallID:   phoneCallID,
		PhoneNumber:   phoneNumber,
		StartDateTime: startTime.Format(time.RFC3339),
	})

	for {
		token, conn, ok := sess.PopToken()
		if !ok {
			break
		}
		d.broadcaster.NotifyCall(phoneCallID, protocol.CallToken{
			Event:       protocol.EventCallToken,
			PhoneCallID: phoneCallID,
			Token:       token,
		}, conn)

		if !sleepCtx(ctx, d.randomDelay()) {
			d.logger.Warn("call interrupted by shutdown", "phone_call_id", phoneCallID)
			d.table.Remove(phoneCallID)
			return
		}
	}

	endTime := time.Now().UTC()
	sess.Finish(endTime)
	if err := d.records.UpdateCall(ctx, phoneCallID, record.Update{
		Transcript:  sess.Transcript(),
		EndDateTime: endTime.Format(time.RFC3339),
	}); err != nil {
		// The in-memory call still completes; the durable record stays stale.
		d.logger.Error("persist call end failed", "phone_call_id", phoneCallID, "error", err)
	}

	d.broadcaster.NotifyAll(protocol.CallEnded{
		Event:       protocol.EventCallEnded,
		PhoneCallID: phoneCallID,
		EndDateTime: endTime.Format(time.RFC3339),
	})
	d.table.Remove(phoneCallID)
	d.logger.Info("call ended", "phone_call_id", phoneCallID)
}

// Wait blocks until every in-flight call finishes or ctx expires.
func (d *Driver) Wait(ctx context.Context) bool {
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.wg.Wait()
	}()

	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}

func (d *Driver) randomDelay() time.Duration {
	span := d.maxInterval - d.minInterval
	if span <= 0 {
		return d.minInterval
	}
	return d.minInterval + time.Duration(rand.Int64N(int64(span)+1))
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
