package broadcast

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/avoca-hq/calls-service/pkg/coordinator/call"
	"github.com/avoca-hq/calls-service/pkg/coordinator/registry"
)

type recordingConn struct {
	events []any
	err    error
}

func (c *recordingConn) WriteJSON(v any) error {
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, v)
	return nil
}

func (c *recordingConn) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifyAll_DeliversToEveryConnection(t *testing.T) {
	reg := registry.New()
	a := &recordingConn{}
	b := &recordingConn{}
	reg.Set("emp_a", a)
	reg.Set("emp_b", b)

	bc := New(reg, call.NewTable(), discardLogger())
	bc.NotifyAll("hello")

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Fatalf("deliveries = %d/%d, want 1/1", len(a.events), len(b.events))
	}
}

func TestNotifyAll_OneFailureDoesNotBlockOthers(t *testing.T) {
	reg := registry.New()
	broken := &recordingConn{err: errors.New("pipe closed")}
	healthy := &recordingConn{}
	reg.Set("emp_broken", broken)
	reg.Set("emp_ok", healthy)

	bc := New(reg, call.NewTable(), discardLogger())
	bc.NotifyAll("hello")

	if len(healthy.events) != 1 {
		t.Fatalf("healthy conn got %d events, want 1", len(healthy.events))
	}
}

func TestNotifyAll_EmptyRegistryIsNoop(t *testing.T) {
	bc := New(registry.New(), call.NewTable(), discardLogger())
	bc.NotifyAll("hello") // must not panic or error
}

func TestNotifyCall_PrefersAttachedConn(t *testing.T) {
	reg := registry.New()
	table := call.NewTable()
	sess := call.NewSession("pc_1", "555-0100", nil, time.Now())
	attached := &recordingConn{}
	if err := sess.Assign("emp_a", attached); err != nil {
		t.Fatalf("assign: %v", err)
	}
	table.Add(sess)

	fallback := &recordingConn{}
	bc := New(reg, table, discardLogger())
	bc.NotifyCall("pc_1", "event", fallback)

	if len(attached.events) != 1 || len(fallback.events) != 0 {
		t.Fatalf("deliveries attached=%d fallback=%d", len(attached.events), len(fallback.events))
	}
}

func TestNotifyCall_FallsBackWhenUnattached(t *testing.T) {
	table := call.NewTable()
	table.Add(call.NewSession("pc_1", "555-0100", nil, time.Now()))

	fallback := &recordingConn{}
	bc := New(registry.New(), table, discardLogger())
	bc.NotifyCall("pc_1", "event", fallback)

	if len(fallback.events) != 1 {
		t.Fatalf("fallback deliveries = %d, want 1", len(fallback.events))
	}
}

func TestNotifyCall_NoRecipientIsNoop(t *testing.T) {
	bc := New(registry.New(), call.NewTable(), discardLogger())
	bc.NotifyCall("pc_missing", "event", nil) // must not panic
}
