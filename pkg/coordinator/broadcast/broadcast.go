package broadcast

import (
	"log/slog"

	"github.com/avoca-hq/calls-service/pkg/coordinator/call"
	"github.com/avoca-hq/calls-service/pkg/coordinator/registry"
)

// Broadcaster fans events out to connected operator clients. Sends are
// best-effort: one failing recipient never blocks or fails delivery to
// the others, and having nobody to send to is not an error.
type Broadcaster struct {
	registry *registry.Registry
	table    *call.Table
	logger   *slog.Logger
}

func New(reg *registry.Registry, table *call.Table, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{registry: reg, table: table, logger: logger}
}

// NotifyAll sends event to every connection currently registered.
func (b *Broadcaster) NotifyAll(event any) {
	if b == nil {
		return
	}
	for employeeID, conn := range b.registry.Snapshot() {
		if err := conn.WriteJSON(event); err != nil {
			b.logger.Warn("broadcast send failed", "employee_id", employeeID, "error", err)
		}
	}
}

// NotifyCall sends event to the connection attached to the call, or to
// fallback when no attachment has been recorded yet. No recipient is a
// silent no-op.
func (b *Broadcaster) NotifyCall(phoneCallID string, event any, fallback registry.Conn) {
	if b == nil {
		return
	}
	conn := fallback
	if sess, ok := b.table.Get(phoneCallID); ok {
		if attached := sess.Attached(); attached != nil {
			conn = attached
		}
	}
	if conn == nil {
		return
	}
	if err := conn.WriteJSON(event); err != nil {
		b.logger.Warn("call send failed", "phone_call_id", phoneCallID, "error", err)
	}
}
