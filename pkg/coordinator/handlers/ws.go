package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/avoca-hq/calls-service/pkg/coordinator/auth"
	"github.com/avoca-hq/calls-service/pkg/coordinator/broadcast"
	"github.com/avoca-hq/calls-service/pkg/coordinator/call"
	"github.com/avoca-hq/calls-service/pkg/coordinator/protocol"
	"github.com/avoca-hq/calls-service/pkg/coordinator/record"
	"github.com/avoca-hq/calls-service/pkg/coordinator/registry"
)

// Records is the slice of the external call record client the router needs.
type Records interface {
	UpdateCall(ctx context.Context, phoneCallID string, update record.Update) error
}

// WSHandler upgrades operator connections and routes their inbound
// messages. A bad message is logged and dropped, never a reason to close
// the connection.
type WSHandler struct {
	Logger      *slog.Logger
	Verifier    auth.Verifier
	Registry    *registry.Registry
	Table       *call.Table
	Broadcaster *broadcast.Broadcaster
	Records     Records

	WriteTimeout time.Duration
	PingInterval time.Duration
}

func (h WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("client connected")

	conn := newWSConn(ws, h.WriteTimeout)
	defer conn.Close()

	stopPing := make(chan struct{})
	defer close(stopPing)
	go h.pingLoop(conn, stopPing)

	// Identity claimed by this connection, captured at registration time so
	// the registry entry can be evicted when the connection closes.
	var employeeID string
	defer func() {
		if employeeID != "" {
			h.Registry.Remove(employeeID, conn)
		}
		logger.Info("client disconnected", "employee_id", employeeID)
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("connection read failed", "employee_id", employeeID, "error", err)
			}
			return
		}

		decoded, err := protocol.DecodeClientMessage(data)
		if err != nil {
			logger.Info("dropping invalid message", "error", err)
			continue
		}

		switch msg := decoded.(type) {
		case protocol.ClientConnected:
			if id, ok := h.register(msg, conn, logger); ok {
				employeeID = id
			}
		case protocol.PhoneCallAccepted:
			h.accept(r.Context(), msg, conn, logger)
		}
	}
}

// register verifies the asserted identity and upserts the registry entry.
// Verification fails closed: the registration is silently aborted and the
// connection stays open.
func (h WSHandler) register(msg protocol.ClientConnected, conn registry.Conn, logger *slog.Logger) (string, bool) {
	claimedID, err := h.Verifier.Verify(msg.Token)
	if err != nil {
		logger.Warn("client registration rejected", "employee_id", msg.EmployeeID, "error", err)
		return "", false
	}
	if claimedID != msg.EmployeeID {
		logger.Warn("client registration rejected", "employee_id", msg.EmployeeID, "error", "token identity mismatch")
		return "", false
	}

	h.Registry.Set(msg.EmployeeID, conn)
	logger.Info("client registered", "employee_id", msg.EmployeeID)
	return msg.EmployeeID, true
}

// accept claims a call for an operator. Acceptance is first-wins; a losing
// accept and an accept for an unknown call are both quiet no-ops.
func (h WSHandler) accept(ctx context.Context, msg protocol.PhoneCallAccepted, conn registry.Conn, logger *slog.Logger) {
	sess, ok := h.Table.Get(msg.PhoneCallID)
	if !ok {
		logger.Info("accept for unknown call", "phone_call_id", msg.PhoneCallID, "employee_id", msg.EmployeeID)
		return
	}

	if err := sess.Assign(msg.EmployeeID, conn); err != nil {
		logger.Info("accept lost to earlier assignment",
			"phone_call_id", msg.PhoneCallID,
			"employee_id", msg.EmployeeID,
			"assigned_to", sess.AssignedTo(),
		)
		return
	}
	logger.Info("call accepted", "phone_call_id", msg.PhoneCallID, "employee_id", msg.EmployeeID)

	if err := h.Records.UpdateCall(ctx, msg.PhoneCallID, record.Update{EmployeeID: msg.EmployeeID}); err != nil {
		// In-memory assignment stands; the durable record stays stale.
		logger.Error("persist assignment failed", "phone_call_id", msg.PhoneCallID, "error", err)
	}

	h.Broadcaster.NotifyAll(protocol.CallAssigned{
		Event:       protocol.EventCallAssigned,
		PhoneCallID: msg.PhoneCallID,
		EmployeeID:  msg.EmployeeID,
	})

	// Catch-up for a client joining mid-call: the transcript so far goes to
	// the newly attached connection only.
	h.Broadcaster.NotifyCall(msg.PhoneCallID, protocol.CallTranscript{
		Event:       protocol.EventCallTranscript,
		PhoneCallID: msg.PhoneCallID,
		Transcript:  sess.Transcript(),
	}, conn)
}

func (h WSHandler) pingLoop(conn *wsConn, stop <-chan struct{}) {
	interval := h.PingInterval
	if interval <= 0 {
		interval = 20 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := conn.Ping(); err != nil {
				return
			}
		}
	}
}
