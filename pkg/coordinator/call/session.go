package call

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/avoca-hq/calls-service/pkg/coordinator/registry"
)

// ErrAlreadyAssigned is returned when an operator tries to accept a call a
// different operator already holds. Acceptance is first-wins.
var ErrAlreadyAssigned = errors.New("call already assigned")

// Session is the in-memory record of one simulated phone call. Every mutation
// takes the session mutex; the lifecycle driver and the inbound router touch
// the same entry from different goroutines.
type Session struct {
	mu sync.Mutex

	id          string
	phoneNumber string
	startTime   time.Time
	endTime     time.Time

	pending    []string
	transcript []string

	employeeID string
	// conn is a weak reference: the registry owns the connection lifecycle,
	// the session only looks it up for token delivery.
	conn registry.Conn
}

func NewSession(id, phoneNumber string, tokens []string, startTime time.Time) *Session {
	pending := make([]string, len(tokens))
	copy(pending, tokens)
	return &Session{
		id:          id,
		phoneNumber: phoneNumber,
		startTime:   startTime,
		pending:     pending,
		transcript:  make([]string, 0, len(tokens)),
	}
}

func (s *Session) ID() string          { return s.id }
func (s *Session) PhoneNumber() string { return s.phoneNumber }
func (s *Session) StartTime() time.Time {
	return s.startTime
}

// PopToken consumes the next pending token, appends it to the transcript and
// reports the connection currently attached, if any. ok is false once the
// stream is exhausted.
func (s *Session) PopToken() (token string, conn registry.Conn, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return "", nil, false
	}
	token = s.pending[0]
	s.pending = s.pending[1:]
	s.transcript = append(s.transcript, token)
	return token, s.conn, true
}

func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Transcript returns the space-joined tokens emitted so far.
func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.transcript, " ")
}

// Assign claims the call for an operator. The first operator wins; a later
// accept by a different operator fails with ErrAlreadyAssigned. The holding
// operator may re-accept to attach a fresh connection after a reconnect.
func (s *Session) Assign(employeeID string, conn registry.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.employeeID != "" && s.employeeID != employeeID {
		return ErrAlreadyAssigned
	}
	s.employeeID = employeeID
	s.conn = conn
	return nil
}

func (s *Session) AssignedTo() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.employeeID
}

func (s *Session) Attached() registry.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

func (s *Session) Finish(endTime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endTime = endTime
}

func (s *Session) EndTime() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endTime, !s.endTime.IsZero()
}
