package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Event tags carried in the required "event" field of every frame.
const (
	EventClientConnected   = "client_connected"
	EventPhoneCallAccepted = "phone_call_accepted"
	EventCallStarted       = "call_started"
	EventCallToken         = "call_token"
	EventCallTranscript    = "call_transcript"
	EventCallAssigned      = "call_assigned"
	EventCallEnded         = "call_ended"
)

type DecodeError struct {
	Code    string
	Message string
	Param   string
}

func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	if strings.TrimSpace(e.Param) == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Param)
}

func badRequest(message, param string) *DecodeError {
	return &DecodeError{Code: "bad_request", Message: message, Param: param}
}

func unsupported(message, param string) *DecodeError {
	return &DecodeError{Code: "unsupported", Message: message, Param: param}
}

// ClientConnected registers the sending connection under an operator identity.
// The token is verified before the registry entry is written.
type ClientConnected struct {
	Event      string `json:"event"`
	EmployeeID string `json:"employee_id"`
	Token      string `json:"token"`
}

// PhoneCallAccepted claims an active call for an operator.
type PhoneCallAccepted struct {
	Event       string `json:"event"`
	PhoneCallID string `json:"phone_call_id"`
	EmployeeID  string `json:"employee_id"`
}

type CallStarted struct {
	Event         string `json:"event"`
	PhoneCallID   string `json:"phone_call_id"`
	PhoneNumber   string `json:"phone_number"`
	StartDateTime string `json:"start_date_time"`
}

type CallToken struct {
	Event       string `json:"event"`
	PhoneCallID string `json:"phone_call_id"`
	Token       string `json:"token"`
}

type CallTranscript struct {
	Event       string `json:"event"`
	PhoneCallID string `json:"phone_call_id"`
	Transcript  string `json:"transcript"`
}

type CallAssigned struct {
	Event       string `json:"event"`
	PhoneCallID string `json:"phone_call_id"`
	EmployeeID  string `json:"employee_id"`
}

type CallEnded struct {
	Event       string `json:"event"`
	PhoneCallID string `json:"phone_call_id"`
	EndDateTime string `json:"end_date_time"`
}

// DecodeClientMessage parses one inbound frame into a typed client message.
// Unknown tags and malformed frames come back as *DecodeError; the caller
// decides whether to drop or close.
func DecodeClientMessage(data []byte) (any, error) {
	var envelope struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, badRequest("invalid json frame", "")
	}
	event := strings.TrimSpace(envelope.Event)
	if event == "" {
		return nil, badRequest("missing event", "event")
	}

	switch event {
	case EventClientConnected:
		var msg ClientConnected
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, badRequest("invalid client_connected frame", "")
		}
		if strings.TrimSpace(msg.EmployeeID) == "" {
			return nil, badRequest("client_connected.employee_id is required", "employee_id")
		}
		if strings.TrimSpace(msg.Token) == "" {
			return nil, badRequest("client_connected.token is required", "token")
		}
		return msg, nil
	case EventPhoneCallAccepted:
		var msg PhoneCallAccepted
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, badRequest("invalid phone_call_accepted frame", "")
		}
		if strings.TrimSpace(msg.PhoneCallID) == "" {
			return nil, badRequest("phone_call_accepted.phone_call_id is required", "phone_call_id")
		}
		if strings.TrimSpace(msg.EmployeeID) == "" {
			return nil, badRequest("phone_call_accepted.employee_id is required", "employee_id")
		}
		return msg, nil
	default:
		return nil, unsupported("unsupported event", "event")
	}
}
