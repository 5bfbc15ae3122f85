// ABOUTME: Gateway wire protocol codec for envelopes and control payloads
// ABOUTME: Handles opcode definitions, Hello/Identify/Heartbeat framing, and URL construction

package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// APIVersion is the gateway protocol version requested on connect.
const APIVersion = 10

// ErrEmptyFrame indicates a zero-length frame was received from the gateway.
var ErrEmptyFrame = errors.New("empty gateway frame")

// ErrBadHello indicates the first frame was not a valid Hello.
var ErrBadHello = errors.New("malformed hello frame")

// Opcode identifies the kind of gateway message carried by an envelope.
type Opcode int

const (
	OpDispatch       Opcode = 0
	OpHeartbeat      Opcode = 1
	OpIdentify       Opcode = 2
	OpResume         Opcode = 6
	OpReconnect      Opcode = 7
	OpInvalidSession Opcode = 9
	OpHello          Opcode = 10
	OpHeartbeatACK   Opcode = 11
)

// String returns a short name for the opcode, used in log output.
func (o Opcode) String() string {
	switch o {
	case OpDispatch:
		return "dispatch"
	case OpHeartbeat:
		return "heartbeat"
	case OpIdentify:
		return "identify"
	case OpResume:
		return "resume"
	case OpReconnect:
		return "reconnect"
	case OpInvalidSession:
		return "invalid_session"
	case OpHello:
		return "hello"
	case OpHeartbeatACK:
		return "heartbeat_ack"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Envelope is one decoded gateway frame. It is immutable once parsed; Data
// holds the payload with decoding deferred to the event registry.
type Envelope struct {
	Op   Opcode          `json:"op"`
	Seq  *int64          `json:"s"`
	Type string          `json:"t"`
	Data json.RawMessage `json:"d"`
}

// HasData reports whether the envelope carries a non-null payload.
func (e *Envelope) HasData() bool {
	return len(e.Data) > 0 && string(e.Data) != "null"
}

// ParseEnvelope decodes a raw gateway frame into an Envelope.
// An empty frame is rejected with ErrEmptyFrame.
func ParseEnvelope(frame []byte) (*Envelope, error) {
	if len(frame) == 0 {
		return nil, ErrEmptyFrame
	}

	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("parsing envelope: %w", err)
	}
	return &env, nil
}

// helloData is the payload of the gateway's opening Hello frame.
type helloData struct {
	HeartbeatIntervalMs int64 `json:"heartbeat_interval"`
}

// ParseHello validates the opening frame and extracts the heartbeat interval
// in milliseconds. The frame must be a non-empty Hello envelope.
func ParseHello(frame []byte) (int64, error) {
	env, err := ParseEnvelope(frame)
	if err != nil {
		return 0, err
	}
	if env.Op != OpHello {
		return 0, fmt.Errorf("%w: expected op %d, got %d", ErrBadHello, OpHello, env.Op)
	}
	if !env.HasData() {
		return 0, fmt.Errorf("%w: missing data", ErrBadHello)
	}

	var hello helloData
	if err := json.Unmarshal(env.Data, &hello); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadHello, err)
	}
	if hello.HeartbeatIntervalMs <= 0 {
		return 0, fmt.Errorf("%w: non-positive heartbeat_interval %d", ErrBadHello, hello.HeartbeatIntervalMs)
	}
	return hello.HeartbeatIntervalMs, nil
}

// IdentifyProperties carries client identification metadata sent at Identify.
type IdentifyProperties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

// identifyData is the payload of the outbound Identify frame.
type identifyData struct {
	Token      string             `json:"token"`
	Intents    int64              `json:"intents"`
	Properties IdentifyProperties `json:"properties"`
}

// outbound is the generic shape for frames the client sends.
type outbound struct {
	Op Opcode `json:"op"`
	D  any    `json:"d"`
}

// Identify builds the authentication frame sent after Hello.
func Identify(token string, intents int64, props IdentifyProperties) any {
	return outbound{
		Op: OpIdentify,
		D: identifyData{
			Token:      token,
			Intents:    intents,
			Properties: props,
		},
	}
}

// Heartbeat builds a heartbeat frame carrying the last observed sequence.
// A nil sequence encodes explicitly as null, meaning no sequence seen yet.
func Heartbeat(seq *int64) any {
	return outbound{Op: OpHeartbeat, D: seq}
}

// ConnectURL appends the protocol version and encoding query parameters to a
// resolved gateway base URL.
func ConnectURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing gateway url %q: %w", base, err)
	}

	q := u.Query()
	q.Set("v", fmt.Sprintf("%d", APIVersion))
	q.Set("encoding", "json")
	u.RawQuery = q.Encode()
	return u.String(), nil
}
