// Package adapter defines the notification boundary for finished runs.
//
// Adapters publish one RunCompletedEvent per run to a downstream system.
// The CLI owns adapter lifecycle; users provide configuration only.
package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// EventTypeRunCompleted is the event_type of every published event.
const EventTypeRunCompleted = "run_completed"

// RunCompletedEvent is the payload published when a run finishes.
type RunCompletedEvent struct {
	EventType   string `json:"event_type" msgpack:"event_type"`
	Version     string `json:"version" msgpack:"version"`
	RunID       string `json:"run_id" msgpack:"run_id"`
	Organism    string `json:"organism" msgpack:"organism"`
	Input       string `json:"input" msgpack:"input"`
	Output      string `json:"output" msgpack:"output"`
	Outcome     string `json:"outcome" msgpack:"outcome"` // success, tool_failure, etc.
	Message     string `json:"message" msgpack:"message"`
	ExitCode    int    `json:"exit_code" msgpack:"exit_code"`
	Records     int    `json:"records" msgpack:"records"`
	Chunks      int    `json:"chunks" msgpack:"chunks"`
	Rows        int    `json:"rows" msgpack:"rows"`
	StoragePath string `json:"storage_path,omitempty" msgpack:"storage_path,omitempty"`
	Timestamp   string `json:"timestamp" msgpack:"timestamp"` // RFC 3339
	DurationMs  int64  `json:"duration_ms" msgpack:"duration_ms"`
}

// Encoding selects the payload wire format.
type Encoding string

const (
	// EncodingJSON encodes events as JSON (default).
	EncodingJSON Encoding = "json"
	// EncodingMsgpack encodes events as MessagePack.
	EncodingMsgpack Encoding = "msgpack"
)

// ParseEncoding validates an encoding name. Empty selects JSON.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(s) {
	case "", EncodingJSON:
		return EncodingJSON, nil
	case EncodingMsgpack:
		return EncodingMsgpack, nil
	}
	return "", fmt.Errorf("unknown encoding %q (want json or msgpack)", s)
}

// ContentType returns the MIME type of the encoding.
func (e Encoding) ContentType() string {
	if e == EncodingMsgpack {
		return "application/msgpack"
	}
	return "application/json"
}

// Encode serializes event in the given encoding.
func Encode(event *RunCompletedEvent, enc Encoding) ([]byte, error) {
	switch enc {
	case "", EncodingJSON:
		return json.Marshal(event)
	case EncodingMsgpack:
		return msgpack.Marshal(event)
	}
	return nil, fmt.Errorf("unknown encoding %q", enc)
}

// Decode parses a payload produced by Encode.
func Decode(data []byte, enc Encoding) (*RunCompletedEvent, error) {
	var event RunCompletedEvent
	var err error
	switch enc {
	case "", EncodingJSON:
		err = json.Unmarshal(data, &event)
	case EncodingMsgpack:
		err = msgpack.Unmarshal(data, &event)
	default:
		err = fmt.Errorf("unknown encoding %q", enc)
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Adapter publishes run completion events to a downstream system.
// Implementations must be safe for single-use per run.
type Adapter interface {
	// Publish sends a run completion event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *RunCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}
