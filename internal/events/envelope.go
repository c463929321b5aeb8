package events

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	devreload_errors "devreload/pkg/errors"
)

type Envelope struct {
	EventType  string          `json:"event_type"`
	Source     string          `json:"source"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// NewReloadEnvelope builds a reload event. An empty source defaults to the
// host name.
func NewReloadEnvelope(source string) Envelope {
	if source == "" {
		source, _ = os.Hostname()
	}
	return Envelope{
		EventType:  EventTypeReload,
		Source:     source,
		OccurredAt: time.Now().UTC(),
	}
}

func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.EventType == "" {
		return Envelope{}, fmt.Errorf("decode envelope: missing event_type: %w", devreload_errors.ErrInvalidInput)
	}
	return env, nil
}

// IsReload reports whether the envelope asks connected pages to reload.
func (e Envelope) IsReload() bool {
	return e.EventType == EventTypeReload || e.EventType == EventTypeFileChanged
}
