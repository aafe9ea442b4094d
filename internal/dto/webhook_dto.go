package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// MockWebhookEvent is the body the mock provider posts. Only the event id
// and type are interpreted; the rest of the body is kept for the audit log.
type MockWebhookEvent struct {
	EventID EventID `json:"event_id"`
	Type    string  `json:"type"`
}

// EventID accepts a JSON string, number or boolean and keeps its text form.
// null leaves it empty.
type EventID string

func (id *EventID) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return err
	}

	switch v := v.(type) {
	case nil:
		*id = ""
	case string:
		*id = EventID(v)
	case json.Number:
		*id = EventID(v.String())
	case bool:
		*id = EventID(strconv.FormatBool(v))
	default:
		return fmt.Errorf("event_id must be a scalar, got %T", v)
	}
	return nil
}

type WebhookResponse struct {
	OK    bool `json:"ok"`
	Dedup bool `json:"dedup,omitempty"`
}
