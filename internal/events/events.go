package events

import (
	"encoding/json"
	"time"
)

// Event types published by the engine.
const (
	TypeListingCreated   = "listing_created"
	TypeListingFavorited = "listing_favorited"
	TypeRunFinished      = "run_finished"
)

type Event struct {
	Type    string          `json:"type"`
	Version int             `json:"v"`
	At      time.Time       `json:"at"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func MakeEvent(typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:    typ,
		Version: v,
		At:      time.Now().UTC(),
		Data:    raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
