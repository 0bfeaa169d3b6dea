package store

import (
	"encoding/json"
	"time"
)

// Host is a registered invitation host.
type Host struct {
	UID          string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Document is one JSON record in a collection. Sub-collections use a
// slash-separated path such as "invites/<id>/guests".
type Document struct {
	Collection string
	ID         string
	Data       json.RawMessage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Decode unmarshals the document body into v.
func (d Document) Decode(v any) error {
	return json.Unmarshal(d.Data, v)
}

type StateEntry struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
