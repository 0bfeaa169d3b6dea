package timeline

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SnapshotVersion is written into every saved snapshot.
const SnapshotVersion = 1

// Snapshot is the persisted editor state. Field names match the stored
// JSON so older entries written without a version still load.
type Snapshot struct {
	Version    int        `json:"version"`
	StartTime  string     `json:"startTime"`
	EndTime    string     `json:"endTime"`
	Activities []Activity `json:"activities"`
	DraftName  string     `json:"name"`
	DraftTime  string     `json:"time"`
}

// Window returns the window the snapshot was saved against.
func (s Snapshot) Window() Window {
	return ResolveWindow(ClockPair{Start: s.StartTime, End: s.EndTime}, ClockPair{}, ClockPair{})
}

// rawSnapshot accepts every historical shape of the stored document.
type rawSnapshot struct {
	Version    int               `json:"version"`
	StartTime  *string           `json:"startTime"`
	EndTime    *string           `json:"endTime"`
	Activities []json.RawMessage `json:"activities"`
	Name       *string           `json:"name"`
	Time       *string           `json:"time"`
}

type rawActivity struct {
	ID   json.RawMessage `json:"id"`
	Name string          `json:"name"`
	Time json.RawMessage `json:"time"`
}

// DecodeSnapshot parses stored JSON, filling defaults for anything missing.
// Activities that cannot be read are skipped; missing ids are assigned
// after the largest id present.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	snap := Snapshot{
		Version:    raw.Version,
		StartTime:  deref(raw.StartTime),
		EndTime:    deref(raw.EndTime),
		Activities: []Activity{},
		DraftName:  deref(raw.Name),
		DraftTime:  deref(raw.Time),
	}

	var maxID int64
	var needID []int
	for _, msg := range raw.Activities {
		var ra rawActivity
		if err := json.Unmarshal(msg, &ra); err != nil {
			continue
		}
		if strings.TrimSpace(ra.Name) == "" {
			continue
		}
		minutes, ok := decodeMinutes(ra.Time)
		if !ok {
			continue
		}
		id := decodeID(ra.ID)
		if id > maxID {
			maxID = id
		}
		if id <= 0 {
			needID = append(needID, len(snap.Activities))
		}
		snap.Activities = append(snap.Activities, Activity{ID: id, Name: ra.Name, Time: minutes})
	}
	for _, i := range needID {
		maxID++
		snap.Activities[i].ID = maxID
	}
	return snap, nil
}

// Encode marshals the snapshot at the current version.
func (s Snapshot) Encode() ([]byte, error) {
	s.Version = SnapshotVersion
	if s.Activities == nil {
		s.Activities = []Activity{}
	}
	return json.Marshal(s)
}

func decodeMinutes(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseClock(s)
	}
	return 0, false
}

func decodeID(raw json.RawMessage) int64 {
	if len(raw) == 0 {
		return 0
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v
		}
	}
	return 0
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
