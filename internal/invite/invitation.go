package invite

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/viva/internal/timeline"
)

// SchemaVersion is written into every invitation document.
const SchemaVersion = 1

// Activity is a scheduled item as stored on an invitation. Time is "HH:MM".
type Activity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Time string `json:"time"`
}

// Invitation is the stored invitation document.
type Invitation struct {
	ID string `json:"-"`

	Version       int        `json:"version"`
	EventName     string     `json:"eventName"`
	EventType     []string   `json:"eventType"`
	Theme         []string   `json:"theme"`
	Location      string     `json:"location"`
	Date          string     `json:"date"`
	StartTime     string     `json:"startTime"`
	EndTime       string     `json:"endTime"`
	Invitees      []Invitee  `json:"invitees"`
	Activities    []Activity `json:"activities"`
	CustomMessage string     `json:"customMessage"`
	HostUID       string     `json:"hostUid,omitempty"`
	HostUsername  string     `json:"hostUsername,omitempty"`
	HostEmail     string     `json:"hostEmail,omitempty"`
	Timestamp     time.Time  `json:"timestamp"`
}

// Window resolves the invitation's event window against def.
func (inv Invitation) Window(def timeline.ClockPair) timeline.Window {
	return timeline.ResolveWindow(timeline.ClockPair{Start: inv.StartTime, End: inv.EndTime}, timeline.ClockPair{}, def)
}

// Schedule returns the activities as timeline activities in display order.
// Times are clamped into w; unparseable times are dropped.
func (inv Invitation) Schedule(w timeline.Window) []timeline.Activity {
	acts := make([]timeline.Activity, 0, len(inv.Activities))
	for i, a := range inv.Activities {
		if !timeline.ValidClock(a.Time) {
			continue
		}
		id, err := strconv.ParseInt(a.ID, 10, 64)
		if err != nil || id <= 0 {
			id = int64(i + 1)
		}
		acts = append(acts, timeline.Activity{ID: id, Name: a.Name, Time: timeline.ParseClock(a.Time, w.Start)})
	}
	s := timeline.NewStore(w)
	s.Seed(acts)
	return s.Activities()
}

// Owned reports whether uid may edit the invitation. Documents written
// before hosts were recorded have no owner and are editable by any host.
func (inv Invitation) Owned(uid string) bool {
	return inv.HostUID == "" || inv.HostUID == uid
}

// ActivitiesFrom converts timeline activities into the stored shape.
func ActivitiesFrom(acts []timeline.Activity) []Activity {
	out := make([]Activity, len(acts))
	for i, a := range acts {
		out[i] = Activity{
			ID:   strconv.FormatInt(a.ID, 10),
			Name: a.Name,
			Time: timeline.FormatHHMM(a.Time),
		}
	}
	return out
}

type rawInvitation struct {
	Version       int               `json:"version"`
	EventName     string            `json:"eventName"`
	EventType     json.RawMessage   `json:"eventType"`
	Theme         json.RawMessage   `json:"theme"`
	Location      string            `json:"location"`
	Date          *string           `json:"date"`
	StartTime     *string           `json:"startTime"`
	EndTime       *string           `json:"endTime"`
	Invitees      []json.RawMessage `json:"invitees"`
	Activities    []json.RawMessage `json:"activities"`
	CustomMessage string            `json:"customMessage"`
	HostUID       string            `json:"hostUid"`
	HostUsername  *string           `json:"hostUsername"`
	HostEmail     *string           `json:"hostEmail"`
	Timestamp     json.RawMessage   `json:"timestamp"`
}

// DecodeInvitation reads any historical shape of the invitation document:
// theme and eventType as a string or list, invitees as names or objects,
// and activity times as "HH:MM" or minutes after midnight.
func DecodeInvitation(id string, data []byte) (Invitation, error) {
	var raw rawInvitation
	if err := json.Unmarshal(data, &raw); err != nil {
		return Invitation{}, fmt.Errorf("decode invitation %s: %w", id, err)
	}
	inv := Invitation{
		ID:            id,
		Version:       raw.Version,
		EventName:     raw.EventName,
		EventType:     stringList(raw.EventType),
		Theme:         stringList(raw.Theme),
		Location:      raw.Location,
		Date:          deref(raw.Date),
		StartTime:     deref(raw.StartTime),
		EndTime:       deref(raw.EndTime),
		Invitees:      []Invitee{},
		Activities:    []Activity{},
		CustomMessage: raw.CustomMessage,
		HostUID:       raw.HostUID,
		HostUsername:  deref(raw.HostUsername),
		HostEmail:     deref(raw.HostEmail),
		Timestamp:     decodeTimestamp(raw.Timestamp),
	}
	for _, msg := range raw.Invitees {
		if p, ok := decodeInvitee(msg); ok {
			inv.Invitees = append(inv.Invitees, p)
		}
	}
	for _, msg := range raw.Activities {
		if a, ok := decodeActivity(msg); ok {
			inv.Activities = append(inv.Activities, a)
		}
	}
	return inv, nil
}

func stringList(raw json.RawMessage) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, s := range list {
			out = AddTag(out, s)
		}
		return out
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		for _, part := range strings.Split(s, ",") {
			out = AddTag(out, part)
		}
	}
	return out
}

func decodeInvitee(raw json.RawMessage) (Invitee, bool) {
	var p Invitee
	if err := json.Unmarshal(raw, &p); err == nil && strings.TrimSpace(p.Name) != "" {
		return p, true
	}
	var name string
	if err := json.Unmarshal(raw, &name); err == nil && strings.TrimSpace(name) != "" {
		return Invitee{Name: strings.TrimSpace(name)}, true
	}
	return Invitee{}, false
}

func decodeActivity(raw json.RawMessage) (Activity, bool) {
	var a struct {
		ID   json.RawMessage `json:"id"`
		Name string          `json:"name"`
		Time json.RawMessage `json:"time"`
	}
	if err := json.Unmarshal(raw, &a); err != nil || strings.TrimSpace(a.Name) == "" {
		return Activity{}, false
	}
	out := Activity{Name: a.Name, ID: scalarString(a.ID)}

	var minutes float64
	var clock string
	switch {
	case json.Unmarshal(a.Time, &minutes) == nil:
		if minutes < 0 || minutes >= timeline.MinutesPerDay {
			return Activity{}, false
		}
		out.Time = timeline.FormatHHMM(int(minutes))
	case json.Unmarshal(a.Time, &clock) == nil && timeline.ValidClock(clock):
		out.Time = timeline.FormatHHMM(timeline.ParseClock(clock, 0))
	default:
		return Activity{}, false
	}
	return out, true
}

func scalarString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// decodeTimestamp accepts RFC 3339 strings and {"seconds": n} objects.
func decodeTimestamp(raw json.RawMessage) time.Time {
	if len(raw) == 0 {
		return time.Time{}
	}
	var t time.Time
	if err := json.Unmarshal(raw, &t); err == nil {
		return t
	}
	var ts struct {
		Seconds int64 `json:"seconds"`
	}
	if err := json.Unmarshal(raw, &ts); err == nil && ts.Seconds > 0 {
		return time.Unix(ts.Seconds, 0).UTC()
	}
	return time.Time{}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
