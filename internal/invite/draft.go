package invite

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sadopc/viva/internal/logging"
	"github.com/sadopc/viva/internal/timeline"
)

// Local storage keys for the wizard steps.
const (
	KeyEventName = "viva:eventName"
	KeyPartyType = "viva:partyType"
	KeyTheme     = "viva:theme"
	KeyDateTime  = "viva:dateTime"
	KeyLocation  = "viva:location"
	KeyInvitees  = "viva:invitees"
)

// DraftKeys lists every key cleared when an invitation is confirmed or reset,
// including the timeline editor's own snapshot.
var DraftKeys = []string{
	KeyEventName,
	KeyPartyType,
	KeyTheme,
	KeyDateTime,
	timeline.StorageKey,
	KeyLocation,
	KeyInvitees,
}

type Invitee struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Draft is the invitation being built by the wizard. Every step reads and
// writes its own fields; activities live in the timeline editor.
type Draft struct {
	EventName   string
	PartyTypes  []string
	ThemeTags   []string
	CustomTheme string
	Date        string
	StartTime   string
	EndTime     string
	Location    string
	Invitees    []Invitee

	// Pending invitee form fields.
	InviteeName  string
	InviteeEmail string
}

// Themes is the selected tags followed by the custom theme, if any.
func (d Draft) Themes() []string {
	out := append([]string(nil), d.ThemeTags...)
	if c := strings.TrimSpace(d.CustomTheme); c != "" {
		out = append(out, c)
	}
	return out
}

// Clocks is the draft's own start/end pair for window resolution.
func (d Draft) Clocks() timeline.ClockPair {
	return timeline.ClockPair{Start: d.StartTime, End: d.EndTime}
}

// AddInvitee appends the pending invitee. Both name and email are required.
func (d *Draft) AddInvitee() bool {
	name, email := strings.TrimSpace(d.InviteeName), strings.TrimSpace(d.InviteeEmail)
	if name == "" || email == "" {
		return false
	}
	d.Invitees = append(d.Invitees, Invitee{Name: name, Email: email})
	d.InviteeName, d.InviteeEmail = "", ""
	return true
}

// RemoveInvitee drops the invitee at index i; out-of-range is a no-op.
func (d *Draft) RemoveInvitee(i int) {
	if i < 0 || i >= len(d.Invitees) {
		return
	}
	d.Invitees = append(d.Invitees[:i:i], d.Invitees[i+1:]...)
}

// InviteeLabel returns the display name for invitee i, adding the email when
// another invitee shares the name.
func (d Draft) InviteeLabel(i int) string {
	inv := d.Invitees[i]
	for j, other := range d.Invitees {
		if j != i && other.Name == inv.Name {
			return fmt.Sprintf("%s (%s)", inv.Name, inv.Email)
		}
	}
	return inv.Name
}

// Invitation renders the draft as an unsaved invitation with no host.
func (d Draft) Invitation(acts []timeline.Activity) Invitation {
	return Invitation{
		Version:    SchemaVersion,
		EventName:  strings.TrimSpace(d.EventName),
		EventType:  nonNil(d.PartyTypes),
		Theme:      d.Themes(),
		Location:   d.Location,
		Date:       d.Date,
		StartTime:  d.StartTime,
		EndTime:    d.EndTime,
		Invitees:   nonNil(d.Invitees),
		Activities: ActivitiesFrom(acts),
	}
}

type themeState struct {
	SelectedTags []string `json:"selectedTags"`
	CustomTheme  string   `json:"customTheme"`
}

type dateTimeState struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type inviteeState struct {
	Invitees []Invitee `json:"invitees"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
}

// DraftStore persists a Draft across the wizard keys.
type DraftStore struct {
	kv  timeline.KV
	log *slog.Logger
}

func NewDraftStore(kv timeline.KV, log *slog.Logger) *DraftStore {
	return &DraftStore{kv: kv, log: logging.OrDiscard(log)}
}

// Load reads every key. Missing or unreadable keys leave their fields empty.
func (s *DraftStore) Load(ctx context.Context) Draft {
	var d Draft
	if v, ok := s.get(ctx, KeyEventName); ok {
		d.EventName = v
	}
	s.decode(ctx, KeyPartyType, &d.PartyTypes)

	var th themeState
	if s.decode(ctx, KeyTheme, &th) {
		d.ThemeTags, d.CustomTheme = th.SelectedTags, th.CustomTheme
	}
	var dt dateTimeState
	if s.decode(ctx, KeyDateTime, &dt) {
		d.Date, d.StartTime, d.EndTime = dt.Date, dt.StartTime, dt.EndTime
	}
	s.decode(ctx, KeyLocation, &d.Location)

	var inv inviteeState
	if s.decode(ctx, KeyInvitees, &inv) {
		d.Invitees, d.InviteeName, d.InviteeEmail = inv.Invitees, inv.Name, inv.Email
	}
	return d
}

// Save writes every key. A blank event name removes its key.
func (s *DraftStore) Save(ctx context.Context, d Draft) error {
	if strings.TrimSpace(d.EventName) == "" {
		if err := s.kv.Delete(ctx, KeyEventName); err != nil {
			return fmt.Errorf("save draft: %w", err)
		}
	} else if err := s.kv.Put(ctx, KeyEventName, d.EventName); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}

	values := []struct {
		key string
		v   any
	}{
		{KeyPartyType, nonNil(d.PartyTypes)},
		{KeyTheme, themeState{SelectedTags: nonNil(d.ThemeTags), CustomTheme: d.CustomTheme}},
		{KeyDateTime, dateTimeState{Date: d.Date, StartTime: d.StartTime, EndTime: d.EndTime}},
		{KeyLocation, d.Location},
		{KeyInvitees, inviteeState{Invitees: nonNil(d.Invitees), Name: d.InviteeName, Email: d.InviteeEmail}},
	}
	for _, kv := range values {
		data, err := json.Marshal(kv.v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", kv.key, err)
		}
		if err := s.kv.Put(ctx, kv.key, string(data)); err != nil {
			return fmt.Errorf("save draft: %w", err)
		}
	}
	return nil
}

// Clear removes every wizard key.
func (s *DraftStore) Clear(ctx context.Context) error {
	for _, key := range DraftKeys {
		if err := s.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear draft: %w", err)
		}
	}
	return nil
}

func (s *DraftStore) get(ctx context.Context, key string) (string, bool) {
	v, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.log.Warn("draft read failed", "key", key, "err", err)
		return "", false
	}
	return v, ok
}

func (s *DraftStore) decode(ctx context.Context, key string, dst any) bool {
	raw, ok := s.get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.log.Debug("draft value ignored", "key", key, "err", err)
		return false
	}
	return true
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
