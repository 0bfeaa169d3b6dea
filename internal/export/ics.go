package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/sadopc/viva/internal/invite"
	"github.com/sadopc/viva/internal/timeline"
)

const productID = "-//viva//invitation//EN"

// BuildCalendar renders the invitation as a calendar: one event for the whole
// window and one per activity, all on the invitation date in loc.
func BuildCalendar(inv invite.Invitation, def timeline.ClockPair, loc *time.Location) (*ical.Calendar, error) {
	day, err := eventDay(inv, loc)
	if err != nil {
		return nil, err
	}
	win, items := Schedule(inv, def)

	stamp := inv.Timestamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetName(inv.EventName)

	whole := cal.AddEvent(inv.ID + "@viva")
	whole.SetDtStampTime(stamp.UTC())
	whole.SetStartAt(at(day, win.Start))
	whole.SetEndAt(at(day, win.End))
	whole.SetSummary(inv.EventName)
	if inv.Location != "" {
		whole.SetLocation(inv.Location)
	}
	if desc := description(inv); desc != "" {
		whole.SetDescription(desc)
	}
	if inv.HostEmail != "" {
		whole.SetOrganizer("mailto:"+inv.HostEmail, ical.WithCN(inv.HostUsername))
	}
	for _, p := range inv.Invitees {
		if p.Email == "" {
			continue
		}
		whole.AddAttendee("mailto:"+p.Email,
			ical.CalendarUserTypeIndividual,
			ical.ParticipationStatusNeedsAction,
			ical.ParticipationRoleReqParticipant,
			ical.WithCN(p.Name),
			ical.WithRSVP(true),
		)
	}

	for _, it := range items {
		ev := cal.AddEvent(fmt.Sprintf("%s-%d@viva", inv.ID, it.ID))
		ev.SetDtStampTime(stamp.UTC())
		ev.SetStartAt(at(day, it.Start))
		ev.SetEndAt(at(day, it.End))
		ev.SetSummary(it.Name)
		if inv.Location != "" {
			ev.SetLocation(inv.Location)
		}
	}
	return cal, nil
}

// ToICS writes the invitation calendar to path.
func ToICS(inv invite.Invitation, def timeline.ClockPair, loc *time.Location, path string) error {
	cal, err := BuildCalendar(inv, def, loc)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create ics file: %w", err)
	}
	defer f.Close()

	if err := cal.SerializeTo(f); err != nil {
		return fmt.Errorf("write ics file: %w", err)
	}
	return nil
}

func description(inv invite.Invitation) string {
	var parts []string
	if inv.CustomMessage != "" {
		parts = append(parts, inv.CustomMessage)
	}
	if len(inv.EventType) > 0 {
		parts = append(parts, "Type: "+strings.Join(inv.EventType, ", "))
	}
	if len(inv.Theme) > 0 {
		parts = append(parts, "Theme: "+strings.Join(inv.Theme, ", "))
	}
	return strings.Join(parts, "\n")
}
