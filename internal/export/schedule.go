package export

import (
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/viva/internal/invite"
	"github.com/sadopc/viva/internal/timeline"
)

// ErrNoDate is returned when a dated export is requested for an invitation
// without a date.
var ErrNoDate = errors.New("invitation has no date")

const dateLayout = "2006-01-02"

// Item is one scheduled slot. Start and End are minutes after midnight.
type Item struct {
	ID    int64
	Name  string
	Start int
	End   int
}

// Schedule lays an invitation's activities out in time order inside its
// window. Each activity runs until the next one starts, the last until the
// window closes.
func Schedule(inv invite.Invitation, def timeline.ClockPair) (timeline.Window, []Item) {
	w := inv.Window(def)
	acts := inv.Schedule(w)
	items := make([]Item, len(acts))
	for i, a := range acts {
		end := w.End
		if i+1 < len(acts) {
			end = acts[i+1].Time
		}
		items[i] = Item{ID: a.ID, Name: a.Name, Start: a.Time, End: end}
	}
	return w, items
}

// eventDay parses the invitation date in loc.
func eventDay(inv invite.Invitation, loc *time.Location) (time.Time, error) {
	if inv.Date == "" {
		return time.Time{}, ErrNoDate
	}
	day, err := time.ParseInLocation(dateLayout, inv.Date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", inv.Date, err)
	}
	return day, nil
}

func at(day time.Time, minutes int) time.Time {
	return day.Add(time.Duration(minutes) * time.Minute)
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
