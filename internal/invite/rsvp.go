package invite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/viva/internal/store"
)

// Attendance answers.
const (
	AttendingYes   = "yes"
	AttendingNo    = "no"
	AttendingMaybe = "maybe"
)

// Response is one guest's RSVP, stored under invites/<id>/guests.
type Response struct {
	ID        string    `json:"-"`
	Guest     string    `json:"guest"`
	Attending string    `json:"attending"`
	Bringing  int       `json:"bringing"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary counts responses against the invitee list.
type Summary struct {
	Going      int
	Maybe      int
	Declined   int
	NoResponse int
	// Headcount is going guests plus the people they bring.
	Headcount int
}

func guestsPath(id string) string {
	return store.Path(InvitesCollection, id, guestsCollection)
}

// Respond records a guest's answer. A guest answering again replaces the
// earlier response.
func (s *Service) Respond(ctx context.Context, id string, r Response) (string, error) {
	r.Guest = strings.TrimSpace(r.Guest)
	if r.Guest == "" {
		return "", ErrMissingGuest
	}
	r.Attending = strings.ToLower(strings.TrimSpace(r.Attending))
	switch r.Attending {
	case AttendingYes, AttendingMaybe:
	case AttendingNo:
		r.Bringing = 0
	default:
		return "", fmt.Errorf("%q: %w", r.Attending, ErrInvalidRSVP)
	}
	if r.Bringing < 0 {
		r.Bringing = 0
	}
	if _, err := s.Get(ctx, id); err != nil {
		return "", err
	}
	r.UpdatedAt = s.now().UTC()

	existing, err := s.Responses(ctx, id)
	if err != nil {
		return "", err
	}
	for _, prev := range existing {
		if strings.EqualFold(prev.Guest, r.Guest) {
			if err := s.docs.SetDocument(ctx, guestsPath(id), prev.ID, r, false); err != nil {
				return "", fmt.Errorf("%w: %w", ErrNotSaved, err)
			}
			return prev.ID, nil
		}
	}
	rid, err := s.docs.AddDocument(ctx, guestsPath(id), r)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotSaved, err)
	}
	s.log.Info("rsvp recorded", "invite", id, "guest", r.Guest, "attending", r.Attending)
	return rid, nil
}

// Responses lists the RSVPs for an invitation in arrival order.
func (s *Service) Responses(ctx context.Context, id string) ([]Response, error) {
	docs, err := s.docs.ListDocuments(ctx, guestsPath(id))
	if err != nil {
		return nil, err
	}
	return s.decodeResponses(docs), nil
}

// WatchRSVPs calls fn with the current summary and again whenever a guest
// responds. The returned func stops the watch.
func (s *Service) WatchRSVPs(ctx context.Context, id string, fn func(Summary, []Response)) (func(), error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.docs.Subscribe(ctx, guestsPath(id), func(docs []store.Document) {
		rs := s.decodeResponses(docs)
		fn(Summarize(inv.Invitees, rs), rs)
	})
}

func (s *Service) decodeResponses(docs []store.Document) []Response {
	rs := make([]Response, 0, len(docs))
	for _, d := range docs {
		var r Response
		if err := d.Decode(&r); err != nil {
			s.log.Debug("rsvp ignored", "id", d.ID, "err", err)
			continue
		}
		r.ID = d.ID
		rs = append(rs, r)
	}
	return rs
}

// Summarize tallies responses. An invitee counts as not responded unless a
// response names them or their email.
func Summarize(invitees []Invitee, rs []Response) Summary {
	var sum Summary
	answered := map[string]bool{}
	for _, r := range rs {
		answered[strings.ToLower(r.Guest)] = true
		switch r.Attending {
		case AttendingYes:
			sum.Going++
			sum.Headcount += 1 + r.Bringing
		case AttendingMaybe:
			sum.Maybe++
		case AttendingNo:
			sum.Declined++
		}
	}
	for _, inv := range invitees {
		if answered[strings.ToLower(inv.Name)] || (inv.Email != "" && answered[strings.ToLower(inv.Email)]) {
			continue
		}
		sum.NoResponse++
	}
	return sum
}
