// Package invite holds the invitation wizard's draft state, the stored
// invitation schema and the service that confirms invitations and collects
// guest responses.
package invite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sadopc/viva/internal/auth"
	"github.com/sadopc/viva/internal/logging"
	"github.com/sadopc/viva/internal/store"
	"github.com/sadopc/viva/internal/timeline"
)

// Collection names.
const (
	InvitesCollection = "invites"
	guestsCollection  = "guests"
)

var (
	ErrMissingName  = errors.New("give your event a name before saving")
	ErrNotSignedIn  = errors.New("create a host username and password before saving")
	ErrNotSaved     = errors.New("we couldn't save this invite, please try again")
	ErrNotFound     = errors.New("invitation not found")
	ErrNotOwner     = errors.New("invitation belongs to another host")
	ErrMissingGuest = errors.New("guest name is required")
	ErrInvalidRSVP  = errors.New("attending must be yes, no or maybe")
)

// Documents is the document store the service writes through.
type Documents interface {
	AddDocument(ctx context.Context, collection string, v any) (string, error)
	GetDocument(ctx context.Context, collection, id string) (*store.Document, error)
	UpdateDocument(ctx context.Context, collection, id string, fields map[string]any) error
	SetDocument(ctx context.Context, collection, id string, v any, merge bool) error
	ListDocuments(ctx context.Context, collection string) ([]store.Document, error)
	Subscribe(ctx context.Context, collection string, fn func([]store.Document)) (func(), error)
}

// Session is the signed-in host, if any.
type Session interface {
	CurrentUser() (auth.User, bool)
	SignOut()
}

type Service struct {
	docs    Documents
	session Session
	drafts  *DraftStore
	log     *slog.Logger
	now     func() time.Time
}

func NewService(docs Documents, session Session, drafts *DraftStore, log *slog.Logger) *Service {
	return &Service{
		docs:    docs,
		session: session,
		drafts:  drafts,
		log:     logging.OrDiscard(log),
		now:     time.Now,
	}
}

// Confirm writes the draft and its schedule as a new invitation owned by the
// signed-in host, signs the host out and clears the draft. It returns the
// new invitation id.
func (s *Service) Confirm(ctx context.Context, d Draft, acts []timeline.Activity, message string) (string, error) {
	name := strings.TrimSpace(d.EventName)
	if name == "" {
		return "", ErrMissingName
	}
	host, ok := s.session.CurrentUser()
	if !ok {
		return "", ErrNotSignedIn
	}

	inv := d.Invitation(acts)
	inv.CustomMessage = message
	inv.HostUID = host.UID
	inv.HostUsername = host.Username
	inv.HostEmail = host.Email
	inv.Timestamp = s.now().UTC()
	id, err := s.docs.AddDocument(ctx, InvitesCollection, inv)
	if err != nil {
		s.log.Error("invitation save failed", "err", err)
		return "", fmt.Errorf("%w: %w", ErrNotSaved, err)
	}
	s.log.Info("invitation created", "id", id, "host", host.Username, "activities", len(acts))

	s.session.SignOut()
	if s.drafts != nil {
		if err := s.drafts.Clear(ctx); err != nil {
			s.log.Warn("draft clear failed", "err", err)
		}
	}
	return id, nil
}

func (s *Service) Get(ctx context.Context, id string) (Invitation, error) {
	doc, err := s.docs.GetDocument(ctx, InvitesCollection, id)
	if errors.Is(err, store.ErrNotFound) {
		return Invitation{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Invitation{}, err
	}
	return DecodeInvitation(id, doc.Data)
}

// Fields are host edits; nil fields are left unchanged.
type Fields struct {
	EventName  *string
	Location   *string
	Message    *string
	StartTime  *string
	EndTime    *string
	Activities []timeline.Activity
}

// UpdateFields applies host edits to an invitation the signed-in host owns.
func (s *Service) UpdateFields(ctx context.Context, id string, f Fields) error {
	host, ok := s.session.CurrentUser()
	if !ok {
		return ErrNotSignedIn
	}
	inv, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !inv.Owned(host.UID) {
		return fmt.Errorf("%s: %w", id, ErrNotOwner)
	}

	fields := map[string]any{}
	if f.EventName != nil {
		name := strings.TrimSpace(*f.EventName)
		if name == "" {
			return ErrMissingName
		}
		fields["eventName"] = name
	}
	if f.Location != nil {
		fields["location"] = *f.Location
	}
	if f.Message != nil {
		fields["customMessage"] = *f.Message
	}
	if f.StartTime != nil {
		fields["startTime"] = *f.StartTime
	}
	if f.EndTime != nil {
		fields["endTime"] = *f.EndTime
	}
	if f.Activities != nil {
		fields["activities"] = ActivitiesFrom(f.Activities)
	}
	if len(fields) == 0 {
		return nil
	}
	fields["version"] = SchemaVersion
	if err := s.docs.UpdateDocument(ctx, InvitesCollection, id, fields); err != nil {
		return fmt.Errorf("%w: %w", ErrNotSaved, err)
	}
	return nil
}
