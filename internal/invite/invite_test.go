package invite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sadopc/viva/internal/auth"
	"github.com/sadopc/viva/internal/store"
	"github.com/sadopc/viva/internal/timeline"
)

type fixture struct {
	store  *store.Store
	auth   *auth.Provider
	drafts *DraftStore
	svc    *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	p := auth.NewProvider(s, auth.Options{Cost: bcrypt.MinCost})
	drafts := NewDraftStore(s, nil)
	svc := NewService(s, p, drafts, nil)
	svc.now = func() time.Time { return time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC) }
	return &fixture{store: s, auth: p, drafts: drafts, svc: svc}
}

func (f *fixture) signUp(t *testing.T, name string) auth.User {
	t.Helper()
	u, err := f.auth.SignUp(context.Background(), name, "secret1")
	require.NoError(t, err)
	return u
}

func sampleDraft() Draft {
	return Draft{
		EventName:   "  Birthday Picnic ",
		PartyTypes:  []string{"Birthday Party"},
		ThemeTags:   []string{"Pastel"},
		CustomTheme: "Garden",
		Date:        "2025-09-20",
		StartTime:   "11:00",
		EndTime:     "15:00",
		Location:    "Gas Works Park",
		Invitees:    []Invitee{{Name: "Ana", Email: "ana@example.com"}, {Name: "Ben", Email: "ben@example.com"}},
	}
}

// ============================================================
// Tags
// ============================================================

func TestAddTag(t *testing.T) {
	tags := AddTag(nil, "  Luau ")
	tags = AddTag(tags, "Luau")
	tags = AddTag(tags, "   ")
	assert.Equal(t, []string{"Luau"}, tags)
}

func TestToggleTag(t *testing.T) {
	tags := ToggleTag(nil, "Pool Party")
	assert.Equal(t, []string{"Pool Party"}, tags)
	orig := append([]string(nil), tags...)
	assert.Empty(t, ToggleTag(tags, "Pool Party"))
	assert.Equal(t, orig, tags)
}

func TestThemeHint(t *testing.T) {
	assert.Contains(t, ThemeHint([]string{"Spooky"}), "Halloween")
	assert.Contains(t, ThemeHint([]string{"Romantic", "Red"}), "Valentine")
	assert.Empty(t, ThemeHint([]string{"Chill"}))
}

// ============================================================
// Draft
// ============================================================

func TestDraftStoreRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := sampleDraft()
	d.InviteeName = "Cy"
	require.NoError(t, f.drafts.Save(ctx, d))

	got := f.drafts.Load(ctx)
	assert.Equal(t, d, got)
	assert.Equal(t, []string{"Pastel", "Garden"}, got.Themes())
}

func TestDraftStoreStoredShapes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.drafts.Save(ctx, sampleDraft()))

	raw, ok, err := f.store.Get(ctx, KeyTheme)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"selectedTags":["Pastel"],"customTheme":"Garden"}`, raw)

	raw, _, _ = f.store.Get(ctx, KeyDateTime)
	assert.JSONEq(t, `{"date":"2025-09-20","startTime":"11:00","endTime":"15:00"}`, raw)
}

func TestDraftStoreBlankNameRemovesKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.drafts.Save(ctx, Draft{EventName: "Brunch"}))
	require.NoError(t, f.drafts.Save(ctx, Draft{EventName: "  "}))
	_, ok, err := f.store.Get(ctx, KeyEventName)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDraftStoreIgnoresCorruptKeys(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Put(ctx, KeyPartyType, `{"not":"a list"}`))
	require.NoError(t, f.store.Put(ctx, KeyLocation, `"Pier 9"`))
	require.NoError(t, f.store.Put(ctx, KeyInvitees, `garbage`))

	d := f.drafts.Load(ctx)
	assert.Nil(t, d.PartyTypes)
	assert.Nil(t, d.Invitees)
	assert.Equal(t, "Pier 9", d.Location)
}

func TestDraftInvitees(t *testing.T) {
	var d Draft
	d.InviteeName = "Ana"
	assert.False(t, d.AddInvitee(), "email is required")

	d.InviteeEmail = "ana@a.com"
	require.True(t, d.AddInvitee())
	d.InviteeName, d.InviteeEmail = "Ana", "ana@b.com"
	require.True(t, d.AddInvitee())
	d.InviteeName, d.InviteeEmail = "Ben", "ben@b.com"
	require.True(t, d.AddInvitee())

	assert.Equal(t, "Ana (ana@a.com)", d.InviteeLabel(0))
	assert.Equal(t, "Ben", d.InviteeLabel(2))

	d.RemoveInvitee(0)
	d.RemoveInvitee(10)
	require.Len(t, d.Invitees, 2)
	assert.Equal(t, "Ana", d.InviteeLabel(0))
}

func TestDraftInvitationPreview(t *testing.T) {
	d := sampleDraft()
	inv := d.Invitation([]timeline.Activity{{ID: 7, Name: "Cake", Time: 12*60 + 30}})

	assert.Equal(t, "Birthday Picnic", inv.EventName)
	assert.Equal(t, []string{"Pastel", "Garden"}, inv.Theme)
	assert.Equal(t, []Activity{{ID: "7", Name: "Cake", Time: "12:30"}}, inv.Activities)
	assert.Empty(t, inv.HostUID)
	assert.True(t, inv.Timestamp.IsZero())

	empty := Draft{}.Invitation(nil)
	assert.NotNil(t, empty.EventType)
	assert.NotNil(t, empty.Invitees)
	assert.Empty(t, empty.Activities)
}

// ============================================================
// Invitation schema
// ============================================================

func TestDecodeInvitationLegacy(t *testing.T) {
	inv, err := DecodeInvitation("abc", []byte(`{
		"eventName": "Picnic",
		"eventType": ["Birthday Party", "Birthday Party"],
		"theme": "Pastel, Retro",
		"invitees": ["Ana", {"name": "Ben", "email": "ben@x"}],
		"activities": [
			{"id": "1", "name": "Setup", "time": "11:30"},
			{"id": 2, "name": "Cake", "time": 750},
			{"id": "3", "name": "Broken", "time": "noon"},
			{"id": "4", "name": "Late", "time": 5000}
		],
		"timestamp": {"seconds": 1758366000, "nanoseconds": 0}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", inv.ID)
	assert.Equal(t, 0, inv.Version)
	assert.Equal(t, []string{"Birthday Party"}, inv.EventType)
	assert.Equal(t, []string{"Pastel", "Retro"}, inv.Theme)
	assert.Equal(t, []Invitee{{Name: "Ana"}, {Name: "Ben", Email: "ben@x"}}, inv.Invitees)
	assert.Equal(t, []Activity{{ID: "1", Name: "Setup", Time: "11:30"}, {ID: "2", Name: "Cake", Time: "12:30"}}, inv.Activities)
	assert.Equal(t, int64(1758366000), inv.Timestamp.Unix())
	assert.True(t, inv.Owned("anyone"))
}

func TestInvitationScheduleClamps(t *testing.T) {
	inv := Invitation{
		StartTime: "11:00",
		EndTime:   "15:00",
		Activities: []Activity{
			{ID: "7", Name: "Late", Time: "18:00"},
			{ID: "x", Name: "Lunch", Time: "12:00"},
		},
	}
	w := inv.Window(timeline.ClockPair{Start: "09:00", End: "17:00"})
	assert.Equal(t, timeline.Window{Start: 660, End: 900}, w)

	acts := inv.Schedule(w)
	require.Len(t, acts, 2)
	assert.Equal(t, "Lunch", acts[0].Name)
	assert.Equal(t, int64(2), acts[0].ID)
	assert.Equal(t, 900, acts[1].Time)
}

// ============================================================
// Service
// ============================================================

func TestConfirmRequiresNameAndHost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Confirm(ctx, Draft{EventName: "   "}, nil, "")
	assert.ErrorIs(t, err, ErrMissingName)

	_, err = f.svc.Confirm(ctx, sampleDraft(), nil, "")
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestConfirmWritesInvitation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host := f.signUp(t, "maya")

	require.NoError(t, f.drafts.Save(ctx, sampleDraft()))
	require.NoError(t, f.store.Put(ctx, timeline.StorageKey, `{"activities":[]}`))

	acts := []timeline.Activity{{ID: 10, Name: "Setup", Time: 690}, {ID: 11, Name: "Cake", Time: 780}}
	id, err := f.svc.Confirm(ctx, sampleDraft(), acts, "See you there!")
	require.NoError(t, err)

	inv, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, inv.Version)
	assert.Equal(t, "Birthday Picnic", inv.EventName)
	assert.Equal(t, []string{"Pastel", "Garden"}, inv.Theme)
	assert.Equal(t, host.UID, inv.HostUID)
	assert.Equal(t, "maya", inv.HostUsername)
	assert.Equal(t, "See you there!", inv.CustomMessage)
	assert.Equal(t, []Activity{{ID: "10", Name: "Setup", Time: "11:30"}, {ID: "11", Name: "Cake", Time: "13:00"}}, inv.Activities)
	assert.False(t, inv.Timestamp.IsZero())

	_, signedIn := f.auth.CurrentUser()
	assert.False(t, signedIn, "confirm signs the host out")

	for _, key := range DraftKeys {
		_, ok, err := f.store.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, "key %s should be cleared", key)
	}
}

func TestGetNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateFieldsOwnerCheck(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signUp(t, "maya")
	id, err := f.svc.Confirm(ctx, sampleDraft(), nil, "")
	require.NoError(t, err)

	loc := "Beach"
	assert.ErrorIs(t, f.svc.UpdateFields(ctx, id, Fields{Location: &loc}), ErrNotSignedIn)

	f.signUp(t, "lee")
	assert.ErrorIs(t, f.svc.UpdateFields(ctx, id, Fields{Location: &loc}), ErrNotOwner)
	f.auth.SignOut()

	_, err = f.auth.SignIn(ctx, "maya", "secret1")
	require.NoError(t, err)
	blank := " "
	assert.ErrorIs(t, f.svc.UpdateFields(ctx, id, Fields{EventName: &blank}), ErrMissingName)

	require.NoError(t, f.svc.UpdateFields(ctx, id, Fields{
		Location:   &loc,
		Activities: []timeline.Activity{{ID: 1, Name: "Swim", Time: 720}},
	}))
	inv, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Beach", inv.Location)
	assert.Equal(t, "Birthday Picnic", inv.EventName)
	assert.Equal(t, []Activity{{ID: "1", Name: "Swim", Time: "12:00"}}, inv.Activities)
}

func TestUpdateFieldsLegacyDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, err := f.store.AddDocument(ctx, InvitesCollection, map[string]any{"eventName": "Old"})
	require.NoError(t, err)

	f.signUp(t, "lee")
	msg := "updated"
	require.NoError(t, f.svc.UpdateFields(ctx, id, Fields{Message: &msg}))
	inv, _ := f.svc.Get(ctx, id)
	assert.Equal(t, "updated", inv.CustomMessage)
}

func TestRespondAndSummarize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signUp(t, "maya")
	d := sampleDraft()
	d.Invitees = append(d.Invitees, Invitee{Name: "Cy", Email: "cy@example.com"})
	id, err := f.svc.Confirm(ctx, d, nil, "")
	require.NoError(t, err)

	_, err = f.svc.Respond(ctx, id, Response{Guest: "", Attending: "yes"})
	assert.ErrorIs(t, err, ErrMissingGuest)
	_, err = f.svc.Respond(ctx, id, Response{Guest: "Ana", Attending: "sure"})
	assert.ErrorIs(t, err, ErrInvalidRSVP)
	_, err = f.svc.Respond(ctx, "missing", Response{Guest: "Ana", Attending: "yes"})
	assert.ErrorIs(t, err, ErrNotFound)

	first, err := f.svc.Respond(ctx, id, Response{Guest: "Ana", Attending: "maybe"})
	require.NoError(t, err)
	again, err := f.svc.Respond(ctx, id, Response{Guest: "ana", Attending: "YES", Bringing: 1})
	require.NoError(t, err)
	assert.Equal(t, first, again, "a second answer replaces the first")

	_, err = f.svc.Respond(ctx, id, Response{Guest: "ben@example.com", Attending: "no", Bringing: 3})
	require.NoError(t, err)
	_, err = f.svc.Respond(ctx, id, Response{Guest: "Walk-in", Attending: "maybe"})
	require.NoError(t, err)

	rs, err := f.svc.Responses(ctx, id)
	require.NoError(t, err)
	require.Len(t, rs, 3)
	assert.Equal(t, 0, rs[1].Bringing)

	inv, _ := f.svc.Get(ctx, id)
	assert.Equal(t, Summary{Going: 1, Maybe: 1, Declined: 1, NoResponse: 1, Headcount: 2}, Summarize(inv.Invitees, rs))
}

func TestWatchRSVPs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signUp(t, "maya")
	id, err := f.svc.Confirm(ctx, sampleDraft(), nil, "")
	require.NoError(t, err)

	var got []Summary
	stop, err := f.svc.WatchRSVPs(ctx, id, func(s Summary, _ []Response) { got = append(got, s) })
	require.NoError(t, err)

	_, err = f.svc.Respond(ctx, id, Response{Guest: "Ana", Attending: "yes"})
	require.NoError(t, err)
	stop()
	_, err = f.svc.Respond(ctx, id, Response{Guest: "Ben", Attending: "yes"})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, Summary{NoResponse: 2}, got[0])
	assert.Equal(t, Summary{Going: 1, NoResponse: 1, Headcount: 1}, got[1])

	_, err = f.svc.WatchRSVPs(ctx, "missing", func(Summary, []Response) {})
	assert.ErrorIs(t, err, ErrNotFound)
}
