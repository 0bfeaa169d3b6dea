package tui

import (
	"github.com/sadopc/viva/internal/invite"
	"github.com/sadopc/viva/internal/timeline"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDetails viewState = iota
	viewTime
	viewActivities
	viewInvitees
	viewConfirm
	viewHost
)

// wizardSteps is the number of tabs shown while building an invitation.
const wizardSteps = 5

var viewNames = []string{"Details", "Time", "Activities", "Invitees", "Confirm", "RSVPs"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

// hydratedMsg carries the stored wizard state read at startup.
type hydratedMsg struct {
	draft invite.Draft
	snap  timeline.Snapshot
	ok    bool
}

type draftSavedMsg struct {
	draft invite.Draft
}

type activitiesChangedMsg struct{}

type confirmedMsg struct {
	id string
}

type hostLoadedMsg struct {
	inv invite.Invitation
}

type rsvpMsg struct {
	summary   invite.Summary
	responses []invite.Response
}

type exportDoneMsg struct {
	path string
}

func errStatus(err error) statusMsg {
	return statusMsg{text: err.Error(), isError: true}
}
