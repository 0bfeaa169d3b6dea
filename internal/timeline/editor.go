package timeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sadopc/viva/internal/logging"
)

// ErrNotSaved marks a mutation that was applied in memory but could not be
// written back. The in-memory state remains authoritative.
var ErrNotSaved = errors.New("couldn't save, try again")

// ErrNotHydrated rejects edits made before the stored snapshot has been
// applied; they would be overwritten by it.
var ErrNotHydrated = errors.New("schedule is still loading")

// Editor owns the activity store for one editing session and mirrors every
// change into the bridge once hydration has happened.
type Editor struct {
	store  *Store
	bridge *Bridge
	log    *slog.Logger

	hydrated bool
	closed   bool

	draftName string
	draftTime string
}

// NewEditor starts an unhydrated session over w. Nothing is written until
// Hydrate or Apply has run.
func NewEditor(w Window, bridge *Bridge, log *slog.Logger) *Editor {
	return &Editor{
		store:  NewStore(w),
		bridge: bridge,
		log:    logging.OrDiscard(log),
	}
}

// Store exposes the underlying activity store for read access.
func (e *Editor) Store() *Store { return e.store }

func (e *Editor) Window() Window { return e.store.Window() }

func (e *Editor) Activities() []Activity { return e.store.Activities() }

// Get looks an activity up by id.
func (e *Editor) Get(id int64) (Activity, bool) { return e.store.Get(id) }

func (e *Editor) Hydrated() bool { return e.hydrated }

// Draft returns the pending new-activity form fields.
func (e *Editor) Draft() (name, clock string) { return e.draftName, e.draftTime }

// Mapper returns a coordinate mapper for a track of the given extent.
func (e *Editor) Mapper(extent float64) Mapper {
	return NewMapper(e.store.Window(), extent)
}

// Load reads the stored snapshot without applying it.
func (e *Editor) Load(ctx context.Context) (Snapshot, bool) {
	if e.bridge == nil {
		return Snapshot{}, false
	}
	return e.bridge.Load(ctx)
}

// Apply installs a loaded snapshot and opens the write-back gate. Restored
// times are clamped into the current window, not the stored one. A closed
// editor discards the result.
func (e *Editor) Apply(snap Snapshot, ok bool) {
	if e.closed {
		e.log.Debug("hydration discarded after close")
		return
	}
	if ok {
		e.store.Seed(snap.Activities)
		e.draftName = snap.DraftName
		e.draftTime = snap.DraftTime
		e.log.Debug("editor hydrated",
			"activities", e.store.Len(),
			"saved_window", snap.Window().String(),
			"window", e.store.Window().String())
	}
	e.hydrated = true
}

// Hydrate is Load followed by Apply.
func (e *Editor) Hydrate(ctx context.Context) {
	snap, ok := e.Load(ctx)
	e.Apply(snap, ok)
}

// Close tears the session down; later hydration results are dropped.
func (e *Editor) Close() { e.closed = true }

// Snapshot captures the current state in its persisted shape.
func (e *Editor) Snapshot() Snapshot {
	clocks := e.store.Window().Clocks()
	return Snapshot{
		Version:    SnapshotVersion,
		StartTime:  clocks.Start,
		EndTime:    clocks.End,
		Activities: e.store.Activities(),
		DraftName:  e.draftName,
		DraftTime:  e.draftTime,
	}
}

// Save writes the current state if hydration has completed.
func (e *Editor) Save(ctx context.Context) error {
	if !e.hydrated || e.closed || e.bridge == nil {
		return nil
	}
	if err := e.bridge.Save(ctx, e.Snapshot()); err != nil {
		e.log.Error("snapshot write failed", "err", err)
		return fmt.Errorf("%w: %w", ErrNotSaved, err)
	}
	return nil
}

func (e *Editor) ready() error {
	if !e.hydrated {
		return ErrNotHydrated
	}
	return nil
}

// Insert adds an activity at an absolute minute.
func (e *Editor) Insert(ctx context.Context, name string, minutes int) (Activity, error) {
	if err := e.ready(); err != nil {
		return Activity{}, err
	}
	a, err := e.store.Insert(name, minutes)
	if err != nil {
		return Activity{}, err
	}
	return a, e.Save(ctx)
}

// SetDraft records the new-activity form fields.
func (e *Editor) SetDraft(ctx context.Context, name, clock string) error {
	if err := e.ready(); err != nil {
		return err
	}
	e.draftName, e.draftTime = name, clock
	return e.Save(ctx)
}

// AddDraft inserts the draft fields as a new activity and clears them.
// A malformed or missing clock is a validation error, not a default.
func (e *Editor) AddDraft(ctx context.Context) (Activity, error) {
	if err := e.ready(); err != nil {
		return Activity{}, err
	}
	minutes, ok := parseClock(e.draftTime)
	if !ok {
		return Activity{}, fmt.Errorf("time %q: %w", e.draftTime, ErrInvalidClock)
	}
	a, err := e.store.Insert(e.draftName, minutes)
	if err != nil {
		return Activity{}, err
	}
	e.draftName, e.draftTime = "", ""
	return a, e.Save(ctx)
}

// Remove deletes an activity; absent ids are ignored.
func (e *Editor) Remove(ctx context.Context, id int64) error {
	if err := e.ready(); err != nil {
		return err
	}
	e.store.Remove(id)
	return e.Save(ctx)
}

// Relocate moves an activity, clamping into the window.
func (e *Editor) Relocate(ctx context.Context, id int64, minutes int) (Activity, error) {
	if err := e.ready(); err != nil {
		return Activity{}, err
	}
	a, err := e.store.Relocate(id, minutes)
	if err != nil {
		return Activity{}, err
	}
	return a, e.Save(ctx)
}

// Commit lets the editor act as a drag Source.
func (e *Editor) Commit(ctx context.Context, id int64, minutes int) error {
	_, err := e.Relocate(ctx, id, minutes)
	return err
}

// RelocateAll applies a positional vector of times.
func (e *Editor) RelocateAll(ctx context.Context, minutes []int) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := e.store.RelocateAll(minutes); err != nil {
		return err
	}
	return e.Save(ctx)
}

// Reconcile applies times keyed by activity id.
func (e *Editor) Reconcile(ctx context.Context, times map[int64]int) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := e.store.Reconcile(times); err != nil {
		return err
	}
	return e.Save(ctx)
}

// SetWindow moves the editor onto a newly resolved window. It is allowed
// before hydration so a restored snapshot is clamped into the right window.
func (e *Editor) SetWindow(ctx context.Context, w Window) error {
	if w == e.store.Window() {
		return nil
	}
	e.store.SetWindow(w)
	return e.Save(ctx)
}

// Reset clears activities and drafts and deletes the stored snapshot.
func (e *Editor) Reset(ctx context.Context) error {
	e.store.Seed(nil)
	e.draftName, e.draftTime = "", ""
	if e.bridge == nil {
		return nil
	}
	if err := e.bridge.Reset(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrNotSaved, err)
	}
	return nil
}
