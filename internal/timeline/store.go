package timeline

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var (
	ErrOutOfRange      = errors.New("time is out of range")
	ErrEmptyName       = errors.New("activity name is required")
	ErrUnknownActivity = errors.New("unknown activity")
	ErrLengthMismatch  = errors.New("position count does not match activity count")
	ErrInvalidClock    = errors.New("time must be HH:MM")
)

// RangeError reports an insert outside the current window.
type RangeError struct {
	Minutes int
	Window  Window
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: %s is outside %s", ErrOutOfRange, FormatClock(e.Minutes), e.Window)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

// Activity is one scheduled item. Time is absolute minutes after midnight.
type Activity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Time int    `json:"time"`
}

type entry struct {
	Activity
	touched uint64
}

// Store is the ordered collection of activities. The sequence is kept in
// ascending time order; on equal times the most recently inserted or moved
// activity comes first.
type Store struct {
	window  Window
	entries []entry
	clock   uint64
	lastID  int64
	newID   func() int64
}

// NewStore returns an empty store bound to w.
func NewStore(w Window) *Store {
	return &Store{
		window: w,
		newID:  func() int64 { return time.Now().UnixMilli() },
	}
}

// WithIDSource replaces the wall-clock id seed. Ids stay strictly increasing
// regardless of what src returns.
func (s *Store) WithIDSource(src func() int64) *Store {
	s.newID = src
	return s
}

func (s *Store) Window() Window { return s.window }

func (s *Store) Len() int { return len(s.entries) }

// Activities returns a copy of the ordered sequence.
func (s *Store) Activities() []Activity {
	out := make([]Activity, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Activity
	}
	return out
}

// Get looks an activity up by id.
func (s *Store) Get(id int64) (Activity, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Activity{}, false
	}
	return s.entries[i].Activity, true
}

// Index returns the display position of id, or -1.
func (s *Store) Index(id int64) int {
	return s.indexOf(id)
}

// Insert adds a new activity. Times outside the window are rejected with a
// *RangeError and the store is left untouched.
func (s *Store) Insert(name string, minutes int) (Activity, error) {
	if strings.TrimSpace(name) == "" {
		return Activity{}, ErrEmptyName
	}
	if !s.window.Contains(minutes) {
		return Activity{}, &RangeError{Minutes: minutes, Window: s.window}
	}
	a := Activity{ID: s.nextID(), Name: name, Time: minutes}
	s.entries = append(s.entries, entry{Activity: a, touched: s.tick()})
	s.sort()
	return a, nil
}

// Remove drops id from the store. Removing an absent id is a no-op.
func (s *Store) Remove(id int64) {
	s.entries = slices.DeleteFunc(s.entries, func(e entry) bool { return e.ID == id })
}

// Relocate moves id to minutes, clamped into the window.
func (s *Store) Relocate(id int64, minutes int) (Activity, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Activity{}, fmt.Errorf("relocate %d: %w", id, ErrUnknownActivity)
	}
	s.entries[i].Time = s.window.Clamp(minutes)
	s.entries[i].touched = s.tick()
	a := s.entries[i].Activity
	s.sort()
	return a, nil
}

// RelocateAll assigns minutes[i] to the activity currently displayed at
// position i. The slice must match the activity count exactly.
func (s *Store) RelocateAll(minutes []int) error {
	if len(minutes) != len(s.entries) {
		return fmt.Errorf("relocate all: got %d positions for %d activities: %w",
			len(minutes), len(s.entries), ErrLengthMismatch)
	}
	for i, m := range minutes {
		m = s.window.Clamp(m)
		if s.entries[i].Time == m {
			continue
		}
		s.entries[i].Time = m
		s.entries[i].touched = s.tick()
	}
	s.sort()
	return nil
}

// Reconcile applies new times keyed by activity id. Unknown ids fail the
// whole call without changing anything; activities missing from times keep
// their current position.
func (s *Store) Reconcile(times map[int64]int) error {
	for id := range times {
		if s.indexOf(id) < 0 {
			return fmt.Errorf("reconcile %d: %w", id, ErrUnknownActivity)
		}
	}
	for i := range s.entries {
		m, ok := times[s.entries[i].ID]
		if !ok {
			continue
		}
		m = s.window.Clamp(m)
		if s.entries[i].Time == m {
			continue
		}
		s.entries[i].Time = m
		s.entries[i].touched = s.tick()
	}
	s.sort()
	return nil
}

// RescaleWindow moves the store from old to next, clamping every time into
// next while keeping the current relative order.
func (s *Store) RescaleWindow(old, next Window) {
	s.window = next
	if old == next {
		return
	}
	for i := range s.entries {
		s.entries[i].Time = next.Clamp(s.entries[i].Time)
	}
	s.renumber()
}

// SetWindow is RescaleWindow from the current window.
func (s *Store) SetWindow(w Window) {
	s.RescaleWindow(s.window, w)
}

// Seed replaces the contents with acts, clamped into the window. Equal
// times keep the order they were given in.
func (s *Store) Seed(acts []Activity) {
	s.entries = make([]entry, 0, len(acts))
	for _, a := range acts {
		a.Time = s.window.Clamp(a.Time)
		if a.ID > s.lastID {
			s.lastID = a.ID
		}
		s.entries = append(s.entries, entry{Activity: a})
	}
	slices.SortStableFunc(s.entries, func(a, b entry) int { return cmp.Compare(a.Time, b.Time) })
	s.renumber()
}

func (s *Store) nextID() int64 {
	id := s.newID()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *Store) tick() uint64 {
	s.clock++
	return s.clock
}

// renumber rewrites touch stamps so the current sequence is exactly what
// the comparator would produce.
func (s *Store) renumber() {
	n := uint64(len(s.entries))
	for i := range s.entries {
		s.entries[i].touched = s.clock + n - uint64(i)
	}
	s.clock += n
}

func (s *Store) sort() {
	slices.SortFunc(s.entries, func(a, b entry) int {
		if c := cmp.Compare(a.Time, b.Time); c != 0 {
			return c
		}
		return cmp.Compare(b.touched, a.touched)
	})
}

func (s *Store) indexOf(id int64) int {
	return slices.IndexFunc(s.entries, func(e entry) bool { return e.ID == id })
}
