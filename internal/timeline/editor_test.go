package timeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memKV struct {
	data map[string]string
	puts int
}

func newMemKV() *memKV { return &memKV{data: map[string]string{}} }

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Put(_ context.Context, key, value string) error {
	m.puts++
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

var errDisk = errors.New("disk full")

type failKV struct{ memKV }

func (f *failKV) Put(context.Context, string, string) error { return errDisk }
func (f *failKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errDisk
}

func newTestEditor(kv KV, w Window) *Editor {
	e := NewEditor(w, NewBridge(kv, nil), nil)
	var next int64
	e.Store().WithIDSource(func() int64 {
		next++
		return next
	})
	return e
}

func TestEditorRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	w := NewWindow(540, 1020)

	e := newTestEditor(kv, w)
	e.Hydrate(ctx)
	_, err := e.Insert(ctx, "Lunch", 720)
	require.NoError(t, err)
	_, err = e.Insert(ctx, "Setup", 600)
	require.NoError(t, err)
	require.NoError(t, e.SetDraft(ctx, "Cake", "15:00"))

	again := newTestEditor(kv, w)
	again.Hydrate(ctx)
	assert.Equal(t, e.Activities(), again.Activities())
	name, clock := again.Draft()
	assert.Equal(t, "Cake", name)
	assert.Equal(t, "15:00", clock)
}

func TestEditorNoWriteBeforeHydration(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	kv.data[StorageKey] = `{"startTime":"09:00","endTime":"17:00","activities":[{"id":1,"name":"Kept","time":600}]}`

	e := newTestEditor(kv, NewWindow(540, 1020))
	_, err := e.Insert(ctx, "Early bird", 700)
	assert.ErrorIs(t, err, ErrNotHydrated)
	assert.ErrorIs(t, e.SetDraft(ctx, "Cake", "15:00"), ErrNotHydrated)
	_, err = e.AddDraft(ctx)
	assert.ErrorIs(t, err, ErrNotHydrated)
	_, err = e.Relocate(ctx, 1, 660)
	assert.ErrorIs(t, err, ErrNotHydrated)
	assert.ErrorIs(t, e.Remove(ctx, 1), ErrNotHydrated)
	assert.ErrorIs(t, e.RelocateAll(ctx, []int{660}), ErrNotHydrated)
	assert.ErrorIs(t, e.Reconcile(ctx, map[int64]int{1: 660}), ErrNotHydrated)
	assert.Zero(t, e.Store().Len(), "rejected edits leave the store untouched")
	assert.Zero(t, kv.puts)
	assert.Contains(t, kv.data[StorageKey], "Kept")

	e.Hydrate(ctx)
	assert.True(t, e.Hydrated())
	assert.Equal(t, []string{"Kept"}, names(e.Activities()))

	a, err := e.Insert(ctx, "Lunch", 720)
	require.NoError(t, err)
	assert.NotEqual(t, int64(1), a.ID, "new ids never collide with restored ones")
	assert.Equal(t, []string{"Kept", "Lunch"}, names(e.Activities()))
}

func TestEditorWindowBeforeHydration(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	kv.data[StorageKey] = `{"activities":[{"id":1,"name":"Toast","time":900}]}`

	e := newTestEditor(kv, NewWindow(540, 1020))
	require.NoError(t, e.SetWindow(ctx, NewWindow(600, 720)))
	assert.Zero(t, kv.puts)

	e.Hydrate(ctx)
	assert.Equal(t, []int{720}, times(e.Activities()))
}

func TestEditorRestoreClampsToCurrentWindow(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	kv.data[StorageKey] = `{"startTime":"08:00","endTime":"20:00","activities":[` +
		`{"id":1,"name":"Breakfast","time":490},{"id":2,"name":"Dinner","time":1150},{"id":3,"name":"Talk","time":700}]}`

	e := newTestEditor(kv, NewWindow(540, 1020))
	e.Hydrate(ctx)
	assert.Equal(t, []string{"Breakfast", "Talk", "Dinner"}, names(e.Activities()))
	assert.Equal(t, []int{540, 700, 1020}, times(e.Activities()))
}

func TestEditorCloseDiscardsHydration(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	kv.data[StorageKey] = `{"activities":[{"id":1,"name":"Kept","time":600}]}`

	e := newTestEditor(kv, NewWindow(540, 1020))
	snap, ok := e.Load(ctx)
	require.True(t, ok)
	e.Close()
	e.Apply(snap, ok)

	assert.False(t, e.Hydrated())
	assert.Zero(t, e.Store().Len())
	require.NoError(t, e.Save(ctx))
	assert.Zero(t, kv.puts)
}

func TestEditorSaveFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	kv := &failKV{memKV: *newMemKV()}
	e := newTestEditor(kv, NewWindow(540, 1020))
	e.Hydrate(ctx)
	assert.True(t, e.Hydrated(), "read failure still opens the gate")

	a, err := e.Insert(ctx, "Games", 800)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotSaved)
	assert.ErrorIs(t, err, errDisk)

	got, ok := e.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, "Games", got.Name)
}

func TestEditorGarbageSnapshotIgnored(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	kv.data[StorageKey] = `not json at all`

	e := newTestEditor(kv, NewWindow(540, 1020))
	e.Hydrate(ctx)
	assert.True(t, e.Hydrated())
	assert.Zero(t, e.Store().Len())

	_, err := e.Insert(ctx, "Fresh", 600)
	require.NoError(t, err)
	assert.Contains(t, kv.data[StorageKey], `"version":1`)
}

func TestEditorAddDraft(t *testing.T) {
	ctx := context.Background()
	e := newTestEditor(newMemKV(), NewWindow(540, 1020))
	e.Hydrate(ctx)

	require.NoError(t, e.SetDraft(ctx, "Cake", "nine"))
	_, err := e.AddDraft(ctx)
	assert.ErrorIs(t, err, ErrInvalidClock)

	require.NoError(t, e.SetDraft(ctx, "Cake", "18:00"))
	_, err = e.AddDraft(ctx)
	assert.ErrorIs(t, err, ErrOutOfRange)
	name, _ := e.Draft()
	assert.Equal(t, "Cake", name, "draft survives a rejected add")

	require.NoError(t, e.SetDraft(ctx, "Cake", "15:00"))
	a, err := e.AddDraft(ctx)
	require.NoError(t, err)
	assert.Equal(t, 900, a.Time)
	name, clock := e.Draft()
	assert.Empty(t, name)
	assert.Empty(t, clock)
}

func TestEditorSetWindowClamps(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	e := newTestEditor(kv, NewWindow(540, 1020))
	e.Hydrate(ctx)
	e.Insert(ctx, "A", 600)
	e.Insert(ctx, "B", 1000)

	require.NoError(t, e.SetWindow(ctx, NewWindow(660, 900)))
	assert.Equal(t, []int{660, 900}, times(e.Activities()))
	assert.Contains(t, kv.data[StorageKey], `"startTime":"11:00"`)
	assert.Contains(t, kv.data[StorageKey], `"endTime":"15:00"`)
}

func TestEditorReset(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	e := newTestEditor(kv, NewWindow(540, 1020))
	e.Hydrate(ctx)
	e.Insert(ctx, "A", 600)

	require.NoError(t, e.Reset(ctx))
	assert.Zero(t, e.Store().Len())
	_, ok := kv.data[StorageKey]
	assert.False(t, ok)
}

func TestDecodeSnapshotLegacy(t *testing.T) {
	snap, err := DecodeSnapshot([]byte(`{
		"startTime": "10:00",
		"activities": [
			{"name": "Toast", "time": "13:30"},
			{"id": "12", "name": "Speech", "time": 700},
			{"id": 4, "name": "", "time": 600},
			{"id": 5, "name": "Bad", "time": "noon"},
			{"id": 6, "name": "Odd", "time": {}}
		]
	}`))
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Version)
	assert.Equal(t, "10:00", snap.StartTime)
	require.Len(t, snap.Activities, 2)
	assert.Equal(t, Activity{ID: 13, Name: "Toast", Time: 810}, snap.Activities[0])
	assert.Equal(t, Activity{ID: 12, Name: "Speech", Time: 700}, snap.Activities[1])
	assert.Equal(t, Window{Start: 600, End: 1020}, snap.Window())
}

func TestDecodeSnapshotRejectsGarbage(t *testing.T) {
	_, err := DecodeSnapshot([]byte(`[1,2,3]`))
	assert.Error(t, err)
}

func TestSnapshotEncodeEmpty(t *testing.T) {
	data, err := Snapshot{}.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"startTime":"","endTime":"","activities":[],"name":"","time":""}`, string(data))
}
