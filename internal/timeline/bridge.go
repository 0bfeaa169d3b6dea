package timeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sadopc/viva/internal/logging"
)

// StorageKey is the durable key the editor state lives under.
const StorageKey = "viva:activityState"

// KV is a durable local key/value store.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Bridge reads and writes the editor snapshot under a single key.
type Bridge struct {
	kv  KV
	key string
	log *slog.Logger
}

func NewBridge(kv KV, log *slog.Logger) *Bridge {
	return &Bridge{kv: kv, key: StorageKey, log: logging.OrDiscard(log)}
}

// Load returns the stored snapshot. Absent, unreadable or corrupt entries
// report false and are only logged.
func (b *Bridge) Load(ctx context.Context) (Snapshot, bool) {
	raw, ok, err := b.kv.Get(ctx, b.key)
	if err != nil {
		b.log.Warn("snapshot read failed", "key", b.key, "err", err)
		return Snapshot{}, false
	}
	if !ok {
		return Snapshot{}, false
	}
	snap, err := DecodeSnapshot([]byte(raw))
	if err != nil {
		b.log.Debug("snapshot ignored", "key", b.key, "err", err)
		return Snapshot{}, false
	}
	return snap, true
}

// Save writes snap unconditionally. Callers must not save before the first
// Load has been applied.
func (b *Bridge) Save(ctx context.Context, snap Snapshot) error {
	data, err := snap.Encode()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := b.kv.Put(ctx, b.key, string(data)); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Reset deletes the stored snapshot.
func (b *Bridge) Reset(ctx context.Context) error {
	if err := b.kv.Delete(ctx, b.key); err != nil {
		return fmt.Errorf("reset snapshot: %w", err)
	}
	return nil
}
