package store

import (
	"context"
	"strings"
	"time"
)

// DefaultPollInterval is how often subscriptions check for writes made
// through other connections, such as another viva process on the same file.
const DefaultPollInterval = 500 * time.Millisecond

type subscription struct {
	fn   func([]Document)
	last string // fingerprint of the last delivered contents
}

// SetPollInterval changes how often subscriptions look for outside writes.
// Zero or less turns that off; writes through this Store still notify.
func (s *Store) SetPollInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pollEvery = d
}

// Subscribe calls fn with the current contents of collection and again after
// every change to it, until the returned func is called. Changes committed
// by other connections are picked up by polling PRAGMA data_version.
func (s *Store) Subscribe(ctx context.Context, collection string, fn func([]Document)) (func(), error) {
	docs, err := s.ListDocuments(ctx, collection)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	if s.subs[collection] == nil {
		s.subs[collection] = map[int]*subscription{}
	}
	s.subs[collection][id] = &subscription{fn: fn, last: fingerprint(docs)}
	startPoll := s.stopPoll == nil && s.pollEvery > 0
	every := s.pollEvery
	s.mu.Unlock()

	if startPoll {
		s.startPolling(every)
	}

	fn(docs)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[collection], id)
		if len(s.subs[collection]) == 0 {
			delete(s.subs, collection)
		}
		if len(s.subs) == 0 && s.stopPoll != nil {
			s.stopPoll()
			s.stopPoll = nil
		}
	}, nil
}

func (s *Store) startPolling(every time.Duration) {
	baseline, err := s.dataVersion(context.Background())
	if err != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	if s.stopPoll != nil {
		s.mu.Unlock()
		cancel()
		return
	}
	s.stopPoll = cancel
	s.polling.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.polling.Done()
		t := time.NewTicker(every)
		defer t.Stop()

		last := baseline
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			v, err := s.dataVersion(ctx)
			if err != nil || v == last {
				continue
			}
			last = v
			for _, c := range s.subscribed() {
				s.notify(ctx, c)
			}
		}
	}()
}

// dataVersion changes whenever another connection commits to the database.
func (s *Store) dataVersion(ctx context.Context) (int64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx, `PRAGMA data_version`).Scan(&v)
	return v, err
}

func (s *Store) subscribed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.subs))
	for c := range s.subs {
		out = append(out, c)
	}
	return out
}

// notify delivers the contents of collection to every subscriber that has
// not seen them yet.
func (s *Store) notify(ctx context.Context, collection string) {
	s.mu.Lock()
	n := len(s.subs[collection])
	s.mu.Unlock()
	if n == 0 {
		return
	}

	docs, err := s.ListDocuments(ctx, collection)
	if err != nil {
		return
	}
	fp := fingerprint(docs)

	s.mu.Lock()
	var fns []func([]Document)
	for _, sub := range s.subs[collection] {
		if sub.last == fp {
			continue
		}
		sub.last = fp
		fns = append(fns, sub.fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(docs)
	}
}

func fingerprint(docs []Document) string {
	var b strings.Builder
	for _, d := range docs {
		b.WriteString(d.ID)
		b.WriteByte(0)
		b.Write(d.Data)
		b.WriteByte(0)
	}
	return b.String()
}
