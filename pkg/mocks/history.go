package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/user/shortgen/pkg/ports"
)

// HistoryStore is an in-memory implementation of ports.HistoryStore.
type HistoryStore struct {
	mu sync.Mutex

	RecordFunc    func(ctx context.Context, rec ports.PostRecord) error
	PostedIDsFunc func(ctx context.Context, platform string) (map[string]bool, error)

	Records     []ports.PostRecord
	CloseCalled bool
}

func (m *HistoryStore) Record(ctx context.Context, rec ports.PostRecord) error {
	if m.RecordFunc != nil {
		if err := m.RecordFunc(ctx, rec); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.PostedAt.IsZero() {
		rec.PostedAt = time.Now()
	}
	m.Records = append(m.Records, rec)
	return nil
}

func (m *HistoryStore) PostedIDs(ctx context.Context, platform string) (map[string]bool, error) {
	if m.PostedIDsFunc != nil {
		return m.PostedIDsFunc(ctx, platform)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make(map[string]bool)
	for _, r := range m.Records {
		if r.Platform == platform {
			ids[r.ContentID] = true
		}
	}
	return ids, nil
}

func (m *HistoryStore) CountSince(ctx context.Context, platform string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.Records {
		if r.Platform == platform && !r.PostedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *HistoryStore) Recent(ctx context.Context, limit int) ([]ports.PostRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := append([]ports.PostRecord(nil), m.Records...)
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].PostedAt.After(recs[j].PostedAt) })
	if limit < len(recs) {
		recs = recs[:limit]
	}
	return recs, nil
}

func (m *HistoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
	return nil
}

var _ ports.HistoryStore = (*HistoryStore)(nil)
