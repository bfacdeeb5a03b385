package content

import (
	"context"
	"fmt"
	"time"

	"github.com/user/shortgen/pkg/ports"
)

// Selector picks one catalog item per day and platform.
type Selector struct {
	items   []Item
	history ports.HistoryStore
}

// NewSelector creates a Selector. history may be nil, in which case every
// item counts as unposted.
func NewSelector(items []Item, history ports.HistoryStore) *Selector {
	return &Selector{items: items, history: history}
}

// Candidates returns the items eligible on date for platform, in catalog order.
func (s *Selector) Candidates(date time.Time, platform string) []Item {
	var out []Item
	for _, it := range s.items {
		if it.MatchesPlatform(platform) && it.ScheduledOn(date) {
			out = append(out, it)
		}
	}
	return out
}

// SelectForDate picks an item for date. Items already posted on platform are
// skipped; once every candidate has been posted the full rotation starts
// over. The choice is deterministic: the day of year indexes the candidates.
func (s *Selector) SelectForDate(ctx context.Context, date time.Time, platform string) (Item, error) {
	candidates := s.Candidates(date, platform)
	if len(candidates) == 0 {
		return Item{}, fmt.Errorf("%w: %s on %s", ErrNoContent, platform, date.Format("2006-01-02"))
	}

	pool := candidates
	if s.history != nil {
		posted, err := s.history.PostedIDs(ctx, platform)
		if err != nil {
			return Item{}, fmt.Errorf("load history: %w", err)
		}
		var fresh []Item
		for _, it := range candidates {
			if !posted[it.ID] {
				fresh = append(fresh, it)
			}
		}
		if len(fresh) > 0 {
			pool = fresh
		}
	}

	return pool[(date.YearDay()-1)%len(pool)], nil
}
