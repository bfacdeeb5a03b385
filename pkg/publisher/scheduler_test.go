package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/user/shortgen/pkg/mocks"
)

type fakeRunner struct {
	mu      sync.Mutex
	dates   []time.Time
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeRunner) Run(ctx context.Context, date time.Time) (Report, error) {
	f.mu.Lock()
	f.dates = append(f.dates, date)
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	return Report{Date: date}, f.err
}

func TestNewScheduler_InvalidTime(t *testing.T) {
	for _, hm := range [][2]int{{24, 0}, {-1, 0}, {12, 60}} {
		if _, err := NewScheduler(&fakeRunner{}, time.UTC, hm[0], hm[1], nil); err == nil {
			t.Errorf("%02d:%02d should be rejected", hm[0], hm[1])
		}
	}
}

func TestScheduler_NextRun(t *testing.T) {
	s, err := NewScheduler(&fakeRunner{}, time.UTC, 9, 0, nil)
	if err != nil {
		t.Fatal(err)
	}

	before := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	if got := s.NextRun(before); !got.Equal(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("next = %v", got)
	}
	after := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	if got := s.NextRun(after); !got.Equal(time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("next = %v", got)
	}
}

func TestScheduler_NextRunTimezone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewScheduler(&fakeRunner{}, tokyo, 18, 30, nil)
	if err != nil {
		t.Fatal(err)
	}

	// 10:00 UTC is 19:00 in Tokyo, past today's slot.
	got := s.NextRun(time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC))
	want := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("next = %v, want %v", got.UTC(), want)
	}
}

func TestScheduler_Trigger(t *testing.T) {
	runner := &fakeRunner{}
	log := mocks.NewLogger()
	loc := time.FixedZone("X", 3600)
	s, err := NewScheduler(runner, time.UTC, 9, 0, log)
	if err != nil {
		t.Fatal(err)
	}
	s.loc = loc
	s.now = func() time.Time { return time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC) }

	s.trigger()

	if len(runner.dates) != 1 {
		t.Fatalf("runs = %d, want 1", len(runner.dates))
	}
	if runner.dates[0].Location() != loc {
		t.Errorf("date location = %v", runner.dates[0].Location())
	}

	runner.err = errors.New("boom")
	s.trigger()
	if log.Count("ERROR") != 1 {
		t.Errorf("errors logged = %d, want 1", log.Count("ERROR"))
	}
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{}), started: make(chan struct{})}
	log := mocks.NewLogger()
	s, err := NewScheduler(runner, time.UTC, 9, 0, log)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		s.trigger()
		close(done)
	}()
	<-runner.started

	s.trigger()
	close(runner.block)
	<-done

	if len(runner.dates) != 1 {
		t.Errorf("runs = %d, want 1", len(runner.dates))
	}
	if log.Count("WARN") != 1 {
		t.Errorf("warnings = %d, want 1", log.Count("WARN"))
	}
}

func TestScheduler_StartStop(t *testing.T) {
	runner := &fakeRunner{}
	log := mocks.NewLogger()
	s, err := NewScheduler(runner, time.UTC, 9, 0, log)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()
	s.Stop()

	if log.Count("INFO") != 1 {
		t.Errorf("info logs = %d, want 1", log.Count("INFO"))
	}

	// A cancelled context suppresses the run.
	s.trigger()
	if len(runner.dates) != 0 {
		t.Errorf("runs = %d, want 0", len(runner.dates))
	}
}
