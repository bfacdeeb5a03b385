package publisher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/user/shortgen/pkg/adapters/logger"
	"github.com/user/shortgen/pkg/ports"
)

// Runner is what the scheduler triggers.
type Runner interface {
	Run(ctx context.Context, date time.Time) (Report, error)
}

// Scheduler triggers one run per day at a fixed local time.
type Scheduler struct {
	mu       sync.Mutex
	cron     *cron.Cron
	schedule cron.Schedule
	runner   Runner
	loc      *time.Location
	logger   ports.Logger
	ctx      context.Context
	running  bool
	now      func() time.Time
}

// NewScheduler creates a scheduler firing daily at hour:minute in loc.
func NewScheduler(runner Runner, loc *time.Location, hour, minute int, log ports.Logger) (*Scheduler, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("publisher: invalid post time %02d:%02d", hour, minute)
	}
	if log == nil {
		log = logger.NewNoop()
	}
	spec := fmt.Sprintf("CRON_TZ=%s %d %d * * *", loc.String(), minute, hour)
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("publisher: parse schedule %q: %w", spec, err)
	}

	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: schedule,
		runner:   runner,
		loc:      loc,
		logger:   log.WithComponent("scheduler"),
		ctx:      context.Background(),
		now:      time.Now,
	}
	s.cron.Schedule(schedule, cron.FuncJob(s.trigger))
	return s, nil
}

// NextRun returns the first trigger time strictly after t.
func (s *Scheduler) NextRun(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Start begins firing. Runs use ctx and stop when it is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("Scheduled daily run at %s (%s)", s.NextRun(s.now()).Format("15:04"), s.loc)
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// trigger runs one publication unless the previous one is still going.
func (s *Scheduler) trigger() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("Previous run still in progress, skipping")
		return
	}
	s.running = true
	ctx := s.ctx
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if ctx.Err() != nil {
		return
	}
	report, err := s.runner.Run(ctx, s.now().In(s.loc))
	if err != nil {
		s.logger.Error("Daily run failed: %s", err)
		return
	}
	s.logger.Info("Daily run finished: %d uploads", report.Uploaded())
}
