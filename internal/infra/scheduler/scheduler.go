package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"nurturing_engine/internal/app"
	"nurturing_engine/internal/domain/nurturing"
)

const cycleKey = "nurturing-cycle"

// CycleObserver receives the outcome of every cycle the scheduler runs.
type CycleObserver interface {
	ObserveCycle(s nurturing.CycleSummary)
	ObserveCoalescedCycle()
}

type NurturingScheduler struct {
	cronEngine   *cron.Cron
	service      app.NurturingService
	observer     CycleObserver
	logger       *logrus.Entry
	cronSpec     string
	cycleTimeout time.Duration

	group singleflight.Group
}

// NewNurturingScheduler wires one cron job that runs the full rule catalog. cycleTimeout
// bounds a single cycle; zero means no deadline.
func NewNurturingScheduler(
	service app.NurturingService,
	observer CycleObserver,
	logger *logrus.Entry,
	cronSpec string, // e.g. "*/5 * * * *"
	cycleTimeout time.Duration,
) *NurturingScheduler {
	cronLogger := cronLogAdapter{logger.WithField("component", "cron")}
	return &NurturingScheduler{
		cronEngine: cron.New(
			cron.WithLocation(time.Local),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		service:      service,
		observer:     observer,
		logger:       logger.WithField("component", "scheduler"),
		cronSpec:     cronSpec,
		cycleTimeout: cycleTimeout,
	}
}

func (s *NurturingScheduler) Start() error {
	s.logger.Info("Starting nurturing scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		s.logger.Debug("Cron job triggered for nurturing cycle.")
		if _, joined, _ := s.RunNow(context.Background()); joined {
			s.logger.Info("Scheduled tick joined a cycle that was already running")
		}
	})
	if err != nil {
		return fmt.Errorf("could not add nurturing cycle cron job %q: %w", s.cronSpec, err)
	}

	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpec).Info("Nurturing scheduler started.")
	return nil
}

// RunNow runs one cycle. A request arriving while a cycle is running joins it and receives
// the same summary instead of starting a second one; joined reports that case.
func (s *NurturingScheduler) RunNow(ctx context.Context) (summary nurturing.CycleSummary, joined bool, err error) {
	leader := false
	ch := s.group.DoChan(cycleKey, func() (any, error) {
		leader = true
		return s.runCycle(ctx), nil
	})

	select {
	case res := <-ch:
		// leader is written before the result is delivered on ch.
		joined = res.Shared && !leader
		if joined && s.observer != nil {
			s.observer.ObserveCoalescedCycle()
		}
		return res.Val.(nurturing.CycleSummary), joined, nil
	case <-ctx.Done():
		return nurturing.CycleSummary{}, false, ctx.Err()
	}
}

func (s *NurturingScheduler) runCycle(ctx context.Context) nurturing.CycleSummary {
	ctx = context.WithoutCancel(ctx)
	if s.cycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cycleTimeout)
		defer cancel()
	}

	summary := s.service.RunCycle(ctx)
	if s.observer != nil {
		s.observer.ObserveCycle(summary)
	}
	return summary
}

func (s *NurturingScheduler) Stop() {
	s.logger.Info("Stopping nurturing scheduler...")
	ctx := s.cronEngine.Stop() // waits for a running cycle to finish
	<-ctx.Done()
	s.logger.Info("Nurturing scheduler gracefully stopped.")
}

// cronLogAdapter routes cron's key/value logging to logrus.
type cronLogAdapter struct {
	entry *logrus.Entry
}

func (a cronLogAdapter) Info(msg string, keysAndValues ...any) {
	a.entry.WithFields(fields(keysAndValues)).Debug(msg)
}

func (a cronLogAdapter) Error(err error, msg string, keysAndValues ...any) {
	a.entry.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func fields(kv []any) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			f[k] = kv[i+1]
		}
	}
	return f
}
