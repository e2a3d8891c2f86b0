// Package scheduler drives milestone publication from the race clock.
package scheduler

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/whenToSleep/race-info-bot/internal/errors"
	"github.com/whenToSleep/race-info-bot/internal/logger"
	"github.com/whenToSleep/race-info-bot/internal/models"
	"github.com/whenToSleep/race-info-bot/internal/raceclock"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type Options struct {
	Interval          time.Duration
	ReplaySkipped     bool
	StatusLogInterval time.Duration
}

type Scheduler struct {
	clock     Clock
	race      raceclock.Config
	opts      Options
	detector  *Detector
	publisher *Publisher
	log       logger.Logger
	status    *logger.Throttle

	// milestones whose board could not be built yet; retried every tick
	pending []models.Milestone
}

func New(clock Clock, race raceclock.Config, opts Options, pub *Publisher, log logger.Logger) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	if opts.StatusLogInterval <= 0 {
		opts.StatusLogInterval = time.Minute
	}
	return &Scheduler{
		clock:     clock,
		race:      race,
		opts:      opts,
		detector:  NewDetector(race, opts.ReplaySkipped),
		publisher: pub,
		log:       log,
		status:    logger.NewThrottle(opts.StatusLogInterval),
	}
}

// Run ticks until ctx is cancelled. A tick in progress finishes its sends.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("scheduler started", "interval", s.opts.Interval.String(), "replay_skipped_laps", s.opts.ReplaySkipped)
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	s.Tick(context.WithoutCancel(ctx))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return nil
		case <-ticker.C:
			s.Tick(context.WithoutCancel(ctx))
		}
	}
}

// Tick observes the clock once, publishes what became due and returns the
// milestones detected on this tick.
func (s *Scheduler) Tick(ctx context.Context) []models.Milestone {
	now := s.clock.Now()
	st := raceclock.Describe(now, s.race)
	s.status.Info(s.log, "status:"+st.PhaseName, "race status", "status", st.Text())

	detected := s.detector.Observe(now)
	for _, m := range detected {
		s.log.Info("milestone reached", "milestone", m.String())
	}

	queue := append(s.pending, detected...)
	s.pending = nil
	for i, m := range queue {
		if err := s.dispatch(ctx, m); err != nil {
			if errors.Is(err, apperrors.ErrDataUnavailable) {
				s.log.Warn("race data unavailable, will retry", "milestone", m.String(), "error", err)
				s.pending = append(s.pending, queue[i:]...)
				break
			}
			s.log.Error("dispatch milestone", "milestone", m.String(), "error", err)
		}
	}
	return detected
}

func (s *Scheduler) dispatch(ctx context.Context, m models.Milestone) error {
	if _, err := s.publisher.Publish(ctx, m); err != nil {
		return err
	}
	if m.Kind != models.MilestoneLap {
		return nil
	}
	if _, err := s.publisher.SendWindows(ctx, m.Lap); err != nil {
		if errors.Is(err, apperrors.ErrDataUnavailable) {
			return err
		}
		s.log.Warn("personal standings not sent", "lap", m.Lap, "error", err)
	}
	return nil
}

// CatchUp sends the start leaderboard to a chat that registered after the
// race began.
func (s *Scheduler) CatchUp(ctx context.Context, audienceID int64) error {
	if raceclock.PhaseAt(s.clock.Now(), s.race) != raceclock.PhaseRunning {
		return nil
	}
	_, err := s.publisher.PublishTo(ctx, models.StartMilestone(), []int64{audienceID})
	return err
}

// CompletedLaps is the number of laps finished at the current instant. New
// trackers start from it so they only get laps completed after they joined.
func (s *Scheduler) CompletedLaps() int {
	now := s.clock.Now()
	switch raceclock.PhaseAt(now, s.race) {
	case raceclock.PhaseRunning:
		lap, _ := raceclock.CurrentLap(now, s.race)
		return lap - 1
	case raceclock.PhaseFinished:
		return s.race.TotalLaps
	default:
		return 0
	}
}
