package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = 50 * time.Second

type ReminderSender interface {
	SendReminders(ctx context.Context) (int, error)
}

type OfferSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Jobs selects what the scheduler runs. An empty schedule disables a job.
type Jobs struct {
	Reminders        ReminderSender
	ReminderSchedule string

	Offers             OfferSweeper
	OfferSweepSchedule string
}

// Start registers the jobs and starts the scheduler. The caller stops it
// with Stop, which waits for running jobs.
func Start(jobs Jobs, log *zap.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.Recover(cronLogger{log}), cron.SkipIfStillRunning(cronLogger{log})))

	if jobs.Reminders != nil && jobs.ReminderSchedule != "" {
		if _, err := c.AddFunc(jobs.ReminderSchedule, func() { sendReminders(jobs.Reminders, log) }); err != nil {
			return nil, fmt.Errorf("add reminder job: %w", err)
		}
		log.Info("appointment reminders scheduled", zap.String("schedule", jobs.ReminderSchedule))
	}
	if jobs.Offers != nil && jobs.OfferSweepSchedule != "" {
		if _, err := c.AddFunc(jobs.OfferSweepSchedule, func() { sweepOffers(jobs.Offers, log) }); err != nil {
			return nil, fmt.Errorf("add offer sweep job: %w", err)
		}
		log.Info("expired offer sweep scheduled", zap.String("schedule", jobs.OfferSweepSchedule))
	}

	c.Start()
	return c, nil
}

func sendReminders(s ReminderSender, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	sent, err := s.SendReminders(ctx)
	if err != nil {
		log.Error("appointment reminders failed", zap.Error(err))
		return
	}
	if sent > 0 {
		log.Info("appointment reminders sent", zap.Int("count", sent))
	}
}

func sweepOffers(s OfferSweeper, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.SweepExpired(ctx)
	if err != nil {
		log.Error("expired offer sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		log.Info("expired offers deactivated", zap.Int64("count", n))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
