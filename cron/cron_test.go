package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReminders struct {
	calls int
	err   error
}

func (f *fakeReminders) SendReminders(ctx context.Context) (int, error) {
	f.calls++
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("no deadline")
	}
	return 2, f.err
}

type fakeSweeper struct{ calls int }

func (f *fakeSweeper) SweepExpired(context.Context) (int64, error) {
	f.calls++
	return 1, nil
}

func TestStart_RegistersConfiguredJobs(t *testing.T) {
	c, err := Start(Jobs{
		Reminders:          &fakeReminders{},
		ReminderSchedule:   "* * * * *",
		Offers:             &fakeSweeper{},
		OfferSweepSchedule: "@hourly",
	}, zap.NewNop())
	require.NoError(t, err)
	defer c.Stop()

	assert.Len(t, c.Entries(), 2)
}

func TestStart_SkipsDisabledJobs(t *testing.T) {
	c, err := Start(Jobs{Reminders: &fakeReminders{}, Offers: &fakeSweeper{}, ReminderSchedule: "* * * * *"}, zap.NewNop())
	require.NoError(t, err)
	defer c.Stop()

	assert.Len(t, c.Entries(), 1)
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	_, err := Start(Jobs{Reminders: &fakeReminders{}, ReminderSchedule: "every minute"}, zap.NewNop())
	require.Error(t, err)
}

func TestJobsRunWithDeadline(t *testing.T) {
	r := &fakeReminders{}
	sendReminders(r, zap.NewNop())
	assert.Equal(t, 1, r.calls)

	failing := &fakeReminders{err: errors.New("smtp down")}
	sendReminders(failing, zap.NewNop())
	assert.Equal(t, 1, failing.calls)

	s := &fakeSweeper{}
	sweepOffers(s, zap.NewNop())
	assert.Equal(t, 1, s.calls)
}
