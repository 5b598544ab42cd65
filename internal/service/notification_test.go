package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"loan4farm-api/internal/model"
)

type stubLoans struct {
	profiles []model.UserProfile
	err      error
}

func (s stubLoans) ListActiveLoans(context.Context) ([]model.UserProfile, error) {
	return s.profiles, s.err
}

func TestNotifications_NewestFirstAndUnread(t *testing.T) {
	svc := NewNotificationService(stubLoans{}, nil, 5, testLogger())
	svc.now = func() time.Time { return time.Date(2024, 11, 5, 9, 7, 0, 0, time.UTC) }
	id := uuid.New()

	first := svc.Add(id, "first")
	second := svc.Add(id, "second")
	assert.Equal(t, "09:07", first.Time)
	assert.Greater(t, second.ID, first.ID)

	list := svc.List(id)
	require.Len(t, list.Notifications, 2)
	assert.Equal(t, "second", list.Notifications[0].Text)
	assert.Equal(t, 2, list.UnreadCount)

	svc.MarkAllRead(id)
	assert.Equal(t, 0, svc.UnreadCount(id))

	svc.Add(id, "third")
	assert.Equal(t, 1, svc.UnreadCount(id))
}

func TestNotifications_InboxesAreIsolated(t *testing.T) {
	svc := NewNotificationService(stubLoans{}, nil, 5, testLogger())
	a, b := uuid.New(), uuid.New()

	svc.Add(a, "hello")
	assert.Equal(t, 1, svc.UnreadCount(a))
	assert.Equal(t, 0, svc.UnreadCount(b))
	assert.NotNil(t, svc.List(b).Notifications)
}

func TestNotifications_ScheduleWelcome(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	delays := []time.Duration{5 * time.Millisecond, 10 * time.Millisecond, 15 * time.Millisecond}
	svc := NewNotificationService(stubLoans{}, delays, 5, testLogger())
	id := uuid.New()

	svc.ScheduleWelcome(id)

	assert.Eventually(t, func() bool { return svc.UnreadCount(id) == 3 }, time.Second, 5*time.Millisecond)
	list := svc.List(id)
	assert.Equal(t, welcomeMessages[2], list.Notifications[0].Text)
	assert.Equal(t, welcomeMessages[0], list.Notifications[2].Text)
}

func TestNotifications_ClearCancelsPending(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	svc := NewNotificationService(stubLoans{}, []time.Duration{50 * time.Millisecond}, 5, testLogger())
	id := uuid.New()

	svc.ScheduleWelcome(id)
	svc.Clear(id)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, svc.UnreadCount(id))
}

func TestNotifications_LateTimerAfterClearIsDropped(t *testing.T) {
	svc := NewNotificationService(stubLoans{}, []time.Duration{time.Hour}, 5, testLogger())
	id := uuid.New()

	svc.ScheduleWelcome(id)
	svc.mu.Lock()
	b := svc.inboxes[id]
	gen := b.gen
	svc.mu.Unlock()

	svc.Clear(id)
	// a callback that was already blocked on the mutex when Clear ran
	svc.addScheduled(id, b, gen, welcomeMessages[0])

	svc.mu.Lock()
	_, exists := svc.inboxes[id]
	svc.mu.Unlock()
	assert.False(t, exists)
	assert.Equal(t, 0, svc.UnreadCount(id))
}

func TestNotifications_RescheduleDropsStaleTimers(t *testing.T) {
	svc := NewNotificationService(stubLoans{}, []time.Duration{time.Hour}, 5, testLogger())
	id := uuid.New()

	svc.ScheduleWelcome(id)
	svc.mu.Lock()
	b := svc.inboxes[id]
	stale := b.gen
	svc.mu.Unlock()

	svc.ScheduleWelcome(id)
	svc.addScheduled(id, b, stale, welcomeMessages[0])
	assert.Equal(t, 0, svc.UnreadCount(id))

	svc.Stop()
}

func TestNotifications_StopCancelsEverything(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	svc := NewNotificationService(stubLoans{}, []time.Duration{20 * time.Millisecond, 30 * time.Millisecond}, 5, testLogger())
	a, b := uuid.New(), uuid.New()

	svc.ScheduleWelcome(a)
	svc.ScheduleWelcome(b)
	svc.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, svc.UnreadCount(a))
	assert.Equal(t, 0, svc.UnreadCount(b))
}

func TestNotifications_SendReminders(t *testing.T) {
	p1, p2 := model.UserProfile{ID: uuid.New()}, model.UserProfile{ID: uuid.New()}
	svc := NewNotificationService(stubLoans{profiles: []model.UserProfile{p1, p2}}, nil, 5, testLogger())

	n, err := svc.SendReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, svc.List(p1.ID).Notifications[0].Text, "day 5")
	assert.Equal(t, 1, svc.UnreadCount(p2.ID))
}

func TestNotifications_SendRemindersError(t *testing.T) {
	svc := NewNotificationService(stubLoans{err: errors.New("db down")}, nil, 5, testLogger())

	_, err := svc.SendReminders(context.Background())
	assert.Error(t, err)
}
