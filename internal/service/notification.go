package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"loan4farm-api/internal/model"
)

// Welcome sequence pushed after login
var welcomeMessages = []string{
	"Namaste! Your Kisan Credit Card loan is active. Repay on time to keep the 7% interest rate.",
	"Weather alert: light rain expected in your village this week. Plan your irrigation.",
	"Mandi update: wheat prices are steady at ₹2,275/quintal. Good time to plan your sale.",
}

const reminderText = "AutoPay reminder: your KCC instalment will be debited on day %d of this month."

// ActiveLoanLister returns profiles that should get repayment reminders
type ActiveLoanLister interface {
	ListActiveLoans(ctx context.Context) ([]model.UserProfile, error)
}

type inbox struct {
	items  []model.Notification // newest first
	timers []*time.Timer
	gen    uint64 // bumped whenever pending timers are cancelled
}

// NotificationService keeps an in-memory inbox per profile
type NotificationService struct {
	mu      sync.Mutex
	inboxes map[uuid.UUID]*inbox
	nextID  int64
	delays  []time.Duration
	now     func() time.Time
	loans   ActiveLoanLister
	dueDay  int
	logger  *logrus.Logger
}

func NewNotificationService(loans ActiveLoanLister, delays []time.Duration, autoPayDay int, logger *logrus.Logger) *NotificationService {
	return &NotificationService{
		inboxes: make(map[uuid.UUID]*inbox),
		delays:  delays,
		now:     time.Now,
		loans:   loans,
		dueDay:  autoPayDay,
		logger:  logger,
	}
}

func (s *NotificationService) box(id uuid.UUID) *inbox {
	b, ok := s.inboxes[id]
	if !ok {
		b = &inbox{}
		s.inboxes[id] = b
	}
	return b
}

// Add pushes a message on top of the inbox
func (s *NotificationService) Add(profileID uuid.UUID, text string) model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.push(profileID, s.box(profileID), text)
}

// addScheduled delivers a timer message unless its inbox was cleared or
// rescheduled after the timer was armed
func (s *NotificationService) addScheduled(profileID uuid.UUID, b *inbox, gen uint64, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inboxes[profileID] != b || b.gen != gen {
		return
	}
	s.push(profileID, b, text)
}

func (s *NotificationService) push(profileID uuid.UUID, b *inbox, text string) model.Notification {
	now := s.now()
	s.nextID++
	n := model.Notification{
		ID:        s.nextID,
		Text:      text,
		Time:      now.Format("15:04"),
		CreatedAt: now,
	}
	b.items = append([]model.Notification{n}, b.items...)

	s.logger.WithFields(logrus.Fields{
		"profile_id":      profileID,
		"notification_id": n.ID,
	}).Debug("Notification added")
	return n
}

func (s *NotificationService) List(profileID uuid.UUID) model.NotificationList {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := model.NotificationList{Notifications: []model.Notification{}}
	b, ok := s.inboxes[profileID]
	if !ok {
		return list
	}
	list.Notifications = append(list.Notifications, b.items...)
	list.UnreadCount = unread(b.items)
	return list
}

func (s *NotificationService) UnreadCount(profileID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.inboxes[profileID]; ok {
		return unread(b.items)
	}
	return 0
}

func (s *NotificationService) MarkAllRead(profileID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.inboxes[profileID]; ok {
		for i := range b.items {
			b.items[i].Read = true
		}
	}
}

// Clear cancels pending messages and drops the inbox
func (s *NotificationService) Clear(profileID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.inboxes[profileID]; ok {
		stopAll(b.timers)
		b.gen++
		delete(s.inboxes, profileID)
	}
}

// ScheduleWelcome queues the welcome messages at the configured offsets.
// A repeated call replaces the pending sequence.
func (s *NotificationService) ScheduleWelcome(profileID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.box(profileID)
	stopAll(b.timers)
	b.timers = b.timers[:0]
	b.gen++
	gen := b.gen

	for i, d := range s.delays {
		if i >= len(welcomeMessages) {
			break
		}
		text := welcomeMessages[i]
		b.timers = append(b.timers, time.AfterFunc(d, func() { s.addScheduled(profileID, b, gen, text) }))
	}
}

// SendReminders adds the AutoPay reminder to every profile with an active loan
func (s *NotificationService) SendReminders(ctx context.Context) (int, error) {
	profiles, err := s.loans.ListActiveLoans(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list active loans for reminders")
		return 0, fmt.Errorf("failed to list active loans: %w", err)
	}

	text := fmt.Sprintf(reminderText, s.dueDay)
	for _, p := range profiles {
		s.Add(p.ID, text)
	}

	s.logger.WithField("count", len(profiles)).Info("AutoPay reminders sent")
	return len(profiles), nil
}

// Stop cancels every pending scheduled message
func (s *NotificationService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.inboxes {
		stopAll(b.timers)
		b.timers = nil
		b.gen++
	}
}

func unread(items []model.Notification) int {
	n := 0
	for _, it := range items {
		if !it.Read {
			n++
		}
	}
	return n
}

func stopAll(timers []*time.Timer) {
	for _, t := range timers {
		t.Stop()
	}
}
