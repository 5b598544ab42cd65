package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"loan4farm-api/internal/locale"
	"loan4farm-api/internal/metrics"
	"loan4farm-api/internal/model"
	"loan4farm-api/internal/workflow"
)

const workflowStoreSize = 10000

// LoanTerms - parameters of the simulated KCC disbursement
type LoanTerms struct {
	InterestRate     float64 // annual, %
	TermMonths       int
	AutoPayDay       int
	InsurancePremium float64
	EmergencyRelief  float64
	ScanDelay        time.Duration
	SessionTTL       time.Duration
}

var shopLabels = map[string]string{
	model.ShopInputDealer:  "Input Dealer",
	model.ShopMachineryHub: "Machinery Hub",
	model.ShopBankAccount:  "Bank Account",
}

func shopLabel(shop string) string {
	if l, ok := shopLabels[shop]; ok {
		return l
	}
	return shop
}

// wizardSession - running loan or emergency flow owned by one profile
type wizardSession struct {
	mu        sync.Mutex
	id        uuid.UUID
	profileID uuid.UUID
	kind      model.WorkflowKind
	machine   *workflow.Machine
	amount    float64
	shop      string
	signed    bool
	emi       float64
	message   string
	settled   bool
	startedAt time.Time
}

// LoanWorkflowService drives the disbursement wizard and the emergency relief flow
type LoanWorkflowService struct {
	sessions      *expirable.LRU[uuid.UUID, *wizardSession]
	profiles      *ProfileService
	notifications *NotificationService
	mailer        Mailer
	terms         LoanTerms
	now           func() time.Time
	logger        *logrus.Logger
}

func NewLoanWorkflowService(profiles *ProfileService, notifications *NotificationService, mailer Mailer, terms LoanTerms, logger *logrus.Logger) *LoanWorkflowService {
	return &LoanWorkflowService{
		sessions:      expirable.NewLRU[uuid.UUID, *wizardSession](workflowStoreSize, nil, terms.SessionTTL),
		profiles:      profiles,
		notifications: notifications,
		mailer:        mailer,
		terms:         terms,
		now:           time.Now,
		logger:        logger,
	}
}

// StartLoan opens the disbursement wizard at the video KYC step
func (s *LoanWorkflowService) StartLoan(ctx context.Context, profileID uuid.UUID, amount float64) (*model.WorkflowSession, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if _, err := s.profiles.Get(ctx, profileID); err != nil {
		return nil, err
	}

	emi := math.Round(CalculateMonthlyPayment(amount, s.terms.TermMonths, s.terms.InterestRate))
	sess := s.start(profileID, model.WorkflowLoan, workflow.Loan())
	sess.amount = amount
	sess.emi = emi

	s.logger.WithFields(logrus.Fields{
		"profile_id":  profileID,
		"session_id":  sess.id,
		"amount":      amount,
		"monthly_emi": emi,
	}).Info("Loan wizard started")

	return s.snapshot(sess), nil
}

// StartEmergency opens the photo based instant relief flow
func (s *LoanWorkflowService) StartEmergency(ctx context.Context, profileID uuid.UUID) (*model.WorkflowSession, error) {
	if _, err := s.profiles.Get(ctx, profileID); err != nil {
		return nil, err
	}

	sess := s.start(profileID, model.WorkflowEmergency, workflow.Emergency(s.terms.ScanDelay))
	sess.amount = s.terms.EmergencyRelief

	s.logger.WithFields(logrus.Fields{
		"profile_id": profileID,
		"session_id": sess.id,
	}).Info("Emergency relief started")

	return s.snapshot(sess), nil
}

func (s *LoanWorkflowService) start(profileID uuid.UUID, kind model.WorkflowKind, def *workflow.Definition) *wizardSession {
	sess := &wizardSession{
		id:        uuid.New(),
		profileID: profileID,
		kind:      kind,
		machine:   workflow.NewMachine(def, s.now),
		startedAt: s.now(),
	}
	s.sessions.Add(sess.id, sess)
	metrics.WorkflowTransitions.WithLabelValues(string(kind), string(def.Initial)).Inc()
	return sess
}

func (s *LoanWorkflowService) lookup(profileID, sessionID uuid.UUID) (*wizardSession, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok || sess.profileID != profileID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Get returns the session, applying elapsed timers and their effects
func (s *LoanWorkflowService) Get(ctx context.Context, profileID, sessionID uuid.UUID) (*model.WorkflowSession, error) {
	sess, err := s.lookup(profileID, sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	s.settle(ctx, sess)
	return s.snapshot(sess), nil
}

// Fire applies a user action to the session
func (s *LoanWorkflowService) Fire(ctx context.Context, profileID, sessionID uuid.UUID, input model.WorkflowEventInput) (*model.WorkflowSession, error) {
	sess, err := s.lookup(profileID, sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	event := workflow.Event(strings.TrimSpace(input.Event))
	log := s.logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"kind":       sess.kind,
		"event":      event,
	})

	// guards run only when the event is possible at all
	if sess.machine.Can(event) {
		switch event {
		case workflow.EventSign:
			if strings.TrimSpace(input.Signature) == "" {
				return nil, ErrSignatureRequired
			}
		case workflow.EventSelectShop:
			if _, ok := shopLabels[input.Shop]; !ok {
				return nil, ErrShopRequired
			}
		}
	}

	state, err := sess.machine.Fire(event)
	if err != nil {
		log.WithField("state", sess.machine.State()).Warn("Rejected workflow event")
		return nil, err
	}

	switch event {
	case workflow.EventSign:
		sess.signed = true
	case workflow.EventSelectShop:
		sess.shop = input.Shop
	}

	metrics.WorkflowTransitions.WithLabelValues(string(sess.kind), string(state)).Inc()
	log.WithField("state", state).Info("Workflow advanced")

	s.settle(ctx, sess)
	// refresh the idle expiry
	s.sessions.Add(sess.id, sess)
	return s.snapshot(sess), nil
}

// settle runs the completion effects once the flow reached its terminal state
func (s *LoanWorkflowService) settle(ctx context.Context, sess *wizardSession) {
	if sess.settled || !sess.machine.Done() {
		return
	}
	sess.settled = true

	log := s.logger.WithFields(logrus.Fields{
		"profile_id": sess.profileID,
		"session_id": sess.id,
	})

	switch sess.kind {
	case model.WorkflowLoan:
		sess.message = fmt.Sprintf("Loan of %s disbursed to %s. AutoPay EMI of %s will be debited on day %d every month.",
			locale.Rupees(sess.amount), shopLabel(sess.shop), locale.Rupees(sess.emi), s.terms.AutoPayDay)

		if err := s.profiles.SetLoan(ctx, sess.profileID, sess.amount); err != nil {
			log.WithError(err).Error("Failed to record disbursed loan")
		}
		s.notifications.Add(sess.profileID, sess.message)
		s.sendDisbursementEmail(ctx, sess, log)

	case model.WorkflowEmergency:
		sess.message = fmt.Sprintf("Emergency relief of %s approved. Funds credited to your bank account.",
			locale.Rupees(sess.amount))
		s.notifications.Add(sess.profileID, sess.message)
	}

	metrics.WorkflowTransitions.WithLabelValues(string(sess.kind), string(sess.machine.State())).Inc()
	log.Info("Workflow completed")
}

func (s *LoanWorkflowService) sendDisbursementEmail(ctx context.Context, sess *wizardSession, log *logrus.Entry) {
	if s.mailer == nil {
		return
	}
	profile, err := s.profiles.Get(ctx, sess.profileID)
	if err != nil {
		log.WithError(err).Warn("Failed to load profile for disbursement email")
		return
	}
	if profile.Email == "" {
		return
	}
	if err := s.mailer.SendDisbursementNotification(profile.Email, profile.Name, sess.amount, sess.emi, sess.shop); err != nil {
		log.WithError(err).Warn("Disbursement email not sent")
	}
}

func (s *LoanWorkflowService) snapshot(sess *wizardSession) *model.WorkflowSession {
	hist := sess.machine.History()
	steps := make([]model.WorkflowStep, 0, len(hist))
	for _, h := range hist {
		steps = append(steps, model.WorkflowStep{State: string(h.State), EnteredAt: h.EnteredAt})
	}

	out := &model.WorkflowSession{
		ID:      sess.id,
		Kind:    sess.kind,
		State:   string(sess.machine.State()),
		Done:    sess.machine.Done(),
		Amount:  sess.amount,
		Shop:    sess.shop,
		Signed:  sess.signed,
		Message: sess.message,
		History: steps,
	}
	if sess.kind == model.WorkflowLoan {
		out.MonthlyEMI = sess.emi
		out.AutoPayDay = s.terms.AutoPayDay
		out.InsurancePremium = s.terms.InsurancePremium
		out.Schedule = RepaymentSchedule(sess.amount, s.terms.TermMonths, s.terms.InterestRate, sess.startedAt, s.terms.AutoPayDay)
	}
	return out
}
