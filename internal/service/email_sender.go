package service

import (
	"crypto/tls"
	"fmt"
	"time"

	"github.com/go-mail/mail/v2"
	"github.com/sirupsen/logrus"

	"loan4farm-api/internal/config"
	"loan4farm-api/internal/locale"
)

// Mailer sends the disbursement confirmation
type Mailer interface {
	SendDisbursementNotification(email, name string, amount, emi float64, shop string) error
}

var _ Mailer = (*EmailSender)(nil)

type EmailSender struct {
	dialer  *mail.Dialer
	from    string
	logger  *logrus.Logger
	enabled bool
}

func NewEmailSender(cfg config.SMTPConfig, logger *logrus.Logger) *EmailSender {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}
	return &EmailSender{
		dialer:  d,
		from:    cfg.User,
		logger:  logger,
		enabled: cfg.Enabled,
	}
}

func (es *EmailSender) SendDisbursementNotification(email, name string, amount, emi float64, shop string) error {
	if !es.enabled {
		es.logger.Debug("Email notifications are disabled")
		return nil
	}

	subject := "Loan4Farm: your KCC loan is disbursed"
	content := fmt.Sprintf(`
		<h1>Namaste %s,</h1>
		<p>Your loan of <strong>%s</strong> has been disbursed.</p>
		<p>Transferred to: <strong>%s</strong></p>
		<p>Monthly AutoPay EMI: <strong>%s</strong></p>
		<p>Date: <strong>%s</strong></p>
		<small>This is an automated message, please do not reply</small>
	`, name, locale.Rupees(amount), shopLabel(shop), locale.Rupees(emi), time.Now().Format("02.01.2006 15:04"))

	return es.sendEmail(email, subject, content)
}

func (es *EmailSender) sendEmail(to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", es.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := es.dialer.DialAndSend(m); err != nil {
		es.logger.WithError(err).Error("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	es.logger.WithField("to", to).Info("Email sent")
	return nil
}
