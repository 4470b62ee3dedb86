package mail

import (
	"crypto/tls"
	"math"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/diedornot/lifecheck/pkg/config"
	"github.com/diedornot/lifecheck/pkg/metrics"
)

// Sender delivers a single message to one or more recipients. Each call is
// fire-and-forget: success means the SMTP server accepted the message,
// nothing more.
type Sender interface {
	Send(receivers []string, subject, body string) error
	GetHost() string
	GetPort() int
}

type sender struct {
	dialer         *gomail.Dialer
	senderAddress  string
	senderName     string
	retryCount     int
	retryBackoffMs int
	log            *zap.SugaredLogger
}

// NewSender builds an SMTP sender from the mail configuration. Transport
// retries are off unless configured; the escalation pipeline relies on the
// next scheduled scan, not on resending.
func NewSender(cfg config.Config, log *zap.SugaredLogger) Sender {
	log.Infow("Initializing mail sender",
		"host", cfg.Mail.Host, "port", cfg.Mail.Port, "user", cfg.Mail.User)
	d := gomail.NewDialer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password)
	if cfg.Mail.InsecureSkipVerify {
		log.Warn("InsecureSkipVerify is enabled for mail TLS connection")
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	senderAddr := cfg.Mail.SenderAddress
	if senderAddr == "" {
		senderAddr = "noreply@diedornot.app"
	}
	senderName := cfg.Mail.SenderName
	if senderName == "" {
		senderName = cfg.BrandingName
	}

	retryBackoffMs := cfg.Mail.RetryBackoffMs
	if retryBackoffMs <= 0 {
		retryBackoffMs = 100
	}

	return &sender{
		dialer:         d,
		senderAddress:  senderAddr,
		senderName:     senderName,
		retryCount:     cfg.Mail.RetryCount,
		retryBackoffMs: retryBackoffMs,
		log:            log.Named("mail"),
	}
}

func (s *sender) Send(receivers []string, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", s.senderAddress, s.senderName)
	msg.SetHeader("To", receivers...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	var lastErr error
	backoffMs := s.retryBackoffMs

	for attempt := 0; attempt <= s.retryCount; attempt++ {
		err := s.dialer.DialAndSend(msg)
		if err == nil {
			s.log.Debugw("Mail sent", "receivers", len(receivers), "attempt", attempt+1)
			metrics.MailSendSuccess.WithLabelValues(s.GetHost()).Inc()
			return nil
		}
		lastErr = err
		if attempt < s.retryCount {
			s.log.Warnw("Mail send attempt failed, retrying",
				"attempt", attempt+1, "backoffMs", backoffMs, "error", err)
			time.Sleep(time.Duration(backoffMs) * time.Millisecond)
			backoffMs = int(math.Min(float64(backoffMs)*2, 32000))
		}
	}

	s.log.Errorw("Failed to send mail", "attempts", s.retryCount+1, "error", lastErr)
	metrics.MailSendFailure.WithLabelValues(s.GetHost()).Inc()
	return lastErr
}

func (s *sender) GetHost() string {
	return s.dialer.Host
}

func (s *sender) GetPort() int {
	return s.dialer.Port
}
