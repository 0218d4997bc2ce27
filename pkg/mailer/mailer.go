package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"consultancy-cms/pkg/utils"

	"go.uber.org/zap"
)

// Dispatcher delivers verification codes. Implementations never return a
// delivery failure to the caller; they fall back to logging the code.
type Dispatcher interface {
	SendVerificationCode(ctx context.Context, to, code string, expiresAt time.Time) error
}

// NewDispatcher returns the SMTP dispatcher when every SMTP setting is
// present and the log dispatcher otherwise.
func NewDispatcher(config utils.EmailConfig, log *zap.Logger) Dispatcher {
	fallback := NewLogDispatcher(log)
	if !config.IsConfigured() {
		log.Warn("SMTP not configured, verification codes will be written to the log")
		return fallback
	}
	return NewSMTPDispatcher(config, fallback, log)
}

type logDispatcher struct {
	log *zap.Logger
}

func NewLogDispatcher(log *zap.Logger) Dispatcher {
	return &logDispatcher{log: log.With(zap.String("mailer", "log"))}
}

func (d *logDispatcher) SendVerificationCode(_ context.Context, to, code string, expiresAt time.Time) error {
	d.log.Info("Verification code issued",
		zap.String("to", to),
		zap.String("code", code),
		zap.Time("expires_at", expiresAt),
	)
	return nil
}

// sendTimeout bounds one SMTP delivery from dial to QUIT.
const sendTimeout = 10 * time.Second

type sendFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

type smtpDispatcher struct {
	host     string
	port     int
	from     string
	username string
	password string
	timeout  time.Duration
	send     sendFunc
	fallback Dispatcher
	log      *zap.Logger
}

func NewSMTPDispatcher(config utils.EmailConfig, fallback Dispatcher, log *zap.Logger) Dispatcher {
	d := &smtpDispatcher{
		host:     config.Host,
		port:     config.Port,
		from:     config.From,
		username: config.User,
		password: config.Password,
		timeout:  sendTimeout,
		fallback: fallback,
		log:      log.With(zap.String("mailer", "smtp")),
	}
	d.send = d.deliver
	return d
}

func (d *smtpDispatcher) SendVerificationCode(ctx context.Context, to, code string, expiresAt time.Time) error {
	msg := buildMessage(d.from, to, code, expiresAt)
	addr := d.host + ":" + strconv.Itoa(d.port)
	auth := smtp.PlainAuth("", d.username, d.password, d.host)

	if err := d.send(ctx, addr, auth, d.from, []string{to}, msg); err != nil {
		d.log.Warn("Failed to send verification email, falling back to log",
			zap.Error(err),
			zap.String("to", to),
		)
		return d.fallback.SendVerificationCode(ctx, to, code, expiresAt)
	}

	d.log.Info("Verification email sent", zap.String("to", to))
	return nil
}

func buildMessage(from, to, code string, expiresAt time.Time) []byte {
	minutes := int(time.Until(expiresAt).Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Your admin verification code\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Your verification code is %s.\r\n\r\n", code)
	fmt.Fprintf(&b, "It expires in %d minutes and can be used once.\r\n", minutes)
	b.WriteString("If you did not request this code you can ignore this message.\r\n")
	return []byte(b.String())
}
