package local

import (
	"context"
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"

	"github.com/dropDatabas3/idpgate/internal/config"
	"github.com/dropDatabas3/idpgate/internal/observability/logger"
)

// CodeSender entrega el código de confirmación generado en SignUp.
type CodeSender interface {
	SendCode(ctx context.Context, email, username, code string) error
}

// LogSender escribe el código en el log. Sólo para desarrollo.
type LogSender struct{}

func (LogSender) SendCode(ctx context.Context, email, username, code string) error {
	logger.From(ctx).Info("confirmation code issued",
		logger.Component("idp.local.sender"),
		logger.Username(username),
		logger.String("email", email),
		logger.String("code", code),
	)
	return nil
}

// SMTPSender envía el código por mail.
type SMTPSender struct {
	Host               string
	Port               int
	From               string
	User               string
	Pass               string
	TLSMode            string // "auto" | "starttls" | "ssl" | "none"
	InsecureSkipVerify bool
}

func NewSMTPSender(cfg config.Config) *SMTPSender {
	return &SMTPSender{
		Host:               cfg.SMTP.Host,
		Port:               cfg.SMTP.Port,
		From:               cfg.SMTP.From,
		User:               cfg.SMTP.Username,
		Pass:               cfg.SMTP.Password.Value(),
		TLSMode:            cfg.SMTP.TLS,
		InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
	}
}

func (s *SMTPSender) message(email, username, code string) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your verification code")
	m.SetBody("text/plain", fmt.Sprintf("Hi %s,\n\nYour verification code is %s.\n", username, code))
	m.AddAlternative("text/html", fmt.Sprintf("<p>Hi %s,</p><p>Your verification code is <b>%s</b>.</p>", username, code))
	return m
}

func (s *SMTPSender) dialer() *mail.Dialer {
	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{
		ServerName:         s.Host,
		InsecureSkipVerify: s.InsecureSkipVerify, // solo dev
	}
	switch s.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	default:
		// auto/starttls: go-mail negocia STARTTLS si el server lo ofrece
	}
	return d
}

func (s *SMTPSender) SendCode(ctx context.Context, email, username, code string) error {
	log := logger.From(ctx).With(
		logger.Component("idp.local.sender"),
		logger.String("host", s.Host),
		logger.Int("port", s.Port),
	)

	if err := s.dialer().DialAndSend(s.message(email, username, code)); err != nil {
		log.Error("smtp send failed", logger.Err(err))
		return fmt.Errorf("smtp send: %w", err)
	}
	log.Info("confirmation code sent", logger.Username(username))
	return nil
}
