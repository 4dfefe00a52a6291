package mailer

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// Mailer sends transactional mail.
type Mailer interface {
	SendPasswordRecovery(ctx context.Context, to, token string) error
}

// SMTPMailer delivers mail over plain SMTP. With an empty address it
// degrades to logging the message, which keeps local development working
// without a mail server.
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTPMailer creates a mailer for the given SMTP endpoint. user and
// password may be empty for unauthenticated relays.
func NewSMTPMailer(addr, from, user, password string) *SMTPMailer {
	var auth smtp.Auth
	if user != "" {
		host := addr
		if i := strings.IndexByte(addr, ':'); i >= 0 {
			host = addr[:i]
		}
		auth = smtp.PlainAuth("", user, password, host)
	}
	return &SMTPMailer{addr: addr, from: from, auth: auth}
}

// SendPasswordRecovery emails a recovery token to the user.
func (m *SMTPMailer) SendPasswordRecovery(ctx context.Context, to, token string) error {
	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Password recovery\r\n\r\n"+
			"Use this token to reset your password: %s\r\n"+
			"The token expires in one hour.\r\n",
		m.from, to, token,
	)

	if m.addr == "" {
		log.Printf("mailer: SMTP not configured, recovery token for %s: %s", to, token)
		return nil
	}

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(body)); err != nil {
		return fmt.Errorf("send recovery mail: %w", err)
	}
	return nil
}
