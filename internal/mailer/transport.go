package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"daily-intel/internal/errs"
)

// Transport hands a finished RFC 5322 message to a mail server.
type Transport interface {
	Send(ctx context.Context, from string, to []string, msg []byte) error
}

// SMTPTransport submits over STARTTLS with PLAIN auth, the way Gmail's
// port 587 expects.
type SMTPTransport struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
	// TLSConfig overrides the default verification, mostly for tests.
	TLSConfig *tls.Config
}

var _ Transport = (*SMTPTransport)(nil)

func (t *SMTPTransport) Send(ctx context.Context, from string, to []string, msg []byte) error {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	addr := net.JoinHostPort(t.Host, strconv.Itoa(t.Port))

	dialer := &net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return errs.Delivery("connect to "+addr, err)
	}
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	client, err := smtp.NewClient(conn, t.Host)
	if err != nil {
		conn.Close()
		return errs.Delivery("smtp greeting", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); !ok {
		return errs.Delivery("smtp handshake", fmt.Errorf("%s does not offer STARTTLS", addr))
	}
	tlsConfig := t.TLSConfig
	if tlsConfig == nil {
		tlsConfig = &tls.Config{ServerName: t.Host}
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		return errs.Delivery("start tls", err)
	}

	if err := client.Auth(smtp.PlainAuth("", t.Username, t.Password, t.Host)); err != nil {
		return errs.Delivery("smtp login", err)
	}
	if err := client.Mail(from); err != nil {
		return errs.Delivery("mail from", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return errs.Delivery("rcpt to "+rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return errs.Delivery("start data", err)
	}
	if _, err := w.Write(msg); err != nil {
		return errs.Delivery("write message", err)
	}
	if err := w.Close(); err != nil {
		return errs.Delivery("finish data", err)
	}
	if err := client.Quit(); err != nil {
		return errs.Delivery("quit", err)
	}
	return nil
}
