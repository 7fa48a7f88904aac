package mailer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-intel/internal/errs"
)

type sent struct {
	from string
	to   []string
	msg  []byte
}

// fakeTransport fails the first failFirst sends with err.
type fakeTransport struct {
	sends     []sent
	failFirst int
	err       error
}

func (f *fakeTransport) Send(_ context.Context, from string, to []string, msg []byte) error {
	f.sends = append(f.sends, sent{from: from, to: to, msg: msg})
	if len(f.sends) <= f.failFirst {
		return f.err
	}
	return nil
}

var ist = time.FixedZone("IST", 19800)

func fixedNow() time.Time {
	return time.Date(2025, 3, 8, 5, 0, 0, 0, ist)
}

func newTestMailer(tr Transport) *Mailer {
	return New(tr, "bot@example.com", ist, WithClock(fixedNow), WithSenderName("Daily Intel"))
}

type part struct {
	contentType string
	filename    string
	body        string
}

func readParts(t *testing.T, raw []byte) (string, []part) {
	t.Helper()
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	require.NoError(t, err)
	subject, err := mr.Header.Subject()
	require.NoError(t, err)

	var parts []part
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		body, err := io.ReadAll(p.Body)
		require.NoError(t, err)

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			ct, _, _ := h.ContentType()
			parts = append(parts, part{contentType: ct, body: string(body)})
		case *mail.AttachmentHeader:
			ct, _, _ := h.ContentType()
			name, _ := h.Filename()
			parts = append(parts, part{contentType: ct, filename: name, body: string(body)})
		}
	}
	return subject, parts
}

func TestDeliverBuildsReportWithAttachment(t *testing.T) {
	tr := &fakeTransport{}
	m := newTestMailer(tr)

	ok := m.Deliver(context.Background(), Document{
		RunID:   "run-1",
		Subject: "Daily Intelligence Report - March 08, 2025",
		HTML:    []byte("<h1>Report</h1>"),
		PDF:     []byte("%PDF-1.3 fake"),
		PDFName: "report-2025-03-08.pdf",
	}, []string{"me@example.com"})

	require.True(t, ok)
	require.Len(t, tr.sends, 1)
	assert.Equal(t, "bot@example.com", tr.sends[0].from)
	assert.Equal(t, []string{"me@example.com"}, tr.sends[0].to)

	subject, parts := readParts(t, tr.sends[0].msg)
	assert.Equal(t, "Daily Intelligence Report - March 08, 2025", subject)
	require.Len(t, parts, 3)
	assert.Equal(t, "text/plain", parts[0].contentType)
	assert.Equal(t, "text/html", parts[1].contentType)
	assert.Equal(t, "<h1>Report</h1>", parts[1].body)
	assert.Equal(t, "application/pdf", parts[2].contentType)
	assert.Equal(t, "report-2025-03-08.pdf", parts[2].filename)
	assert.Equal(t, "%PDF-1.3 fake", parts[2].body)

	mr, err := mail.CreateReader(bytes.NewReader(tr.sends[0].msg))
	require.NoError(t, err)
	id, err := mr.Header.MessageID()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(id, "@example.com"), id)
}

func TestDeliverFailureSendsExactlyOneNotification(t *testing.T) {
	loginErr := errs.Delivery("smtp login", errors.New("535 5.7.8 Username and Password not accepted"))
	tr := &fakeTransport{failFirst: 1, err: loginErr}
	m := newTestMailer(tr)

	ok := m.Deliver(context.Background(), Document{
		RunID:   "run-2",
		Subject: "Daily Intelligence Report - March 08, 2025",
		HTML:    []byte("<h1>Report</h1>"),
		PDF:     []byte("%PDF-1.3 fake"),
	}, []string{"me@example.com"})

	assert.False(t, ok)
	require.Len(t, tr.sends, 2, "one report attempt and one notification")

	notice := tr.sends[1].msg
	assert.NotContains(t, string(notice), "application/pdf")
	assert.NotContains(t, string(notice), "multipart")

	mr, err := mail.CreateReader(bytes.NewReader(notice))
	require.NoError(t, err)
	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Delivery Error - 2025-03-08 05:00 IST", subject)

	p, err := mr.NextPart()
	require.NoError(t, err)
	body, err := io.ReadAll(p.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Run:     run-2")
	assert.Contains(t, string(body), "Username and Password not accepted")
}

func TestDeliverNotificationFailureStillReturnsFalse(t *testing.T) {
	tr := &fakeTransport{failFirst: 2, err: errors.New("connection refused")}
	m := newTestMailer(tr)

	ok := m.Deliver(context.Background(), Document{Subject: "s", HTML: []byte("x")}, []string{"me@example.com"})

	assert.False(t, ok)
	assert.Len(t, tr.sends, 2)
}

func TestSendWithoutRecipients(t *testing.T) {
	tr := &fakeTransport{}
	err := newTestMailer(tr).Send(context.Background(), Document{Subject: "s"}, nil)

	assert.True(t, errs.Is(err, errs.KindDelivery))
	assert.Empty(t, tr.sends)
}

func TestSendTest(t *testing.T) {
	tr := &fakeTransport{}
	err := newTestMailer(tr).SendTest(context.Background(), []string{"a@example.com", "b@example.com"}, "smtp.example.com:587")
	require.NoError(t, err)
	require.Len(t, tr.sends, 1)

	subject, parts := readParts(t, tr.sends[0].msg)
	assert.Equal(t, "Test Email - 2025-03-08 05:00 IST", subject)
	require.Len(t, parts, 1)
	assert.Contains(t, parts[0].body, "Server: smtp.example.com:587")
}

// serveNoTLS speaks just enough SMTP to refuse STARTTLS.
func serveNoTLS(t *testing.T) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		tp := textproto.NewConn(conn)
		_ = tp.PrintfLine("220 localhost ESMTP")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			switch {
			case strings.HasPrefix(line, "EHLO"):
				_ = tp.PrintfLine("250-localhost")
				_ = tp.PrintfLine("250 AUTH PLAIN")
			case line == "QUIT":
				_ = tp.PrintfLine("221 bye")
				return
			default:
				_ = tp.PrintfLine("502 not implemented")
			}
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port
}

func TestSMTPTransportRequiresStartTLS(t *testing.T) {
	host, port := serveNoTLS(t)
	tr := &SMTPTransport{Host: host, Port: port, Username: "u", Password: "p", Timeout: 2 * time.Second}

	err := tr.Send(context.Background(), "bot@example.com", []string{"me@example.com"}, []byte("Subject: x\r\n\r\nx"))

	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindDelivery))
	assert.Contains(t, err.Error(), "STARTTLS")
}

func TestSMTPTransportConnectFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	tr := &SMTPTransport{Host: "127.0.0.1", Port: port, Timeout: time.Second}
	err = tr.Send(context.Background(), "bot@example.com", []string{"me@example.com"}, []byte("x"))

	assert.True(t, errs.Is(err, errs.KindDelivery))
}
