package mailer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"

	"daily-intel/internal/errs"
	"daily-intel/internal/logger"
)

// Document is a rendered report ready to send. PDF is optional.
type Document struct {
	RunID   string
	Subject string
	HTML    []byte
	Text    string
	PDF     []byte
	PDFName string
}

// Failure describes why a run did not deliver its report.
type Failure struct {
	RunID   string
	Type    string
	Message string
}

type Mailer struct {
	transport Transport
	from      string
	fromName  string
	loc       *time.Location
	now       func() time.Time
}

type Option func(*Mailer)

func WithClock(now func() time.Time) Option {
	return func(m *Mailer) {
		m.now = now
	}
}

func WithSenderName(name string) Option {
	return func(m *Mailer) {
		m.fromName = name
	}
}

func New(transport Transport, from string, loc *time.Location, opts ...Option) *Mailer {
	m := &Mailer{
		transport: transport,
		from:      from,
		loc:       loc,
		now:       time.Now,
	}
	if m.loc == nil {
		m.loc = time.UTC
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Deliver sends the report. On any failure it makes one separate attempt to
// send a plain-text failure notice and returns false.
func (m *Mailer) Deliver(ctx context.Context, doc Document, recipients []string) bool {
	err := m.Send(ctx, doc, recipients)
	if err == nil {
		logger.Delivery(ctx, strings.Join(recipients, ","), true, "run_id", doc.RunID, "pdf_bytes", len(doc.PDF))
		return true
	}

	logger.ErrorWithErr(ctx, "Report delivery failed", err, "run_id", doc.RunID)
	logger.Delivery(ctx, strings.Join(recipients, ","), false, "run_id", doc.RunID)

	if nerr := m.Notify(ctx, recipients, Failure{
		RunID:   doc.RunID,
		Type:    "Delivery Error",
		Message: err.Error(),
	}); nerr != nil {
		logger.ErrorWithErr(ctx, "Failure notification not sent", nerr, "run_id", doc.RunID)
	}
	return false
}

// Send builds and submits the report message without any notification
// handling.
func (m *Mailer) Send(ctx context.Context, doc Document, recipients []string) error {
	if len(recipients) == 0 {
		return errs.Delivery("send report", fmt.Errorf("no recipients"))
	}
	msg, err := m.buildReport(doc, recipients)
	if err != nil {
		return errs.Delivery("build report message", err)
	}
	return m.transport.Send(ctx, m.from, recipients, msg)
}

// Notify sends a short plain-text message with no attachment.
func (m *Mailer) Notify(ctx context.Context, recipients []string, f Failure) error {
	now := m.now().In(m.loc)
	if f.Type == "" {
		f.Type = "Report Generation Error"
	}

	var body strings.Builder
	fmt.Fprintf(&body, "The daily intelligence report could not be delivered.\n\n")
	fmt.Fprintf(&body, "Time:    %s\n", now.Format("Monday, January 02, 2006 at 03:04 PM MST"))
	fmt.Fprintf(&body, "Type:    %s\n", f.Type)
	if f.RunID != "" {
		fmt.Fprintf(&body, "Run:     %s\n", f.RunID)
	}
	fmt.Fprintf(&body, "Message: %s\n\n", f.Message)
	body.WriteString("The next scheduled run will try again. Check the run logs for details.\n")

	subject := fmt.Sprintf("%s - %s", f.Type, now.Format("2006-01-02 15:04 MST"))
	msg, err := m.buildPlain(subject, body.String(), recipients)
	if err != nil {
		return errs.Delivery("build notification", err)
	}
	return m.transport.Send(ctx, m.from, recipients, msg)
}

// SendTest checks the credentials end to end with a small message.
func (m *Mailer) SendTest(ctx context.Context, recipients []string, server string) error {
	now := m.now().In(m.loc)
	body := fmt.Sprintf("Email configuration test successful.\n\nSent: %s\nFrom: %s\nTo:   %s\nServer: %s\n",
		now.Format("Monday, January 02, 2006 at 03:04 PM MST"), m.from, strings.Join(recipients, ", "), server)

	msg, err := m.buildPlain("Test Email - "+now.Format("2006-01-02 15:04 MST"), body, recipients)
	if err != nil {
		return errs.Delivery("build test message", err)
	}
	return m.transport.Send(ctx, m.from, recipients, msg)
}

func (m *Mailer) header(subject string, recipients []string) mail.Header {
	var h mail.Header
	h.SetDate(m.now())
	h.SetSubject(subject)
	h.SetAddressList("From", []*mail.Address{{Name: m.fromName, Address: m.from}})
	to := make([]*mail.Address, 0, len(recipients))
	for _, r := range recipients {
		to = append(to, &mail.Address{Address: r})
	}
	h.SetAddressList("To", to)
	h.SetMessageID(uuid.NewString() + "@" + domainOf(m.from))
	return h
}

// buildReport lays out multipart/mixed with an alternative text/html body
// and the PDF attached when present.
func (m *Mailer) buildReport(doc Document, recipients []string) ([]byte, error) {
	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, m.header(doc.Subject, recipients))
	if err != nil {
		return nil, err
	}

	iw, err := mw.CreateInline()
	if err != nil {
		return nil, err
	}
	text := doc.Text
	if text == "" {
		text = doc.Subject + "\n\nOpen this message in an HTML capable client to read the report."
	}
	if err := writeInline(iw, "text/plain", []byte(text)); err != nil {
		return nil, err
	}
	if len(doc.HTML) > 0 {
		if err := writeInline(iw, "text/html", doc.HTML); err != nil {
			return nil, err
		}
	}
	if err := iw.Close(); err != nil {
		return nil, err
	}

	if len(doc.PDF) > 0 {
		var ah mail.AttachmentHeader
		ah.Set("Content-Type", "application/pdf")
		ah.Set("Content-Transfer-Encoding", "base64")
		name := doc.PDFName
		if name == "" {
			name = "report.pdf"
		}
		ah.SetFilename(name)
		w, err := mw.CreateAttachment(ah)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(doc.PDF); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *Mailer) buildPlain(subject, body string, recipients []string) ([]byte, error) {
	h := m.header(subject, recipients)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "quoted-printable")

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, body); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeInline(iw *mail.InlineWriter, contentType string, body []byte) error {
	var h mail.InlineHeader
	h.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "quoted-printable")
	w, err := iw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	return w.Close()
}

func domainOf(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "localhost"
}
