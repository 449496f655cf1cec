package notification

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSMTPNotifierBuildsMessage(t *testing.T) {
	d := &fakeDialer{}
	n := &SMTPNotifier{from: "noreply@app.com", dialer: d}

	err := n.Send(context.Background(), Message{Kind: KindWelcome, Destination: "jane@example.com", Subject: "Greetings", Body: "<p>hi</p>"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(d.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(d.sent))
	}
	if got := d.sent[0].GetHeader("To"); len(got) != 1 || got[0] != "jane@example.com" {
		t.Fatalf("unexpected To header %v", got)
	}
	if got := d.sent[0].GetHeader("Subject"); got[0] != "Greetings" {
		t.Fatalf("unexpected subject %v", got)
	}
}

func TestSMTPNotifierWrapsErrors(t *testing.T) {
	boom := errors.New("dial failed")
	n := &SMTPNotifier{from: "noreply@app.com", dialer: &fakeDialer{err: boom}}
	if err := n.Send(context.Background(), Message{Destination: "x@y.z"}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped dial error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.Send(ctx, Message{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestTemplatesEmbedLinks(t *testing.T) {
	tmpl := NewTemplates("https://api.app.com")

	body, err := tmpl.ResetPassword("Jane", "u-1", "tok.en", "10 minutes")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(body, "https://api.app.com/reset-password?") || !strings.Contains(body, "token=tok.en") || !strings.Contains(body, "user=u-1") {
		t.Fatalf("reset link missing: %s", body)
	}

	body, err = tmpl.VerifyEmail("", "u-1", "abc", "10 minutes")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(body, "Hello there") || !strings.Contains(body, "/api/v1/auth/email/verify?") {
		t.Fatalf("unexpected verify body: %s", body)
	}

	body, _ = tmpl.Welcome("<b>Jane</b>")
	if strings.Contains(body, "<b>Jane</b>") {
		t.Fatal("expected name to be escaped")
	}
}
