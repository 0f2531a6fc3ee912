package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"invoice-backend/config"
)

func sample() InvoiceEmail {
	return InvoiceEmail{
		To:         "ap@globex.test",
		Subject:    "Invoice INV-001",
		FirstName:  "Jane",
		InvoiceNo:  "INV-001",
		DueDate:    "March 31st, 2024",
		Total:      "$1,234.50",
		InvoiceURL: "https://app.test/api/invoice/u1/i1",
	}
}

func TestRender(t *testing.T) {
	html, text, err := Render(sample())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Welcome, Jane!", "INV-001", "March 31st, 2024", "$1,234.50", `href="https://app.test/api/invoice/u1/i1"`} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
	for _, want := range []string{"Welcome, Jane!", "Total: $1,234.50", "Download Invoice: https://app.test/api/invoice/u1/i1"} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q", want)
		}
	}
}

func TestRenderEscapesHTML(t *testing.T) {
	e := sample()
	e.FirstName = "<script>alert(1)</script>"
	html, _, err := Render(e)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatal("first name not escaped")
	}
}

func TestLongDate(t *testing.T) {
	tests := map[int]string{
		1:  "March 1st, 2024",
		2:  "March 2nd, 2024",
		3:  "March 3rd, 2024",
		4:  "March 4th, 2024",
		11: "March 11th, 2024",
		12: "March 12th, 2024",
		13: "March 13th, 2024",
		21: "March 21st, 2024",
		22: "March 22nd, 2024",
		31: "March 31st, 2024",
	}
	for day, want := range tests {
		if got := LongDate(time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC)); got != want {
			t.Errorf("LongDate(%d) = %q, want %q", day, got, want)
		}
	}
}

func TestSMTPNotConfigured(t *testing.T) {
	s := NewSMTP(config.EmailConfig{}, nil)
	if err := s.SendInvoice(context.Background(), sample()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestSMTPMessage(t *testing.T) {
	s := NewSMTP(config.EmailConfig{Host: "smtp.test", Port: 465, From: "billing@acme.test"}, nil)
	if _, err := s.message(sample()); err != nil {
		t.Fatal(err)
	}

	bad := sample()
	bad.To = "not an address"
	if _, err := s.message(bad); err == nil {
		t.Fatal("invalid recipient accepted")
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	if _, ok := r.Last(); ok {
		t.Fatal("empty recorder reported a message")
	}
	_ = r.SendInvoice(context.Background(), sample())
	got, ok := r.Last()
	if !ok || got.InvoiceNo != "INV-001" {
		t.Fatalf("last = %+v, %v", got, ok)
	}

	r.Err = errors.New("boom")
	if err := r.SendInvoice(context.Background(), sample()); err == nil {
		t.Fatal("expected error")
	}
	if len(r.Sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(r.Sent))
	}
}
