package notification

import (
	"strings"
	"testing"
)

func TestNewEmailNotifier(t *testing.T) {
	config := SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		TLS:      true,
		Username: "mailer",
		Password: "secret",
		From:     "noreply@example.com",
	}

	notifier, err := NewEmailNotifier(config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notifier.SMTPConfig != config {
		t.Errorf("config not retained: %+v", notifier.SMTPConfig)
	}

	t.Run("PlainSMTP", func(t *testing.T) {
		_, err := NewEmailNotifier(SMTPConfig{Host: "localhost", Port: 1025, From: "noreply@example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestEmailNotifierRequiresRecipient(t *testing.T) {
	notifier, err := NewEmailNotifier(SMTPConfig{Host: "localhost", Port: 1025, From: "noreply@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = notifier.Send(TwoFactorCodeNotice, NotificationData{}, NoticeTemplate{Subject: "Code"})
	if err == nil || !strings.Contains(err.Error(), "To") {
		t.Errorf("expected missing-recipient error, got %v", err)
	}
}
