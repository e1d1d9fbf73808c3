package notification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/olimpofit/gym-server/internal/config"
	"github.com/olimpofit/gym-server/internal/errs"
)

func newTestWhatsApp(token, phoneID string) *WhatsAppChannel {
	return NewWhatsAppChannel(config.WhatsAppConfig{
		Token:              token,
		PhoneNumberID:      phoneID,
		DefaultCountryCode: "54",
		TimeoutSeconds:     5,
	})
}

func TestNormalizePhone(t *testing.T) {
	ch := newTestWhatsApp("", "")

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"argentine mobile with separators", "+54 9 11 1234-5678", "5491112345678", false},
		{"missing country code", "11 1234-5678", "541112345678", false},
		{"already normalized", "5491112345678", "5491112345678", false},
		{"parentheses and dots", "(11) 1234.5678", "541112345678", false},
		{"letters rejected", "54abc123", "", true},
		{"empty rejected", "  + ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ch.NormalizePhone(tt.raw)
			if tt.wantErr {
				if !errs.Is(err, errs.KindInvalidFormat) {
					t.Errorf("NormalizePhone(%q) error = %v, want invalid-format", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizePhone(%q) error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestWhatsAppSendWithoutCredentials(t *testing.T) {
	ch := newTestWhatsApp("", "")

	err := ch.Send(context.Background(), "+54 9 11 1234-5678", "", "Hola Ana")
	if !errs.Is(err, errs.KindProvider) {
		t.Fatalf("Send() error = %v, want provider error", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "https://api.whatsapp.com/send/?phone=5491112345678") {
		t.Errorf("error %q does not carry the fallback URL with the normalized number", msg)
	}
	if !strings.Contains(msg, "text=Hola+Ana") {
		t.Errorf("error %q does not carry the url-encoded message", msg)
	}
}

func TestWhatsAppSendCloudAPI(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		buf := make([]byte, 4096)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := newTestWhatsApp("tok-123", "phone-1")
	ch.apiBase = srv.URL

	if err := ch.Send(context.Background(), "5491112345678", "", "Hola"); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if gotPath != "/phone-1/messages" {
		t.Errorf("path = %q, want /phone-1/messages", gotPath)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("auth = %q", gotAuth)
	}
	if !strings.Contains(gotBody, `"to":"5491112345678"`) {
		t.Errorf("body = %q, missing recipient", gotBody)
	}
}

func TestWhatsAppSendProviderErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	ch := newTestWhatsApp("bad-token", "phone-1")
	ch.apiBase = srv.URL

	err := ch.Send(context.Background(), "5491112345678", "", "Hola")
	if !errs.Is(err, errs.KindProvider) {
		t.Fatalf("Send() error = %v, want provider error", err)
	}
	if !strings.Contains(err.Error(), "api.whatsapp.com/send/?phone=5491112345678") {
		t.Errorf("error %q does not carry the fallback URL", err.Error())
	}
}
